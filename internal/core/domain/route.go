package domain

// Route is static per-route metadata, fixed at startup.
type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
	RequiresRole Role // empty means any role
	Login        bool // the login view itself
}

// VerdictReason distinguishes why a navigation was allowed or denied.
// Authentication and authorization denials redirect to different targets
// and must stay separate branches.
type VerdictReason int

const (
	ReasonAllowed VerdictReason = iota
	ReasonAlreadyAuthenticated
	ReasonAuthRequired
	ReasonRoleDenied
)

func (r VerdictReason) String() string {
	switch r {
	case ReasonAllowed:
		return "allowed"
	case ReasonAlreadyAuthenticated:
		return "already_authenticated"
	case ReasonAuthRequired:
		return "auth_required"
	case ReasonRoleDenied:
		return "role_denied"
	default:
		return "unknown"
	}
}

// Verdict is the guard's decision for one route transition.
type Verdict struct {
	Allow      bool
	RedirectTo string
	Reason     VerdictReason
}

func Allowed() Verdict {
	return Verdict{Allow: true, Reason: ReasonAllowed}
}

func Redirect(to string, reason VerdictReason) Verdict {
	return Verdict{RedirectTo: to, Reason: reason}
}

// DefaultRoutes mirrors the navigable views of the monitoring frontend.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Name: "Home"},
		{Path: "/login", Name: "Login", Login: true},
		{Path: "/flying", Name: "Flying", RequiresAuth: true},
		{Path: "/analyze", Name: "Analyze", RequiresAuth: true},
		{Path: "/control/drone", Name: "ControlDrone", RequiresAuth: true, RequiresRole: RoleAdmin},
		{Path: "/control/user", Name: "ControlUser", RequiresAuth: true, RequiresRole: RoleAdmin},
	}
}
