package services

import (
	"droneview/internal/core/domain"
)

// GuardService decides route transitions. It is a pure function of the
// route metadata and the session snapshot passed in; it never reaches
// into ambient state.
//
// Rule order matters: the login-route rule runs first because the login
// route itself carries no auth requirement. An authentication denial
// redirects to the login view, an authorization denial to home --
// distinct branches even though the latter shares its target with rule 1.
type GuardService struct {
	loginPath string
	homePath  string
}

func NewGuardService() *GuardService {
	return &GuardService{
		loginPath: "/login",
		homePath:  "/",
	}
}

func (g *GuardService) Evaluate(route domain.Route, session domain.SessionSnapshot) domain.Verdict {
	if route.Login {
		if session.LoggedIn {
			return domain.Redirect(g.homePath, domain.ReasonAlreadyAuthenticated)
		}
		return domain.Allowed()
	}

	if route.RequiresAuth && !session.LoggedIn {
		return domain.Redirect(g.loginPath, domain.ReasonAuthRequired)
	}

	if route.RequiresRole != "" && session.Role != route.RequiresRole {
		return domain.Redirect(g.homePath, domain.ReasonRoleDenied)
	}

	return domain.Allowed()
}
