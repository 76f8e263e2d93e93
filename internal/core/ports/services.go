package ports

import (
	"context"
	"time"

	"droneview/internal/core/domain"
)

// CredentialStore holds the current token and profile and persists them
// through a CredentialRepository. Login is fail-closed: state mutates only
// on an explicit success envelope.
type CredentialStore interface {
	Login(ctx context.Context, creds domain.Credentials) (bool, error)
	Register(ctx context.Context, reg domain.Registration) (bool, error)
	Logout()
	SetToken(token string)
	SetUser(user *domain.User) error
	Credential() domain.Credential
	Token() string
}

// SessionAuthority derives the logical session from the credential store.
type SessionAuthority interface {
	Snapshot() domain.SessionSnapshot
}

// NavigationGuard decides one route transition from explicit inputs.
type NavigationGuard interface {
	Evaluate(route domain.Route, session domain.SessionSnapshot) domain.Verdict
}

// FrameCallback receives the displayable URI of a newly applied frame.
type FrameCallback func(uri string)

// StreamController owns the polling loop that refreshes the live image.
type StreamController interface {
	Start(userID domain.UserID, onFrame FrameCallback, interval time.Duration)
	Stop()
	Reset()
	IsStreaming() bool
	LastDelay() time.Duration
	CurrentFrame() string
}

// ViewState is the cached display state overwritten wholesale by the
// command channel and cleared on stream reset.
type ViewState interface {
	Clear()
}
