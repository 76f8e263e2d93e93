package services

import (
	"fmt"
	"sync"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"

	"go.uber.org/zap"
)

// Navigator tracks the current view and runs every transition through
// the guard with a freshly derived session snapshot.
type Navigator struct {
	guard    ports.NavigationGuard
	sessions ports.SessionAuthority
	logger   *zap.Logger
	routes   map[string]domain.Route

	mu      sync.Mutex
	current string
}

func NewNavigator(guard ports.NavigationGuard, sessions ports.SessionAuthority, routes []domain.Route, logger *zap.Logger) *Navigator {
	byPath := make(map[string]domain.Route, len(routes))
	for _, r := range routes {
		byPath[r.Path] = r
	}
	return &Navigator{
		guard:    guard,
		sessions: sessions,
		logger:   logger,
		routes:   byPath,
		current:  "/",
	}
}

// Navigate evaluates the transition to path and applies the verdict:
// either the destination or the redirect target becomes current.
func (n *Navigator) Navigate(path string) (domain.Verdict, error) {
	route, ok := n.routes[path]
	if !ok {
		return domain.Verdict{}, fmt.Errorf("%w: %s", domain.ErrUnknownRoute, path)
	}

	verdict := n.guard.Evaluate(route, n.sessions.Snapshot())

	n.mu.Lock()
	if verdict.Allow {
		n.current = path
	} else {
		n.current = verdict.RedirectTo
	}
	n.mu.Unlock()

	if !verdict.Allow {
		n.logger.Info("navigation redirected",
			zap.String("to", path),
			zap.String("redirect", verdict.RedirectTo),
			zap.String("reason", verdict.Reason.String()),
		)
	}
	return verdict, nil
}

// Current returns the active route path.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// ForceHome hard-redirects to the root route, bypassing the guard. Used
// by the global 401 handler after session teardown; the next regular
// navigation resolves naturally against the now-anonymous session.
func (n *Navigator) ForceHome() {
	n.mu.Lock()
	n.current = "/"
	n.mu.Unlock()
}
