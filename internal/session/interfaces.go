package session

import (
	"context"

	"github.com/lawvn/lawfetch/internal/config"
	"github.com/lawvn/lawfetch/internal/model"
)

// Authenticator is the session surface other components depend on.
type Authenticator interface {
	// EnsureAuthenticated runs the login state machine if the session is
	// not already usable. A nil return means the session reached Verified
	// or Unverified; an error means the attempt failed and the session is
	// back to Anonymous.
	EnsureAuthenticated(ctx context.Context) error

	// State returns the current session state.
	State() model.SessionState

	// Invalidate marks a usable session Expired, forcing the next
	// EnsureAuthenticated to re-run the full state machine.
	Invalidate()
}

// Driver performs the page-level mechanics of one login attempt. The
// Manager owns the state machine; a Driver only loads pages, finds
// affordances, and submits forms.
type Driver interface {
	// LoadLoginPage fetches the page carrying the login affordance.
	LoadLoginPage(ctx context.Context) (*Page, error)

	// FindAffordance locates a login affordance, trying strategies in
	// priority order. First match wins.
	FindAffordance(p *Page) (Strategy, bool)

	// SubmitCredentials posts the login form and returns the response page.
	SubmitCredentials(ctx context.Context, p *Page, creds config.Credentials) (*Page, error)

	// ProbeIndicators loads a fresh view and reports what it shows.
	ProbeIndicators(ctx context.Context) (Probe, error)

	// FollowReturnURL loads the post-login redirect target so session
	// cookies settle before the next request.
	FollowReturnURL(ctx context.Context, returnURL string) error
}

// Probe is one observation of the post-login page state.
type Probe struct {
	AccountIndicator bool
	LoginFormPresent bool
}
