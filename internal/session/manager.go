package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lawvn/lawfetch/internal/config"
	"github.com/lawvn/lawfetch/internal/model"
)

// defaultPollInterval paces indicator probes within the bounded wait.
const defaultPollInterval = 2 * time.Second

// indicatorVerdict summarizes what the bounded post-submission wait saw.
type indicatorVerdict int

const (
	indicatorInconclusive indicatorVerdict = iota
	indicatorFound
	loginFormGone
	loginFormStillPresent
)

// Manager owns the login state machine. All transitions run under one
// mutex: the session is strictly sequential, and a transition must complete
// before any request that depends on it.
type Manager struct {
	mu            sync.Mutex
	driver        Driver
	creds         config.Credentials
	state         model.SessionState
	formSeen      bool
	indicatorWait time.Duration
	pollInterval  time.Duration
}

// NewManager creates a session manager in the Anonymous state.
func NewManager(driver Driver, creds config.Credentials, indicatorWait time.Duration) *Manager {
	return &Manager{
		driver:        driver,
		creds:         creds,
		state:         model.SessionAnonymous,
		indicatorWait: indicatorWait,
		pollInterval:  defaultPollInterval,
	}
}

// State returns the current session state.
func (m *Manager) State() model.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Invalidate marks a usable session Expired. Called when a page that should
// show account-only content fails to show it; the next EnsureAuthenticated
// re-runs the full state machine.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.IsUsable() {
		slog.Info("session invalidated", "previous_state", m.state)
		m.state = model.SessionExpired
	}
}

// EnsureAuthenticated is a no-op when the session is already usable;
// otherwise it runs the full state machine. A nil return means Verified or
// Unverified; on error the session is back to Anonymous.
func (m *Manager) EnsureAuthenticated(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.IsUsable() {
		return nil
	}
	return m.login(ctx)
}

// login walks Anonymous → LoginTriggered → CredentialsSubmitted → one of
// {Verified, Unverified, Anonymous}. Callers hold m.mu.
func (m *Manager) login(ctx context.Context) error {
	m.state = model.SessionAnonymous

	if !m.creds.Complete() {
		return model.Kindf(model.ErrKindLogin, "credentials incomplete: username and password are required")
	}

	page, err := m.driver.LoadLoginPage(ctx)
	if err != nil {
		return fmt.Errorf("load login page: %w", err)
	}

	affordance, found := m.driver.FindAffordance(page)
	if !found && !page.HasLoginForm() {
		// No way in from here. Cookies from an earlier run may still be
		// valid, which an indicator probe can confirm.
		probe, probeErr := m.driver.ProbeIndicators(ctx)
		if probeErr == nil && probe.AccountIndicator {
			slog.Info("session already authenticated", "state", model.SessionVerified)
			m.state = model.SessionVerified
			return nil
		}
		return model.Kindf(model.ErrKindElementNotFound, "no login affordance matched any selector on %s", page.URL)
	}

	m.state = model.SessionLoginTriggered
	if page.HasLoginForm() {
		m.formSeen = true
	}
	if found {
		slog.Debug("login affordance found", "selector", affordance.Selector, "text", affordance.Text)
	}

	result, err := m.driver.SubmitCredentials(ctx, page, m.creds)
	if err != nil {
		m.state = model.SessionAnonymous
		return fmt.Errorf("submit credentials: %w", err)
	}
	m.state = model.SessionCredentialsSubmitted

	if payload, ok := DetectSuccessPayload(result.Body); ok {
		if payload.ReturnURL != "" {
			if err := m.driver.FollowReturnURL(ctx, payload.ReturnURL); err != nil {
				slog.Warn("follow return url failed", "url", payload.ReturnURL, "error", err)
			}
		}
		slog.Info("login verified", "via", "success payload")
		m.state = model.SessionVerified
		return nil
	}

	verdict := m.awaitIndicator(ctx)
	if ctx.Err() != nil {
		m.state = model.SessionAnonymous
		return ctx.Err()
	}

	switch verdict {
	case indicatorFound:
		slog.Info("login verified", "via", "account indicator")
		m.state = model.SessionVerified
		return nil
	case loginFormGone:
		slog.Info("login verified", "via", "login form absence")
		m.state = model.SessionVerified
		return nil
	case loginFormStillPresent:
		m.state = model.SessionAnonymous
		return model.Kindf(model.ErrKindLogin, "login form still present after submission")
	default:
		// No indicator either way. Content verification during retrieval
		// is the real safety net, so the session stays usable but flagged.
		slog.Warn("login status unclear, proceeding unverified")
		m.state = model.SessionUnverified
		return nil
	}
}

// awaitIndicator polls the driver until an indicator settles the outcome or
// the bounded wait expires.
func (m *Manager) awaitIndicator(ctx context.Context) indicatorVerdict {
	deadline := time.Now().Add(m.indicatorWait)
	sawProbe := false
	lastFormPresent := false

	for {
		probe, err := m.driver.ProbeIndicators(ctx)
		if err == nil {
			sawProbe = true
			if probe.AccountIndicator {
				return indicatorFound
			}
			lastFormPresent = probe.LoginFormPresent
			if m.formSeen && !probe.LoginFormPresent {
				return loginFormGone
			}
		}

		if time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return indicatorInconclusive
		case <-time.After(m.pollInterval):
		}
	}

	if sawProbe && lastFormPresent {
		return loginFormStillPresent
	}
	return indicatorInconclusive
}
