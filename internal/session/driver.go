package session

import (
	"context"
	"strings"
	"time"

	"github.com/lawvn/lawfetch/internal/config"
	"github.com/lawvn/lawfetch/internal/model"
)

// LoginPath is the site path that reliably renders the login affordance for
// an anonymous visitor.
const LoginPath = "/tai-khoan"

// FormDriver drives the site's real login form over the shared transport.
type FormDriver struct {
	transport   *Transport
	baseURL     string
	pageTimeout time.Duration
}

// NewFormDriver creates a driver rooted at baseURL. Every page operation is
// bounded by pageTimeout.
func NewFormDriver(transport *Transport, baseURL string, pageTimeout time.Duration) *FormDriver {
	return &FormDriver{
		transport:   transport,
		baseURL:     strings.TrimRight(baseURL, "/"),
		pageTimeout: pageTimeout,
	}
}

// LoadLoginPage fetches the account page that carries the login affordance.
func (d *FormDriver) LoadLoginPage(ctx context.Context) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, d.pageTimeout)
	defer cancel()
	return d.transport.FetchPage(ctx, d.baseURL+LoginPath)
}

// FindAffordance tries the affordance strategies in priority order.
func (d *FormDriver) FindAffordance(p *Page) (Strategy, bool) {
	return FirstMatch(p, loginAffordanceStrategies)
}

// SubmitCredentials fills and posts the login form found on p, carrying any
// hidden fields along, and returns the response page.
func (d *FormDriver) SubmitCredentials(ctx context.Context, p *Page, creds config.Credentials) (*Page, error) {
	if !p.HasLoginForm() {
		return nil, model.Kindf(model.ErrKindElementNotFound, "login form fields not present on %s", p.URL)
	}

	values := p.LoginFormHiddenFields()
	values.Set(UsernameFieldID, creds.Username)
	values.Set(PasswordFieldID, creds.Password)

	ctx, cancel := context.WithTimeout(ctx, d.pageTimeout)
	defer cancel()
	return d.transport.PostForm(ctx, p.LoginFormAction(), values)
}

// ProbeIndicators loads a fresh view of the account page and reports it.
func (d *FormDriver) ProbeIndicators(ctx context.Context) (Probe, error) {
	ctx, cancel := context.WithTimeout(ctx, d.pageTimeout)
	defer cancel()

	page, err := d.transport.FetchPage(ctx, d.baseURL+LoginPath)
	if err != nil {
		return Probe{}, err
	}
	return Probe{
		AccountIndicator: page.HasAccountIndicator(),
		LoginFormPresent: page.HasLoginForm(),
	}, nil
}

// FollowReturnURL loads the post-login redirect target so session cookies
// settle on the main site before the next request.
func (d *FormDriver) FollowReturnURL(ctx context.Context, returnURL string) error {
	if !strings.HasPrefix(returnURL, "http") {
		returnURL = d.baseURL + returnURL
	}
	ctx, cancel := context.WithTimeout(ctx, d.pageTimeout)
	defer cancel()

	_, err := d.transport.FetchPage(ctx, returnURL)
	return err
}
