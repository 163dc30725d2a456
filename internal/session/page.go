// Package session owns the one authenticated transport context a run uses:
// the cookie jar, the login state machine, and the page-level mechanics of
// driving the site's login form. Other components borrow the transport for
// single requests; they never own or copy it.
package session

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Login form element IDs, as rendered by the site.
const (
	UsernameFieldID = "customer_name"
	PasswordFieldID = "password_login"
)

// Strategy describes one way of finding a page affordance: a CSS selector,
// optionally narrowed to nodes whose text contains a phrase.
type Strategy struct {
	Selector string
	Text     string
}

// loginAffordanceStrategies are tried in priority order when looking for a
// way to open the login form. First match wins; list order is the only
// preference.
var loginAffordanceStrategies = []Strategy{
	{Selector: "a[class*='lawsVnLogin']"},
	{Selector: "span[class*='lawsVnLogin']"},
	{Selector: "a", Text: "Đăng nhập"},
	{Selector: "button", Text: "Đăng nhập"},
	{Selector: "a", Text: "Tải văn bản"},
	{Selector: "span", Text: "Tải văn bản"},
}

// accountIndicatorStrategies mark account-only page elements that confirm a
// logged-in session.
var accountIndicatorStrategies = []Strategy{
	{Selector: "a[href*='/tai-khoan/']"},
	{Selector: "a", Text: "Tài khoản"},
	{Selector: "div[class*='user-info']"},
	{Selector: "span[class*='username']"},
}

// Page is one fetched document: final URL, response status, raw body, and
// the parsed DOM.
type Page struct {
	URL        string
	StatusCode int
	Body       string
	doc        *goquery.Document
}

// ParsePage parses an HTML body into a Page.
func ParsePage(pageURL, body string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", pageURL, err)
	}
	return &Page{URL: pageURL, Body: body, doc: doc}, nil
}

// Title returns the page's <title> text.
func (p *Page) Title() string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

// Matches reports whether any node satisfies the strategy.
func (p *Page) Matches(st Strategy) bool {
	return p.find(st).Length() > 0
}

func (p *Page) find(st Strategy) *goquery.Selection {
	sel := p.doc.Find(st.Selector)
	if st.Text == "" {
		return sel
	}
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), st.Text)
	})
}

// FirstMatch returns the first strategy in the list that matches the page.
func FirstMatch(p *Page, strategies []Strategy) (Strategy, bool) {
	for _, st := range strategies {
		if p.Matches(st) {
			return st, true
		}
	}
	return Strategy{}, false
}

// HasLoginForm reports whether both login form fields are present.
func (p *Page) HasLoginForm() bool {
	return p.doc.Find("#"+UsernameFieldID).Length() > 0 &&
		p.doc.Find("#"+PasswordFieldID).Length() > 0
}

// HasAccountIndicator reports whether any account-only element is present.
func (p *Page) HasAccountIndicator() bool {
	_, ok := FirstMatch(p, accountIndicatorStrategies)
	return ok
}

// LoginFormAction resolves the login form's submission URL. An empty or
// missing action attribute submits back to the page's own URL, per standard
// form semantics.
func (p *Page) LoginFormAction() string {
	form := p.doc.Find("#" + UsernameFieldID).Closest("form")
	action, _ := form.Attr("action")
	return p.resolve(action)
}

// LoginFormHiddenFields collects the login form's hidden inputs (request
// verification tokens and the like) so submission carries them unchanged.
func (p *Page) LoginFormHiddenFields() url.Values {
	values := url.Values{}
	form := p.doc.Find("#" + UsernameFieldID).Closest("form")
	form.Find("input[type='hidden']").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		value, _ := s.Attr("value")
		values.Set(name, value)
	})
	return values
}

func (p *Page) resolve(ref string) string {
	if ref == "" {
		return p.URL
	}
	base, err := url.Parse(p.URL)
	if err != nil {
		return ref
	}
	target, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(target).String()
}
