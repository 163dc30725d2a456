// Package locate extracts the concrete artifact URL from a document page.
// It applies a prioritized rule table to the raw page content: the most
// specific pattern that produces a surviving match decides both the URL and
// the artifact kind. Matches on account, login, or informational paths are
// discarded so an authentication wall never masquerades as a document.
package locate

import (
	"regexp"
	"strings"

	"github.com/lawvn/lawfetch/internal/model"
)

// RuleTag classifies the shape of a locator rule.
type RuleTag string

const (
	// DomainQualifiedSuffix matches the artifact host, the file-serving path
	// prefix, and a concrete extension. Most specific.
	DomainQualifiedSuffix RuleTag = "domain_qualified_suffix"
	// GenericSuffix matches the artifact host and an extension anywhere
	// under it. Last-resort for documents served off the usual path.
	GenericSuffix RuleTag = "generic_suffix"
	// PathPrefixOnly matches the file-serving path prefix with no
	// recognizable extension; the kind stays Unknown until retrieval
	// inspects the bytes.
	PathPrefixOnly RuleTag = "path_prefix_only"
)

// Rule is one entry in the locator's ordered table.
type Rule struct {
	Tag     RuleTag
	Pattern *regexp.Regexp
	// BareSuffix rejects matches immediately followed by a query or
	// fragment separator.
	BareSuffix bool
}

// DefaultRules returns the rule table in priority order: ID-suffixed PDFs
// first, then document-specific and clean PDF URLs, the same ladder for ZIP
// and Word files, broad per-extension fallbacks, and finally the bare
// file-serving prefix.
func DefaultRules() []Rule {
	return []Rule{
		{Tag: DomainQualifiedSuffix, Pattern: regexp.MustCompile(`https://static\.luatvietnam\.vn/tai-file-[^"']*-\d+\.pdf`)},
		{Tag: DomainQualifiedSuffix, Pattern: regexp.MustCompile(`https://static\.luatvietnam\.vn/tai-file-vanban-[^"']*\.pdf`)},
		{Tag: DomainQualifiedSuffix, Pattern: regexp.MustCompile(`https://static\.luatvietnam\.vn/tai-file-[^"']*\.pdf`), BareSuffix: true},

		{Tag: DomainQualifiedSuffix, Pattern: regexp.MustCompile(`https://static\.luatvietnam\.vn/tai-file-[^"']*-\d+\.zip`)},
		{Tag: DomainQualifiedSuffix, Pattern: regexp.MustCompile(`https://static\.luatvietnam\.vn/tai-file-vanban-[^"']*\.zip`)},
		{Tag: DomainQualifiedSuffix, Pattern: regexp.MustCompile(`https://static\.luatvietnam\.vn/tai-file-[^"']*\.zip`), BareSuffix: true},

		{Tag: DomainQualifiedSuffix, Pattern: regexp.MustCompile(`https://static\.luatvietnam\.vn/tai-file-[^"']*-\d+\.docx?`)},
		{Tag: DomainQualifiedSuffix, Pattern: regexp.MustCompile(`https://static\.luatvietnam\.vn/tai-file-vanban-[^"']*\.docx?`)},
		{Tag: DomainQualifiedSuffix, Pattern: regexp.MustCompile(`https://static\.luatvietnam\.vn/tai-file-[^"']*\.docx?`), BareSuffix: true},

		{Tag: GenericSuffix, Pattern: regexp.MustCompile(`https://static\.luatvietnam\.vn/[^"']*\.pdf`)},
		{Tag: GenericSuffix, Pattern: regexp.MustCompile(`https://static\.luatvietnam\.vn/[^"']*\.zip`)},
		{Tag: GenericSuffix, Pattern: regexp.MustCompile(`https://static\.luatvietnam\.vn/[^"']*\.docx?`)},

		{Tag: PathPrefixOnly, Pattern: regexp.MustCompile(`https://static\.luatvietnam\.vn/tai-file-[^"'\s<>]*`)},
	}
}

// denyFragments are path pieces that mark a URL as an account, login, or
// informational asset rather than a document artifact.
var denyFragments = []string{
	"/account/", "/login/", "/user/", "/profile/", "/tai-khoan/",
	"/user-guide/", "/terms/", "/privacy/", "/contact/",
}

// Locator scans page content for artifact URLs.
type Locator struct {
	rules []Rule
	deny  []string
}

// New creates a Locator with the default rule table and deny list.
func New() *Locator {
	return &Locator{rules: DefaultRules(), deny: denyFragments}
}

// Locate scans pageContent and returns the best artifact URL, or false when
// no rule produces a surviving match. Rules are tried strictly in order;
// within one rule's match set, denied URLs are skipped and the first
// survivor wins.
func (l *Locator) Locate(pageContent string, workItemID int) (model.LocatedArtifact, bool) {
	for _, rule := range l.rules {
		for _, span := range rule.Pattern.FindAllStringIndex(pageContent, -1) {
			url := pageContent[span[0]:span[1]]
			if rule.BareSuffix && followedByQuery(pageContent, span[1]) {
				continue
			}
			if l.denied(url) {
				continue
			}
			return model.LocatedArtifact{
				WorkItemID:  workItemID,
				ArtifactURL: url,
				Kind:        KindForURL(url),
			}, true
		}
	}
	return model.LocatedArtifact{}, false
}

func (l *Locator) denied(url string) bool {
	lower := strings.ToLower(url)
	for _, fragment := range l.deny {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

func followedByQuery(content string, end int) bool {
	if end >= len(content) {
		return false
	}
	return content[end] == '?' || content[end] == '#'
}

// KindForURL inspects a URL for a recognizable extension. URLs on the
// file-serving path with no extension come back Unknown; retrieval settles
// the format from the bytes.
func KindForURL(url string) model.ArtifactKind {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, ".pdf"):
		return model.KindPDF
	case strings.Contains(lower, ".zip"):
		return model.KindZIP
	case strings.Contains(lower, ".docx"):
		return model.KindDOCX
	case strings.Contains(lower, ".doc"):
		return model.KindDOC
	case strings.Contains(lower, ".rtf"):
		return model.KindRTF
	default:
		return model.KindUnknown
	}
}
