// Package storage derives deterministic on-disk names for retrieved
// artifacts and provides small filesystem helpers. Names must be stable
// across runs: ledger reconstruction recognizes completed work solely by
// recomputing the expected filename.
package storage

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/lawvn/lawfetch/internal/model"
)

// Filename shape constants.
const (
	// MaxStemLength caps the sanitized title portion, leaving room for the
	// hash suffix and extension.
	MaxStemLength = 90
	// HashLength is the number of hex digits of the URL hash kept in names.
	HashLength = 8
)

var (
	// foldDigraphs maps Vietnamese letters that do not decompose into a
	// base letter plus combining marks.
	foldDigraphs = strings.NewReplacer("đ", "d", "Đ", "D")

	dropPattern     = regexp.MustCompile(`[^\w\s-]`)
	collapsePattern = regexp.MustCompile(`[-\s]+`)
)

// foldDiacritics strips combining marks so titles render as plain ASCII:
// "Luật Giao Thông" becomes "Luat Giao Thong".
func foldDiacritics(s string) string {
	s = foldDigraphs.Replace(s)
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, s)
	if err != nil {
		return s
	}
	return folded
}

// SafeTitle sanitizes a document title into a filename stem: diacritics
// folded, punctuation dropped, runs of separators collapsed to single
// underscores, truncated to MaxStemLength runes.
func SafeTitle(title string) string {
	stem := foldDiacritics(title)
	stem = dropPattern.ReplaceAllString(stem, "")
	stem = collapsePattern.ReplaceAllString(stem, "_")

	r := []rune(stem)
	if len(r) > MaxStemLength {
		stem = string(r[:MaxStemLength])
	}
	return stem
}

// URLHash returns the first HashLength hex digits of the source URL's MD5.
// The suffix disambiguates documents that share a title.
func URLHash(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:HashLength]
}

// BaseName joins the sanitized title and URL hash. No extension; that is
// decided after the artifact's format is known.
func BaseName(title, url string) string {
	return SafeTitle(title) + "_" + URLHash(url)
}

// ArtifactPath returns the full storage path for an artifact of the given
// kind. KindUnknown gets a .pdf extension, matching the most common format.
func ArtifactPath(dir, title, url string, kind model.ArtifactKind) string {
	ext := kind.Extension()
	if ext == "" {
		ext = model.KindPDF.Extension()
	}
	return filepath.Join(dir, BaseName(title, url)+ext)
}

// CandidatePaths returns every path the artifact could have been stored
// under, one per known extension, in probe order. Used when the format is
// not known in advance: resuming, reconstruction, retry scans.
func CandidatePaths(dir, title, url string) []string {
	base := BaseName(title, url)
	exts := model.KnownExtensions()
	paths := make([]string, 0, len(exts))
	for _, ext := range exts {
		paths = append(paths, filepath.Join(dir, base+ext))
	}
	return paths
}
