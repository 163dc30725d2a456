package fetch

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lawvn/lawfetch/internal/config"
	"github.com/lawvn/lawfetch/internal/model"
)

// Leading byte signatures of the document formats the site serves.
var (
	sigPDF          = []byte("%PDF")
	sigZipLocal     = []byte{0x50, 0x4B, 0x03, 0x04}
	sigZipEmpty     = []byte{0x50, 0x4B, 0x05, 0x06}
	sigZipSpanned   = []byte{0x50, 0x4B, 0x07, 0x08}
	sigCompoundDoc  = []byte{0xD0, 0xCF, 0x11, 0xE0}
	sigLegacyOffice = []byte{0x09, 0x08, 0x06, 0x00}
)

// Verifier applies the post-download checks to the head bytes of a stored
// artifact: HTML rejection first, then size floors, then the signature
// whitelist.
type Verifier struct {
	minArtifactSize int64
	minPDFSize      int64
	smallPDFWarn    int64
}

// NewVerifier creates a verifier with the configured size floors.
func NewVerifier(settings config.Settings) *Verifier {
	return &Verifier{
		minArtifactSize: settings.MinArtifactSize,
		minPDFSize:      settings.MinPDFSize,
		smallPDFWarn:    settings.SmallPDFWarn,
	}
}

// Verify returns the verdict for an artifact of the given kind whose first
// bytes are head and whose total size is size. Every non-Valid verdict comes
// with an error whose message classifies under the failure taxonomy.
func (v *Verifier) Verify(head []byte, size int64, kind model.ArtifactKind) (model.Verdict, error) {
	if looksLikeHTML(head) {
		return model.VerdictHTMLErrorPage, errors.New("downloaded file contains HTML content (likely error page)")
	}

	floor := v.minArtifactSize
	if kind == model.KindPDF && v.minPDFSize > floor {
		floor = v.minPDFSize
	}
	if size < floor {
		return model.VerdictTooSmall, fmt.Errorf("downloaded file too small: %d bytes (likely error page)", size)
	}
	if kind == model.KindPDF && size < v.smallPDFWarn {
		slog.Warn("pdf smaller than typical for a legal document", "size_bytes", size)
	}

	if !hasDocumentSignature(head) {
		return model.VerdictWrongMagicBytes, errors.New("downloaded file does not appear to be a valid document")
	}
	return model.VerdictValid, nil
}

func looksLikeHTML(head []byte) bool {
	lower := bytes.ToLower(head)
	return bytes.Contains(lower, []byte("<html")) || bytes.Contains(lower, []byte("<!doctype"))
}

func hasZipSignature(head []byte) bool {
	return bytes.HasPrefix(head, sigZipLocal) ||
		bytes.HasPrefix(head, sigZipEmpty) ||
		bytes.HasPrefix(head, sigZipSpanned)
}

func hasDocumentSignature(head []byte) bool {
	switch {
	case bytes.HasPrefix(head, sigPDF):
		return true
	case hasZipSignature(head):
		return true
	case bytes.Contains(head, []byte(`\rtf1`)), bytes.HasPrefix(head, []byte(`{\rtf`)):
		return true
	case bytes.HasPrefix(head, sigCompoundDoc), bytes.HasPrefix(head, sigLegacyOffice):
		return true
	case len(head) > 0:
		return plausibleDocumentText(head)
	default:
		return false
	}
}

// plausibleDocumentText accepts unrecognized content unless it is clearly an
// HTML or error body. Older documents on the site arrive as bare text with
// no signature at all.
func plausibleDocumentText(head []byte) bool {
	text := strings.ToLower(string(head))
	if strings.Contains(text, "<html") || strings.Contains(text, "<body") {
		return false
	}
	if strings.Contains(text, "error") && strings.Contains(text, "http") {
		return false
	}
	return true
}

// resolveKind determines the storage kind from the response content type and
// the kind the locator read off the URL. An archive located by URL stays ZIP
// no matter what the server declares: the site routinely labels archives
// with a generic type.
func resolveKind(located model.ArtifactKind, contentType string) model.ArtifactKind {
	contentType = strings.ToLower(contentType)
	switch {
	case located == model.KindZIP:
		return model.KindZIP
	case strings.Contains(contentType, "application/pdf"):
		return model.KindPDF
	case strings.Contains(contentType, "application/zip"),
		strings.Contains(contentType, "application/x-zip-compressed"):
		return model.KindZIP
	case strings.Contains(contentType, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return model.KindDOCX
	case strings.Contains(contentType, "application/msword"):
		return model.KindDOC
	case strings.Contains(contentType, "application/rtf"),
		strings.Contains(contentType, "text/rtf"):
		// RTF bodies store as .doc, which Word opens directly.
		return model.KindDOC
	case located == model.KindDOC, located == model.KindDOCX:
		return located
	case located == model.KindRTF:
		return model.KindDOC
	case located == model.KindPDF:
		return model.KindPDF
	case strings.Contains(contentType, "text"), strings.Contains(contentType, "rtf"):
		return model.KindDOC
	default:
		return model.KindPDF
	}
}

// correctKind fixes a mislabeled .doc using the leading bytes: DOCX is a ZIP
// archive, and the server sometimes labels PDFs as Word documents.
func correctKind(kind model.ArtifactKind, head []byte) model.ArtifactKind {
	if kind != model.KindDOC {
		return kind
	}
	if hasZipSignature(head) {
		return model.KindDOCX
	}
	if bytes.HasPrefix(head, sigPDF) {
		return model.KindPDF
	}
	return kind
}
