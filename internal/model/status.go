package model

import "strings"

// SessionState represents the authentication state machine position
type SessionState string

const (
	// SessionAnonymous means no login has been attempted or the last one failed
	SessionAnonymous SessionState = "Anonymous"

	// SessionLoginTriggered means a login affordance was found and activated
	SessionLoginTriggered SessionState = "LoginTriggered"

	// SessionCredentialsSubmitted means credentials were injected and the form sent
	SessionCredentialsSubmitted SessionState = "CredentialsSubmitted"

	// SessionVerified means a post-login indicator confirmed the session
	SessionVerified SessionState = "Verified"

	// SessionUnverified means the login form vanished but no positive indicator
	// appeared; downloads proceed and content verification is the safety net
	SessionUnverified SessionState = "Unverified"

	// SessionExpired means a previously verified session stopped showing
	// account-only content and must be re-established
	SessionExpired SessionState = "Expired"
)

// String returns the string representation of SessionState
func (s SessionState) String() string {
	return string(s)
}

// IsUsable reports whether the transport context may be handed to a fetch
// without re-running the login machine.
func (s SessionState) IsUsable() bool {
	return s == SessionVerified || s == SessionUnverified
}

// ArtifactKind classifies an artifact by file format
type ArtifactKind string

const (
	KindPDF     ArtifactKind = "pdf"
	KindDOC     ArtifactKind = "doc"
	KindDOCX    ArtifactKind = "docx"
	KindZIP     ArtifactKind = "zip"
	KindRTF     ArtifactKind = "rtf"
	KindUnknown ArtifactKind = "unknown"
)

// Extension returns the dotted file extension for the kind, or empty for
// KindUnknown.
func (k ArtifactKind) Extension() string {
	switch k {
	case KindPDF:
		return ".pdf"
	case KindDOC:
		return ".doc"
	case KindDOCX:
		return ".docx"
	case KindZIP:
		return ".zip"
	case KindRTF:
		return ".rtf"
	default:
		return ""
	}
}

// KindForExtension maps a dotted extension to its ArtifactKind.
func KindForExtension(ext string) ArtifactKind {
	switch strings.ToLower(ext) {
	case ".pdf":
		return KindPDF
	case ".doc":
		return KindDOC
	case ".docx":
		return KindDOCX
	case ".zip":
		return KindZIP
	case ".rtf":
		return KindRTF
	default:
		return KindUnknown
	}
}

// KnownExtensions lists every extension an artifact may be stored under, in
// the order reconstruction probes them.
func KnownExtensions() []string {
	return []string{".pdf", ".docx", ".doc", ".zip", ".rtf"}
}

// Verdict is the verification result for one retrieval attempt
type Verdict string

const (
	// VerdictValid means the bytes passed every verification step
	VerdictValid Verdict = "Valid"

	// VerdictTooSmall means the body was below the size floor for its kind
	VerdictTooSmall Verdict = "TooSmall"

	// VerdictWrongMagicBytes means no recognized file signature was present
	VerdictWrongMagicBytes Verdict = "WrongMagicBytes"

	// VerdictHTMLErrorPage means the body was an HTML document, typically a
	// login or error page served in place of the artifact
	VerdictHTMLErrorPage Verdict = "HTMLErrorPage"
)

// String returns the string representation of Verdict
func (v Verdict) String() string {
	return string(v)
}

// IsValid reports whether the attempt produced a stored artifact.
func (v Verdict) IsValid() bool {
	return v == VerdictValid
}
