package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the closed failure taxonomy shared by every component. All
// observed failures collapse into one of these kinds before anything
// downstream sees them; raw messages are kept for operators only.
type ErrorKind string

const (
	ErrKindTimeout          ErrorKind = "TimeoutError"
	ErrKindConnection       ErrorKind = "ConnectionError"
	ErrKindLogin            ErrorKind = "LoginError"
	ErrKindArtifactNotFound ErrorKind = "ArtifactNotFound"
	ErrKindDownloadFailed   ErrorKind = "DownloadFailed"
	ErrKindFileSize         ErrorKind = "FileSizeError"
	ErrKindElementNotFound  ErrorKind = "ElementNotFound"
	ErrKindParse            ErrorKind = "ParseError"
	ErrKindHTTP             ErrorKind = "HTTPError"
	ErrKindUnknown          ErrorKind = "UnknownError"
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	return string(k)
}

// ErrorKinds lists the taxonomy in reporting order.
func ErrorKinds() []ErrorKind {
	return []ErrorKind{
		ErrKindTimeout,
		ErrKindConnection,
		ErrKindLogin,
		ErrKindArtifactNotFound,
		ErrKindDownloadFailed,
		ErrKindFileSize,
		ErrKindElementNotFound,
		ErrKindParse,
		ErrKindHTTP,
		ErrKindUnknown,
	}
}

// classifierRule pairs an ErrorKind with the message fragments that select
// it. Rules are evaluated in order; the first fragment hit wins.
type classifierRule struct {
	kind      ErrorKind
	fragments []string
}

// Classification order is fixed: transport conditions first, then the
// narrow element and parse fragments ahead of the broad "login" match,
// then content conditions, with HTTP and download as the catch-alls.
// Misclassification of ambiguous messages is acceptable; this is a triage
// aid.
var classifierRules = []classifierRule{
	{ErrKindTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{ErrKindConnection, []string{"connection", "no such host", "refused", "reset by peer", "broken pipe"}},
	{ErrKindElementNotFound, []string{"element", "selector", "affordance"}},
	{ErrKindParse, []string{"parse", "unmarshal", "decode", "invalid syntax"}},
	{ErrKindLogin, []string{"login", "authentication", "credential", "logged in", "sign in"}},
	{ErrKindArtifactNotFound, []string{"not found", "404", "no downloadable", "article", "guide page", "reference page"}},
	{ErrKindFileSize, []string{"file size", "too small", "size 0", "empty file"}},
	{ErrKindHTTP, []string{"http error", "status code", "bad gateway", "service unavailable", "forbidden"}},
	{ErrKindDownloadFailed, []string{"download", "request", "body"}},
}

// Classify maps a raw failure message onto the closed taxonomy by substring
// inspection, falling back to UnknownError.
func Classify(message string) ErrorKind {
	lower := strings.ToLower(message)
	for _, rule := range classifierRules {
		for _, fragment := range rule.fragments {
			if strings.Contains(lower, fragment) {
				return rule.kind
			}
		}
	}
	return ErrKindUnknown
}

// KindError carries an ErrorKind assigned at the point where a failure was
// first observed, so classification does not have to re-derive it from text.
type KindError struct {
	Kind ErrorKind
	Err  error
}

func (e *KindError) Error() string {
	if e == nil || e.Err == nil {
		return string(ErrKindUnknown)
	}
	return e.Err.Error()
}

func (e *KindError) Unwrap() error { return e.Err }

// WithKind wraps err with an explicit taxonomy kind.
func WithKind(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &KindError{Kind: kind, Err: err}
}

// Kindf builds a new classified error from a format string.
func Kindf(kind ErrorKind, format string, args ...any) error {
	return &KindError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// ClassifyError prefers an explicit KindError in err's chain and otherwise
// classifies err's message.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ErrKindUnknown
	}
	var kindErr *KindError
	if errors.As(err, &kindErr) && kindErr != nil && kindErr.Kind != "" {
		return kindErr.Kind
	}
	return Classify(err.Error())
}
