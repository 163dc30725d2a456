package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected ErrorKind
	}{
		{"download timeout", "download timeout (60 seconds exceeded)", ErrKindTimeout},
		{"context deadline", "context deadline exceeded", ErrKindTimeout},
		{"connection refused", "dial tcp: connection refused", ErrKindConnection},
		{"dns failure", "lookup static.example.vn: no such host", ErrKindConnection},
		{"login form still present", "login form still present after submission", ErrKindLogin},
		{"credentials rejected", "authentication failed for user", ErrKindLogin},
		{"page 404", "page not found (404 error)", ErrKindArtifactNotFound},
		{"article page", "article/guide page - no downloadable files", ErrKindArtifactNotFound},
		{"element missing", "no login affordance matched any selector", ErrKindElementNotFound},
		{"small file", "downloaded file too small: 512 bytes (likely error page)", ErrKindFileSize},
		{"json decode", "decode login response: invalid character", ErrKindParse},
		{"server error", "http error: unexpected status code 502", ErrKindHTTP},
		{"generic download", "downloaded file contains HTML content (likely error page)", ErrKindDownloadFailed},
		{"unmatched", "something inexplicable happened", ErrKindUnknown},
		{"empty", "", ErrKindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.message)
			if result != tt.expected {
				t.Errorf("Classify(%q) = %s, expected %s", tt.message, result, tt.expected)
			}
		})
	}
}

func TestClassifyError_PrefersExplicitKind(t *testing.T) {
	// The message alone would classify as TimeoutError; the wrapped kind wins.
	err := WithKind(ErrKindLogin, errors.New("timeout waiting for login indicator"))

	if kind := ClassifyError(err); kind != ErrKindLogin {
		t.Errorf("ClassifyError() = %s, expected %s", kind, ErrKindLogin)
	}
}

func TestClassifyError_WrappedChain(t *testing.T) {
	inner := Kindf(ErrKindFileSize, "file size below floor: %d bytes", 100)
	wrapped := fmt.Errorf("verify artifact: %w", inner)

	if kind := ClassifyError(wrapped); kind != ErrKindFileSize {
		t.Errorf("ClassifyError() through wrap = %s, expected %s", kind, ErrKindFileSize)
	}
}

func TestClassifyError_FallsBackToMessage(t *testing.T) {
	err := errors.New("dial tcp 10.0.0.1:443: connection reset by peer")

	if kind := ClassifyError(err); kind != ErrKindConnection {
		t.Errorf("ClassifyError() = %s, expected %s", kind, ErrKindConnection)
	}
}

func TestClassifyError_Nil(t *testing.T) {
	if kind := ClassifyError(nil); kind != ErrKindUnknown {
		t.Errorf("ClassifyError(nil) = %s, expected %s", kind, ErrKindUnknown)
	}
}

func TestWithKind_NilError(t *testing.T) {
	if err := WithKind(ErrKindTimeout, nil); err != nil {
		t.Errorf("WithKind(nil) = %v, expected nil", err)
	}
}

func TestKindError_Unwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := WithKind(ErrKindHTTP, fmt.Errorf("fetch: %w", sentinel))

	if !errors.Is(err, sentinel) {
		t.Error("expected errors.Is to reach the wrapped sentinel")
	}
}
