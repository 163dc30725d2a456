package session

import (
	"encoding/json"
	"strings"
)

// Markers of the structured login-success response the site embeds after a
// form submission.
const (
	successMarker = "LoginSuccess"
	returnMarker  = "ReturnUrl"
	payloadPrefix = `{"Completed"`
)

// SuccessPayload is the JSON fragment carried by a successful login
// response.
type SuccessPayload struct {
	Completed bool   `json:"Completed"`
	ReturnURL string `json:"ReturnUrl"`
}

// DetectSuccessPayload reports whether body carries both success markers and
// best-effort parses the embedded JSON object. Detection does not depend on
// the parse succeeding; a mangled payload still counts as success.
func DetectSuccessPayload(body string) (SuccessPayload, bool) {
	if !strings.Contains(body, successMarker) || !strings.Contains(body, returnMarker) {
		return SuccessPayload{}, false
	}

	var payload SuccessPayload
	if start := strings.Index(body, payloadPrefix); start >= 0 {
		if end := strings.Index(body[start:], "}"); end >= 0 {
			_ = json.Unmarshal([]byte(body[start:start+end+1]), &payload)
		}
	}
	return payload, true
}
