package model

import "testing"

func TestSessionState_IsUsable(t *testing.T) {
	tests := []struct {
		state    SessionState
		expected bool
	}{
		{SessionAnonymous, false},
		{SessionLoginTriggered, false},
		{SessionCredentialsSubmitted, false},
		{SessionVerified, true},
		{SessionUnverified, true},
		{SessionExpired, false},
	}

	for _, test := range tests {
		result := test.state.IsUsable()
		if result != test.expected {
			t.Errorf("SessionState(%s).IsUsable() = %v, expected %v", test.state, result, test.expected)
		}
	}
}

func TestArtifactKind_Extension(t *testing.T) {
	tests := []struct {
		kind     ArtifactKind
		expected string
	}{
		{KindPDF, ".pdf"},
		{KindDOC, ".doc"},
		{KindDOCX, ".docx"},
		{KindZIP, ".zip"},
		{KindRTF, ".rtf"},
		{KindUnknown, ""},
	}

	for _, test := range tests {
		result := test.kind.Extension()
		if result != test.expected {
			t.Errorf("ArtifactKind(%s).Extension() = %q, expected %q", test.kind, result, test.expected)
		}
	}
}

func TestKindForExtension(t *testing.T) {
	tests := []struct {
		ext      string
		expected ArtifactKind
	}{
		{".pdf", KindPDF},
		{".PDF", KindPDF},
		{".doc", KindDOC},
		{".docx", KindDOCX},
		{".zip", KindZIP},
		{".rtf", KindRTF},
		{".html", KindUnknown},
		{"", KindUnknown},
	}

	for _, test := range tests {
		result := KindForExtension(test.ext)
		if result != test.expected {
			t.Errorf("KindForExtension(%q) = %s, expected %s", test.ext, result, test.expected)
		}
	}
}

func TestVerdict_IsValid(t *testing.T) {
	tests := []struct {
		verdict  Verdict
		expected bool
	}{
		{VerdictValid, true},
		{VerdictTooSmall, false},
		{VerdictWrongMagicBytes, false},
		{VerdictHTMLErrorPage, false},
	}

	for _, test := range tests {
		result := test.verdict.IsValid()
		if result != test.expected {
			t.Errorf("Verdict(%s).IsValid() = %v, expected %v", test.verdict, result, test.expected)
		}
	}
}

func TestWorkItem_IsReferencePage(t *testing.T) {
	tests := []struct {
		title    string
		expected bool
	}{
		{"VB liên quan", true},
		{"Thuộc tính", true},
		{"VB được hợp nhất", true},
		{"liên quan", true},
		{"Luật Giao thông đường bộ 2008", false},
		{"Nghị định 100/2019/NĐ-CP xử phạt vi phạm giao thông", false},
		{"", false},
	}

	for _, test := range tests {
		item := WorkItem{Title: test.title, SourceURL: "https://example.com/doc.html"}
		result := item.IsReferencePage()
		if result != test.expected {
			t.Errorf("IsReferencePage() with title=%q = %v, expected %v", test.title, result, test.expected)
		}
	}
}

func TestWorkItem_DisplayTitle(t *testing.T) {
	tests := []struct {
		title    string
		url      string
		expected string
	}{
		{"Short title", "https://example.com/a", "Short title"},
		{"", "https://example.com/a", "https://example.com/a"},
		{"   ", "https://example.com/b", "https://example.com/b"},
	}

	for _, test := range tests {
		item := WorkItem{Title: test.title, SourceURL: test.url}
		result := item.DisplayTitle()
		if result != test.expected {
			t.Errorf("DisplayTitle() with title=%q = %q, expected %q", test.title, result, test.expected)
		}
	}
}
