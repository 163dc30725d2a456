package model

import (
	"strings"
)

// WorkItem is one (title, source page URL) pair to be resolved to a
// downloadable artifact. Items are immutable once loaded from the work list;
// identity is SourceURL, which must be unique within a run.
type WorkItem struct {
	ID        int
	Title     string
	SourceURL string

	// Batch passthrough metadata, reported but never interpreted.
	BatchNumber  int
	TotalBatches int
}

// Reference-page title markers. Pages carrying only these titles are
// navigation stubs duplicating a parent document and hold nothing to fetch.
var referenceTitles = []string{
	"vb liên quan",
	"thuộc tính",
	"vb được hợp nhất",
}

// IsReferencePage reports whether the item points at a reference/attribute
// stub rather than a document page.
func (w WorkItem) IsReferencePage() bool {
	title := strings.ToLower(strings.TrimSpace(w.Title))
	for _, marker := range referenceTitles {
		if title == marker {
			return true
		}
	}
	if strings.Contains(title, "liên quan") && len(title) < 20 {
		return true
	}
	return false
}

// DisplayTitle returns the title truncated for log lines, or the source URL
// when the title is empty.
func (w WorkItem) DisplayTitle() string {
	title := strings.TrimSpace(w.Title)
	if title == "" {
		return w.SourceURL
	}
	const maxDisplay = 60
	runes := []rune(title)
	if len(runes) > maxDisplay {
		return string(runes[:maxDisplay]) + "..."
	}
	return title
}

// LocatedArtifact is the concrete artifact URL extracted from a source page,
// produced fresh per attempt and never persisted standalone.
type LocatedArtifact struct {
	WorkItemID  int
	ArtifactURL string
	Kind        ArtifactKind
}

// RetrievalOutcome reports one download attempt. BytesWritten is zero on any
// rejection; StoragePath points at the stored artifact on success (which may
// be a pre-existing file when the attempt was skipped as already done).
type RetrievalOutcome struct {
	WorkItemID   int
	BytesWritten int64
	FinalKind    ArtifactKind
	Verdict      Verdict
	StoragePath  string
}
