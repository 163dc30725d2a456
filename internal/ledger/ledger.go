// Package ledger persists per-item outcomes so an interrupted run resumes
// where it stopped. Successes append to a plain-text log, one source URL per
// line; failures live in a JSON store that is rewritten whole on every
// change, which stays cheap because failures are orders of magnitude rarer
// than successes.
package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lawvn/lawfetch/internal/model"
	"github.com/lawvn/lawfetch/internal/storage"
)

// Ledger tracks which source URLs are done and which failed. All access goes
// through one mutex; the ledger assumes single-process ownership of its
// files for the duration of a run.
type Ledger struct {
	mu           sync.Mutex
	progressPath string
	failuresPath string
	progress     *os.File
	done         map[string]model.CompletedEntry
	failed       map[string]int
	failures     []model.FailureEntry
}

// Open loads both stores and keeps the progress log open for appending.
// A missing progress log or failure store starts empty; an unreadable
// failure store is treated as empty rather than aborting the run.
func Open(progressPath, failuresPath string) (*Ledger, error) {
	l := &Ledger{
		progressPath: progressPath,
		failuresPath: failuresPath,
		done:         make(map[string]model.CompletedEntry),
		failed:       make(map[string]int),
	}

	// The progress log carries only URLs; storage paths and completion
	// times for earlier runs are not recoverable from it.
	if data, err := os.ReadFile(progressPath); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			if url := strings.TrimSpace(line); url != "" {
				l.done[url] = model.CompletedEntry{SourceURL: url}
			}
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read progress log %s: %w", progressPath, err)
	}

	f, err := os.OpenFile(progressPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, storage.DefaultFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("open progress log %s: %w", progressPath, err)
	}
	l.progress = f

	l.loadFailures()
	return l, nil
}

func (l *Ledger) loadFailures() {
	data, err := os.ReadFile(l.failuresPath)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		slog.Warn("failure store unreadable, starting empty", "path", l.failuresPath, "error", err)
		return
	}
	if err := json.Unmarshal(data, &l.failures); err != nil {
		slog.Warn("failure store malformed, starting empty", "path", l.failuresPath, "error", err)
		l.failures = nil
		return
	}

	// A URL can never be both done and failed. The success log wins; the
	// dropped entries disappear from disk on the next store rewrite.
	kept := l.failures[:0]
	for _, entry := range l.failures {
		if _, isDone := l.done[entry.SourceURL]; isDone {
			continue
		}
		l.failed[entry.SourceURL] = len(kept)
		kept = append(kept, entry)
	}
	l.failures = kept
}

// Close releases the progress log handle.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.progress.Close()
}

// IsDone reports whether the source URL has a recorded success.
func (l *Ledger) IsDone(sourceURL string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.done[sourceURL]
	return ok
}

// Completed returns the recorded success for a source URL. Entries restored
// from the progress log of an earlier run carry only the URL.
func (l *Ledger) Completed(sourceURL string) (model.CompletedEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.done[sourceURL]
	return entry, ok
}

// IsKnownFailed reports whether the source URL has a recorded failure.
func (l *Ledger) IsKnownFailed(sourceURL string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.failed[sourceURL]
	return ok
}

// CompletedCount returns the number of recorded successes.
func (l *Ledger) CompletedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.done)
}

// RecordSuccess appends the source URL to the progress log before updating
// in-memory state, so a crash mid-run loses at most the current item. Any
// earlier failure entry for the URL is removed.
func (l *Ledger) RecordSuccess(sourceURL, storagePath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := fmt.Fprintln(l.progress, sourceURL); err != nil {
		return fmt.Errorf("append progress log: %w", err)
	}
	if err := l.progress.Sync(); err != nil {
		return fmt.Errorf("sync progress log: %w", err)
	}
	l.done[sourceURL] = model.CompletedEntry{
		SourceURL:   sourceURL,
		StoragePath: storagePath,
		CompletedAt: time.Now(),
	}

	if idx, ok := l.failed[sourceURL]; ok {
		l.failures = append(l.failures[:idx], l.failures[idx+1:]...)
		delete(l.failed, sourceURL)
		for url, i := range l.failed {
			if i > idx {
				l.failed[url] = i - 1
			}
		}
		return l.writeFailures()
	}
	return nil
}

// RecordFailure stores the latest failed attempt for a source URL. A repeat
// failure updates the existing entry in place and increments its retry
// count instead of creating a duplicate.
func (l *Ledger) RecordFailure(entry model.FailureEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.LastAttemptAt.IsZero() {
		entry.LastAttemptAt = time.Now()
	}

	if idx, ok := l.failed[entry.SourceURL]; ok {
		entry.RetryCount = l.failures[idx].RetryCount + 1
		l.failures[idx] = entry
	} else {
		entry.RetryCount = 0
		l.failed[entry.SourceURL] = len(l.failures)
		l.failures = append(l.failures, entry)
	}
	return l.writeFailures()
}

// ClearFailures empties the failed-set; the retry pass calls this before
// giving every failed item one fresh attempt.
func (l *Ledger) ClearFailures() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures = nil
	l.failed = make(map[string]int)
	return l.writeFailures()
}

// Snapshot returns a copy of the failure entries in recording order.
func (l *Ledger) Snapshot() []model.FailureEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.FailureEntry, len(l.failures))
	copy(out, l.failures)
	return out
}

// Rebuild repopulates an empty completed-set from artifacts already on
// disk, probing every known extension for each work item's deterministic
// base name. Recovered URLs are appended to the progress log so the healing
// survives the run. A ledger that already has successes is left alone.
func (l *Ledger) Rebuild(items []model.WorkItem, outputDir string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.done) > 0 {
		return 0, nil
	}

	recovered := 0
	for _, item := range items {
		path := storage.FirstExisting(storage.CandidatePaths(outputDir, item.Title, item.SourceURL))
		if path == "" {
			continue
		}
		if _, err := fmt.Fprintln(l.progress, item.SourceURL); err != nil {
			return recovered, fmt.Errorf("append progress log: %w", err)
		}
		l.done[item.SourceURL] = model.CompletedEntry{
			SourceURL:   item.SourceURL,
			StoragePath: path,
			CompletedAt: time.Now(),
		}
		recovered++
	}
	if recovered > 0 {
		if err := l.progress.Sync(); err != nil {
			return recovered, fmt.Errorf("sync progress log: %w", err)
		}
		slog.Info("rebuilt progress from existing files", "recovered", recovered)
	}
	return recovered, nil
}

// writeFailures rewrites the failure store through a temp file so a crash
// mid-write never leaves a truncated store. Callers hold l.mu.
func (l *Ledger) writeFailures() error {
	entries := l.failures
	if entries == nil {
		entries = []model.FailureEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal failure store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.failuresPath), ".failures-*.json")
	if err != nil {
		return fmt.Errorf("create temp failure store: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write failure store: %w", err)
	}
	if err := tmp.Chmod(storage.DefaultFilePermissions); err != nil {
		return fmt.Errorf("chmod failure store: %w", err)
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close failure store: %w", err)
	}
	if err := os.Rename(tmpName, l.failuresPath); err != nil {
		return fmt.Errorf("commit failure store: %w", err)
	}
	return nil
}
