// Package pipeline drives work items through the authenticated retrieval
// flow: load the source page, locate the artifact, retrieve and verify it,
// record the outcome. The loop is strictly sequential — the session's
// cookie jar is single-owner and order-sensitive, so at most one page load,
// login, or download is in flight at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lawvn/lawfetch/internal/config"
	"github.com/lawvn/lawfetch/internal/fetch"
	"github.com/lawvn/lawfetch/internal/ledger"
	"github.com/lawvn/lawfetch/internal/locate"
	"github.com/lawvn/lawfetch/internal/model"
	"github.com/lawvn/lawfetch/internal/report"
	"github.com/lawvn/lawfetch/internal/session"
)

// Failure messages recorded in the ledger. The wording is stable because
// the classifier and downstream reports key off these strings.
const (
	msgPageNotFound  = "Page not found (404 error)"
	msgAuxiliaryPage = "Article/guide/reference page - no downloadable files"
	msgNoArtifact    = "Document URL not found in page source (no PDF or Word files)"
)

// PageFetcher loads one source page. *session.Transport implements it.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*session.Page, error)
}

// Runner owns one run over a work list.
type Runner struct {
	pages     PageFetcher
	auth      session.Authenticator
	locator   *locate.Locator
	retriever fetch.Retriever
	ledger    *ledger.Ledger
	settings  config.Settings
}

// NewRunner creates a new pipeline runner.
func NewRunner(pages PageFetcher, auth session.Authenticator, retriever fetch.Retriever, led *ledger.Ledger, settings config.Settings) *Runner {
	return &Runner{
		pages:     pages,
		auth:      auth,
		locator:   locate.New(),
		retriever: retriever,
		ledger:    led,
		settings:  settings,
	}
}

// Run processes items in list order and returns the aggregate summary.
// Done, known-failed, and reference-page items are skipped; every other
// item gets exactly one attempt. Cancellation between items leaves the
// ledger consistent; the in-flight item is abandoned without a recorded
// outcome.
func (r *Runner) Run(ctx context.Context, items []model.WorkItem) model.RunSummary {
	summary := model.RunSummary{
		RunID:     report.RunID(),
		Total:     len(items),
		StartedAt: time.Now(),
	}

	if recovered, err := r.ledger.Rebuild(items, r.settings.OutputDir); err != nil {
		slog.Warn("ledger rebuild failed", "error", err)
	} else if recovered > 0 {
		slog.Info("ledger rebuilt from artifact directory", "recovered", recovered)
	}

	slog.Info("run starting",
		"run_id", summary.RunID,
		"items", len(items),
		"already_completed", r.ledger.CompletedCount())

	for i, item := range items {
		if ctx.Err() != nil {
			slog.Info("run interrupted", "processed", summary.Processed())
			break
		}

		if r.ledger.IsDone(item.SourceURL) {
			summary.Skipped++
			slog.Debug("skipped: already downloaded", "title", item.DisplayTitle())
			continue
		}
		if r.ledger.IsKnownFailed(item.SourceURL) {
			summary.Skipped++
			slog.Debug("skipped: previously failed", "title", item.DisplayTitle())
			continue
		}
		if item.IsReferencePage() {
			summary.Skipped++
			slog.Debug("skipped: reference page", "title", item.DisplayTitle())
			continue
		}

		logCtx := slog.With("title", item.DisplayTitle(), "url", item.SourceURL)
		logCtx.Info("processing", "item", fmt.Sprintf("%d/%d", i+1, len(items)))

		outcome, failure := r.processItem(ctx, item)
		if ctx.Err() != nil {
			// The in-flight attempt was abandoned; leave no record of it.
			slog.Info("run interrupted", "processed", summary.Processed())
			break
		}

		switch {
		case failure != nil:
			summary.Failed++
			logCtx.Warn("item failed",
				"kind", failure.ErrorKind,
				"step", failure.Step,
				"error", failure.ErrorMessage)
			if err := r.ledger.RecordFailure(*failure); err != nil {
				logCtx.Error("record failure", "error", err)
			}
		case outcome.BytesWritten > 0:
			summary.Succeeded++
			summary.BytesStored += outcome.BytesWritten
			if err := r.ledger.RecordSuccess(item.SourceURL, outcome.StoragePath); err != nil {
				logCtx.Error("record success", "error", err)
			}
		default:
			// The artifact was already on disk; record it done, count a skip.
			summary.Skipped++
			if err := r.ledger.RecordSuccess(item.SourceURL, outcome.StoragePath); err != nil {
				logCtx.Error("record success", "error", err)
			}
		}

		r.pause(ctx)

		if r.settings.ProgressEvery > 0 && (i+1)%r.settings.ProgressEvery == 0 {
			slog.Info("progress",
				"succeeded", summary.Succeeded,
				"failed", summary.Failed,
				"skipped", summary.Skipped,
				"stored", report.FormatSize(summary.BytesStored))
		}
	}

	summary.FinishedAt = time.Now()
	slog.Info("run finished",
		"run_id", summary.RunID,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"stored", report.FormatSize(summary.BytesStored),
		"elapsed", summary.Elapsed().Round(time.Second))
	return summary
}

// RetryFailed gives every recorded failure exactly one fresh attempt. The
// session is probed once upfront — a retry pass that cannot authenticate
// at all would re-fail every entry identically — then the failed set is
// snapshotted, cleared, and re-run through the normal pipeline.
func (r *Runner) RetryFailed(ctx context.Context, items []model.WorkItem) (model.RunSummary, error) {
	snapshot := r.ledger.Snapshot()
	if len(snapshot) == 0 {
		slog.Info("no failed downloads to retry")
		now := time.Now()
		return model.RunSummary{RunID: report.RunID(), StartedAt: now, FinishedAt: now}, nil
	}

	if err := r.auth.EnsureAuthenticated(ctx); err != nil {
		return model.RunSummary{}, fmt.Errorf("session probe before retry: %w", err)
	}

	retry := matchItems(snapshot, items)
	if err := r.ledger.ClearFailures(); err != nil {
		return model.RunSummary{}, fmt.Errorf("clear failed set: %w", err)
	}

	slog.Info("retrying failed downloads", "count", len(retry))
	return r.Run(ctx, retry), nil
}

// processItem runs one work item through page load, locate, and retrieval.
// A nil failure entry means the item succeeded.
func (r *Runner) processItem(ctx context.Context, item model.WorkItem) (model.RetrievalOutcome, *model.FailureEntry) {
	page, err := r.loadPage(ctx, item.SourceURL)
	if err != nil {
		return model.RetrievalOutcome{}, failureFromError(item, "", model.StepPageLoad, err)
	}
	if page.StatusCode == http.StatusNotFound || locate.IsNotFoundPage(page.Title(), page.Body) {
		return model.RetrievalOutcome{}, failureFromMessage(item, model.StepPageLoad, msgPageNotFound)
	}

	artifact, found := r.locator.Locate(page.Body, item.ID)
	if !found {
		// Artifact links are often rendered only for authenticated
		// sessions; log in and rescan once.
		if err := r.auth.EnsureAuthenticated(ctx); err != nil {
			return model.RetrievalOutcome{}, failureFromError(item, "", model.StepLogin, err)
		}
		page, err = r.loadPage(ctx, item.SourceURL)
		if err != nil {
			return model.RetrievalOutcome{}, failureFromError(item, "", model.StepPageLoad, err)
		}
		artifact, found = r.locator.Locate(page.Body, item.ID)
	}
	if !found {
		if locate.IsAuxiliaryPage(item.SourceURL, item.Title) {
			return model.RetrievalOutcome{}, failureFromMessage(item, model.StepLocate, msgAuxiliaryPage)
		}
		return model.RetrievalOutcome{}, failureFromMessage(item, model.StepLocate, msgNoArtifact)
	}

	outcome, err := r.retriever.Retrieve(ctx, item, artifact)
	if err != nil {
		step := model.StepDownload
		if outcome.Verdict != "" && outcome.Verdict != model.VerdictValid {
			step = model.StepVerify
		}
		if outcome.Verdict == model.VerdictHTMLErrorPage {
			// Protected bytes came back as a page: the session no longer
			// grants access. Expire it so the next item logs in fresh.
			r.auth.Invalidate()
		}
		return outcome, failureFromError(item, artifact.ArtifactURL, step, err)
	}
	return outcome, nil
}

// loadPage fetches one source page under the page timeout.
func (r *Runner) loadPage(ctx context.Context, pageURL string) (*session.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, r.settings.PageTimeout)
	defer cancel()

	page, err := r.pages.FetchPage(ctx, pageURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, model.Kindf(model.ErrKindTimeout,
				"page load timeout (%.0f seconds exceeded)", r.settings.PageTimeout.Seconds())
		}
		return nil, fmt.Errorf("load page %s: %w", pageURL, err)
	}
	return page, nil
}

// pause enforces the politeness delay between processed items without
// blocking cancellation.
func (r *Runner) pause(ctx context.Context) {
	if r.settings.ItemPause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(r.settings.ItemPause):
	}
}

func failureFromError(item model.WorkItem, artifactURL, step string, err error) *model.FailureEntry {
	return &model.FailureEntry{
		Title:        item.Title,
		SourceURL:    item.SourceURL,
		ArtifactURL:  artifactURL,
		ErrorKind:    model.ClassifyError(err),
		ErrorMessage: err.Error(),
		Step:         step,
	}
}

func failureFromMessage(item model.WorkItem, step, message string) *model.FailureEntry {
	return &model.FailureEntry{
		Title:        item.Title,
		SourceURL:    item.SourceURL,
		ErrorKind:    model.Classify(message),
		ErrorMessage: message,
		Step:         step,
	}
}

// matchItems pairs failure entries with their work-list rows so retried
// items keep their batch metadata, falling back to items synthesized from
// the entry itself so retry also works from the ledger alone.
func matchItems(entries []model.FailureEntry, items []model.WorkItem) []model.WorkItem {
	byURL := make(map[string]model.WorkItem, len(items))
	for _, item := range items {
		byURL[item.SourceURL] = item
	}

	retry := make([]model.WorkItem, 0, len(entries))
	for i, entry := range entries {
		if item, ok := byURL[entry.SourceURL]; ok {
			retry = append(retry, item)
			continue
		}
		retry = append(retry, model.WorkItem{
			ID:        i + 1,
			Title:     entry.Title,
			SourceURL: entry.SourceURL,
		})
	}
	return retry
}
