package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/lawvn/lawfetch/internal/config"
	"github.com/lawvn/lawfetch/internal/model"
	"github.com/lawvn/lawfetch/internal/storage"
)

// artifactAccept lists the document formats the site serves.
const artifactAccept = "application/pdf,application/x-pdf,application/zip,application/x-zip-compressed,application/msword,application/vnd.openxmlformats-officedocument.wordprocessingml.document,*/*"

// Streaming parameters.
const (
	chunkSize  = 8192
	sniffBytes = 512
	partSuffix = ".part"
)

// Service handles artifact retrieval over the shared session transport.
type Service struct {
	transport Transport
	settings  config.Settings
	verifier  *Verifier
}

// NewService creates a new fetch service.
func NewService(transport Transport, settings config.Settings) *Service {
	return &Service{
		transport: transport,
		settings:  settings,
		verifier:  NewVerifier(settings),
	}
}

// Retrieve streams one artifact to the output directory and verifies it.
// When a file for the work item already exists the download is skipped and a
// synthetic Valid outcome points at it. Rejections return a zero-byte
// outcome with the verdict set and a non-nil error; the partial file is
// removed before returning.
func (s *Service) Retrieve(ctx context.Context, item model.WorkItem, artifact model.LocatedArtifact) (model.RetrievalOutcome, error) {
	outcome := model.RetrievalOutcome{WorkItemID: item.ID}

	if existing := storage.FirstExisting(storage.CandidatePaths(s.settings.OutputDir, item.Title, item.SourceURL)); existing != "" {
		outcome.Verdict = model.VerdictValid
		outcome.StoragePath = existing
		outcome.FinalKind = model.KindForExtension(filepath.Ext(existing))
		slog.Info("artifact already on disk, skipping download", "title", item.DisplayTitle(), "path", existing)
		return outcome, nil
	}

	if err := storage.EnsureDir(s.settings.OutputDir); err != nil {
		return outcome, fmt.Errorf("prepare output directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.settings.DownloadTimeout)
	defer cancel()

	resp, err := s.get(ctx, artifact.ArtifactURL)
	if err != nil {
		return outcome, s.timeoutOr(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return outcome, model.Kindf(model.ErrKindHTTP, "HTTP error: status code %d for %s", resp.StatusCode, artifact.ArtifactURL)
	}

	kind := resolveKind(artifact.Kind, resp.Header.Get("Content-Type"))
	partPath := storage.ArtifactPath(s.settings.OutputDir, item.Title, item.SourceURL, kind) + partSuffix

	written, err := streamToFile(resp.Body, partPath)
	if err != nil {
		return outcome, s.timeoutOr(ctx, err)
	}

	head := readHead(partPath)
	if corrected := correctKind(kind, head); corrected != kind {
		slog.Info("corrected artifact extension from leading bytes",
			"title", item.DisplayTitle(), "from", kind, "to", corrected)
		kind = corrected
	}

	verdict, err := s.verifier.Verify(head, written, kind)
	if err != nil {
		storage.RemoveQuiet(partPath)
		outcome.Verdict = verdict
		return outcome, err
	}

	if s.settings.StrictPDF && kind == model.KindPDF {
		if err := validatePDF(partPath); err != nil {
			storage.RemoveQuiet(partPath)
			outcome.Verdict = model.VerdictWrongMagicBytes
			return outcome, fmt.Errorf("downloaded pdf failed strict validation: %w", err)
		}
	}

	target := storage.ArtifactPath(s.settings.OutputDir, item.Title, item.SourceURL, kind)
	if err := os.Rename(partPath, target); err != nil {
		storage.RemoveQuiet(partPath)
		return outcome, fmt.Errorf("store artifact %s: %w", target, err)
	}

	slog.Info("artifact stored", "title", item.DisplayTitle(), "path", target, "size_bytes", written)
	outcome.BytesWritten = written
	outcome.FinalKind = kind
	outcome.Verdict = model.VerdictValid
	outcome.StoragePath = target
	return outcome, nil
}

func (s *Service) get(ctx context.Context, artifactURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artifactURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", artifactURL, err)
	}
	s.transport.Decorate(req)
	req.Header.Set("Accept", artifactAccept)
	return s.transport.Client().Do(req)
}

// timeoutOr converts a deadline expiry into the taxonomy's timeout message;
// any other error passes through for the classifier.
func (s *Service) timeoutOr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return model.Kindf(model.ErrKindTimeout, "download timeout (%.0f seconds exceeded)", s.settings.DownloadTimeout.Seconds())
	}
	return err
}

// streamToFile copies the body to path in fixed-size chunks so artifacts
// are never buffered whole in memory.
func streamToFile(body io.Reader, path string) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, storage.DefaultFilePermissions)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	written, err := io.CopyBuffer(f, body, make([]byte, chunkSize))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		storage.RemoveQuiet(path)
		return 0, fmt.Errorf("stream artifact body: %w", err)
	}
	return written, nil
}

func readHead(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	head := make([]byte, sniffBytes)
	n, _ := io.ReadFull(f, head)
	return head[:n]
}

func validatePDF(path string) error {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationStrict
	return api.ValidateFile(path, conf)
}
