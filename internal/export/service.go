// Package export assembles a procedure's documents into a zip archive.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/time/rate"

	"dossier-backend/internal/archive"
	"dossier-backend/internal/credentials"
	"dossier-backend/internal/documents"
	"dossier-backend/internal/procedures"
	"dossier-backend/internal/remote"
	"dossier-backend/internal/shared/metrics"
	"dossier-backend/internal/shared/telemetry"
)

const (
	ModeStream = "stream"
	ModeBuffer = "buffer"
)

// Limits bounds the work done by a single export.
type Limits struct {
	MaxFileBytes    int64
	MaxArchiveBytes int64
	FetchTimeout    time.Duration
	FetchInterval   time.Duration
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxFileBytes:    50 << 20,
		MaxArchiveBytes: 500 << 20,
		FetchTimeout:    60 * time.Second,
		FetchInterval:   100 * time.Millisecond,
	}
}

// CredentialResolver resolves the remote storage credential of a user.
type CredentialResolver interface {
	Resolve(ctx context.Context, userID string) (credentials.Credential, error)
}

// Service exports procedures as zip archives.
type Service struct {
	Procedures  procedures.Repo
	Documents   documents.Repo
	Credentials CredentialResolver
	Fetcher     remote.Fetcher
	Metrics     *metrics.ExportMetrics
	Limits      Limits
}

// Stream is an archive being assembled. Stream must be closed by the caller;
// closing it early stops assembly.
type Stream struct {
	Stream   io.ReadCloser
	Filename string
	Title    string
}

// Buffer is a fully assembled archive.
type Buffer struct {
	Data     []byte
	Filename string
	Title    string
}

type job struct {
	procedure procedures.Procedure
	userID    string
	docs      []documents.Document
	cred      credentials.Credential
}

// ExportAsStream validates the export and starts assembling the archive in
// the background. Validation failures are returned before any byte is produced.
func (s *Service) ExportAsStream(ctx context.Context, procedureID, userID string) (Stream, error) {
	return s.start(ctx, procedureID, userID, ModeStream)
}

// ExportAsBuffer assembles the whole archive in memory. Cancellation of ctx
// does not interrupt assembly once validation has passed.
func (s *Service) ExportAsBuffer(ctx context.Context, procedureID, userID string) (Buffer, error) {
	st, err := s.start(context.WithoutCancel(ctx), procedureID, userID, ModeBuffer)
	if err != nil {
		return Buffer{}, err
	}
	defer st.Stream.Close()

	data, err := io.ReadAll(st.Stream)
	if err != nil {
		return Buffer{}, fmt.Errorf("assemble archive: %w", err)
	}
	return Buffer{Data: data, Filename: st.Filename, Title: st.Title}, nil
}

// Validate runs the export checks without assembling anything.
func (s *Service) Validate(ctx context.Context, procedureID, userID string) error {
	_, err := s.prepare(ctx, procedureID, userID)
	return err
}

func (s *Service) start(ctx context.Context, procedureID, userID, mode string) (Stream, error) {
	j, err := s.prepare(ctx, procedureID, userID)
	if err != nil {
		s.Metrics.IncExport(mode, outcomeFor(err))
		return Stream{}, err
	}

	title := j.procedure.DisplayTitle()
	a := archive.New(archive.WithModTime(j.procedure.ArchiveTime()))
	go s.assemble(ctx, j, a, mode)

	return Stream{
		Stream:   a.Reader(),
		Filename: DeriveFilename(title),
		Title:    title,
	}, nil
}

// prepare runs the checks that must pass before assembly starts. The order
// matters: ownership is checked before documents are read, and credentials
// are only resolved once there is something to fetch.
func (s *Service) prepare(ctx context.Context, procedureID, userID string) (job, error) {
	p, err := s.Procedures.GetWithTemplate(ctx, procedureID)
	if err != nil {
		if errors.Is(err, procedures.ErrNotFound) {
			return job{}, ErrNotFound
		}
		return job{}, fmt.Errorf("load procedure: %w", err)
	}
	if p.UserID != userID {
		return job{}, ErrUnauthorized
	}

	ids := p.DocumentIDs()
	if len(ids) == 0 {
		return job{}, ErrNoDocuments
	}

	docs, err := s.Documents.ListByKeys(ctx, documents.KeysFor(userID, ids))
	if err != nil {
		return job{}, fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		return job{}, ErrNoValidDocuments
	}

	cred, err := s.Credentials.Resolve(ctx, userID)
	if err != nil {
		if errors.Is(err, credentials.ErrCredentialMissing) {
			return job{}, ErrCredentialMissing
		}
		return job{}, fmt.Errorf("resolve credential: %w", err)
	}

	return job{procedure: p, userID: userID, docs: docs, cred: cred}, nil
}

// assemble fetches documents one at a time and writes them into a. A failed
// fetch becomes a placeholder entry; only cancellation or a broken output
// stream abort the archive.
func (s *Service) assemble(ctx context.Context, j job, a *archive.Assembler, mode string) {
	started := time.Now()
	limits := s.limits()

	limiter := rate.NewLimiter(rate.Inf, 1)
	if limits.FetchInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(limits.FetchInterval), 1)
	}

	failed := 0
	for _, doc := range j.docs {
		if err := limiter.Wait(ctx); err != nil {
			s.abort(j, a, mode, err)
			return
		}
		// The consumer may have gone away while the limiter held us.
		if a.ConsumerClosed() {
			s.abort(j, a, mode, io.ErrClosedPipe)
			return
		}
		ok, err := s.addDocument(ctx, j, a, doc, limits)
		if err != nil {
			s.abort(j, a, mode, err)
			return
		}
		if !ok {
			failed++
		}
	}

	if err := a.Finalize(); err != nil {
		s.abort(j, a, mode, err)
		return
	}

	outcome := "ok"
	if failed > 0 {
		outcome = "partial"
	}
	s.Metrics.IncExport(mode, outcome)
	s.Metrics.ObserveDuration(mode, time.Since(started))
	telemetry.Info("export.complete", map[string]any{
		"procedure_id": j.procedure.ID,
		"user_id":      j.userID,
		"mode":         mode,
		"entries":      len(j.docs),
		"failed":       failed,
		"bytes":        a.Size(),
		"duration_ms":  time.Since(started).Milliseconds(),
	})
}

// addDocument writes one entry for doc. It reports false when a placeholder
// was written instead of the file, and returns an error only when the
// archive itself can no longer be written.
func (s *Service) addDocument(ctx context.Context, j job, a *archive.Assembler, doc documents.Document, limits Limits) (bool, error) {
	if !doc.HasStorage() {
		return false, s.addPlaceholder(j, a, doc, archive.EntryFailure{FileName: doc.FileName, Kind: archive.FailureNotStored})
	}

	data, err := s.fetch(ctx, j.cred, *doc.StorageID, limits)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		failure := archive.EntryFailure{FileName: doc.FileName, Kind: archive.FailureFetch, Err: err}
		switch {
		case errors.Is(err, errFileTooLarge):
			failure.Kind = archive.FailureTooLarge
		case credentials.IsCredentialExpired(err):
			failure.Kind = archive.FailureExpiredCredential
		}
		return false, s.addPlaceholder(j, a, doc, failure)
	}

	if limits.MaxArchiveBytes > 0 && a.Size()+int64(len(data)) > limits.MaxArchiveBytes {
		failure := archive.EntryFailure{FileName: doc.FileName, Kind: archive.FailureTooLarge, Err: errFileTooLarge}
		return false, s.addPlaceholder(j, a, doc, failure)
	}

	if _, err := a.AddEntry(doc.FileName, bytes.NewReader(data)); err != nil {
		return false, err
	}
	s.Metrics.IncEntry(metrics.EntryOK)
	return true, nil
}

// fetch reads one file fully so a failure never leaves a truncated entry.
func (s *Service) fetch(ctx context.Context, cred credentials.Credential, storageID string, limits Limits) ([]byte, error) {
	if limits.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limits.FetchTimeout)
		defer cancel()
	}

	rc, err := s.Fetcher.Fetch(ctx, cred, storageID)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if limits.MaxFileBytes > 0 {
		r = io.LimitReader(rc, limits.MaxFileBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", storageID, err)
	}
	if limits.MaxFileBytes > 0 && int64(len(data)) > limits.MaxFileBytes {
		return nil, errFileTooLarge
	}
	return data, nil
}

func (s *Service) addPlaceholder(j job, a *archive.Assembler, doc documents.Document, failure archive.EntryFailure) error {
	fields := map[string]any{
		"procedure_id":       j.procedure.ID,
		"document_id":        doc.ID,
		"file_name":          doc.FileName,
		"kind":               failure.Kind.String(),
		"credential_expired": failure.Kind == archive.FailureExpiredCredential,
	}
	if failure.Err != nil {
		fields["error"] = failure.Err
	}
	telemetry.Warn("export.entry_failed", fields)
	s.Metrics.IncEntry(failure.Kind.String())

	_, err := a.AddErrorEntry(doc.FileName, failure.Message())
	return err
}

func (s *Service) abort(j job, a *archive.Assembler, mode string, err error) {
	a.Cancel(err)
	s.Metrics.IncExport(mode, "aborted")
	telemetry.Error("export.aborted", map[string]any{
		"procedure_id": j.procedure.ID,
		"user_id":      j.userID,
		"mode":         mode,
		"entries":      len(a.Entries()),
		"error":        err,
	})
}

func (s *Service) limits() Limits {
	if s.Limits == (Limits{}) {
		return DefaultLimits()
	}
	return s.Limits
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNoDocuments):
		return "no_documents"
	case errors.Is(err, ErrNoValidDocuments):
		return "no_valid_documents"
	case errors.Is(err, ErrCredentialMissing):
		return "credential_missing"
	default:
		return "error"
	}
}
