// Package archive builds zip archives incrementally and exposes them as a stream.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dossier-backend/internal/shared/util"
)

// ErrFinalized is returned when entries are added after Finalize, or when
// Finalize runs twice.
var ErrFinalized = errors.New("archive already finalized")

const (
	errorSuffix  = "_error.txt"
	fallbackName = "file"
)

// Option configures an Assembler.
type Option func(*Assembler)

// WithModTime stamps every entry with t so identical inputs produce identical bytes.
func WithModTime(t time.Time) Option {
	return func(a *Assembler) {
		a.modTime = t.UTC()
	}
}

// Assembler writes named entries into a zip stream. Writes block until the
// consumer of Reader reads them, so a consumer that stops reading stalls the
// producer instead of letting data pile up in memory.
type Assembler struct {
	pr *io.PipeReader
	pw *io.PipeWriter
	zw *zip.Writer

	modTime time.Time

	// readerClosed is set when the consumer closes Reader. Compressed output
	// sits in the zip writer's buffer before it reaches the pipe, so pipe
	// errors alone surface too late.
	readerClosed atomic.Bool

	mu        sync.Mutex
	names     map[string]struct{}
	entries   []string
	size      int64
	finalized bool
}

// New creates an Assembler with an open output stream.
func New(opts ...Option) *Assembler {
	pr, pw := io.Pipe()
	a := &Assembler{
		pr:    pr,
		pw:    pw,
		zw:    zip.NewWriter(pw),
		names: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Reader returns the archive output. Closing it before the archive is
// finalized makes pending and future writes fail with io.ErrClosedPipe.
func (a *Assembler) Reader() io.ReadCloser {
	return &archiveReader{a: a}
}

// ConsumerClosed reports whether the reader was closed by its consumer.
func (a *Assembler) ConsumerClosed() bool {
	return a.readerClosed.Load()
}

type archiveReader struct {
	a *Assembler
}

func (r *archiveReader) Read(p []byte) (int, error) {
	return r.a.pr.Read(p)
}

func (r *archiveReader) Close() error {
	r.a.readerClosed.Store(true)
	return r.a.pr.Close()
}

// AddEntry copies r into a new entry and returns the name actually used
// after sanitizing and de-duplicating name. If r fails mid-copy the entry is
// left truncated, so callers wanting all-or-nothing entries read r fully first.
func (a *Assembler) AddEntry(name string, r io.Reader) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		return "", ErrFinalized
	}
	if a.readerClosed.Load() {
		return "", io.ErrClosedPipe
	}

	entryName := a.reserve(name)
	w, err := a.zw.CreateHeader(&zip.FileHeader{
		Name:     entryName,
		Method:   zip.Deflate,
		Modified: a.modTime,
	})
	if err != nil {
		return "", fmt.Errorf("create entry %s: %w", entryName, err)
	}
	n, err := io.Copy(w, r)
	a.size += n
	if err != nil {
		return entryName, fmt.Errorf("write entry %s: %w", entryName, err)
	}
	return entryName, nil
}

// AddErrorEntry adds a plain-text placeholder named "<name>_error.txt".
func (a *Assembler) AddErrorEntry(name, message string) (string, error) {
	if strings.TrimSpace(name) == "" {
		name = fallbackName
	}
	return a.AddEntry(name+errorSuffix, strings.NewReader(message))
}

// Finalize writes the zip directory and ends the stream. It is valid with
// zero entries and may only be called once.
func (a *Assembler) Finalize() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		return ErrFinalized
	}
	a.finalized = true

	if err := a.zw.Close(); err != nil {
		_ = a.pw.CloseWithError(err)
		return fmt.Errorf("close archive: %w", err)
	}
	return a.pw.Close()
}

// Cancel aborts the archive; the consumer sees err on its next read.
func (a *Assembler) Cancel(err error) {
	if err == nil {
		err = io.ErrClosedPipe
	}
	_ = a.pw.CloseWithError(err)

	a.mu.Lock()
	a.finalized = true
	a.mu.Unlock()
}

// Entries returns the entry names written so far, in order.
func (a *Assembler) Entries() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	copy(out, a.entries)
	return out
}

// Size returns the uncompressed bytes written into entries so far.
func (a *Assembler) Size() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.size
}

// reserve sanitizes name and claims a unique variant of it. Callers hold mu.
func (a *Assembler) reserve(name string) string {
	safe := fallbackName
	if strings.TrimSpace(name) != "" {
		safe = util.ReplaceUnsafe(name, util.IsFileNameSafe)
	}
	unique := util.UniqueName(safe, func(candidate string) bool {
		_, taken := a.names[candidate]
		return taken
	})
	a.names[unique] = struct{}{}
	a.entries = append(a.entries, unique)
	return unique
}
