package export

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"dossier-backend/internal/credentials"
	"dossier-backend/internal/documents"
	"dossier-backend/internal/procedures"
)

type fakeFetcher struct {
	mu          sync.Mutex
	files       map[string]string
	errs        map[string]error
	block       map[string]bool
	calls       []string
	inflight    int
	maxInflight int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		files: map[string]string{},
		errs:  map[string]error{},
		block: map[string]bool{},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, _ credentials.Credential, storageID string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.calls = append(f.calls, storageID)
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
	blocked := f.block[storageID]
	err := f.errs[storageID]
	body := f.files[storageID]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	if blocked {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeFetcher) MaxInflight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInflight
}

type fakeResolver struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (r *fakeResolver) Resolve(ctx context.Context, userID string) (credentials.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return credentials.Credential{}, r.err
	}
	return credentials.NewStaticCredential(userID, &oauth2.Token{AccessToken: "tok"}), nil
}

func (r *fakeResolver) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fixture struct {
	procs    *procedures.MemoryRepo
	docs     *documents.MemoryRepo
	resolver *fakeResolver
	fetcher  *fakeFetcher
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		procs:    procedures.NewMemoryRepo(),
		docs:     documents.NewMemoryRepo(),
		resolver: &fakeResolver{},
		fetcher:  newFakeFetcher(),
	}
	f.svc = &Service{
		Procedures:  f.procs,
		Documents:   f.docs,
		Credentials: f.resolver,
		Fetcher:     f.fetcher,
		Limits: Limits{
			MaxFileBytes:    1 << 20,
			MaxArchiveBytes: 4 << 20,
			FetchTimeout:    5 * time.Second,
		},
	}
	return f
}

// addProcedure stores a procedure. links alternates requirement name and
// document id, in template order.
func (f *fixture) addProcedure(t *testing.T, id, owner, title string, links ...string) {
	t.Helper()
	require.Zero(t, len(links)%2, "links must be requirement/document pairs")
	var titlePtr *string
	if title != "" {
		titlePtr = &title
	}
	required := make([]string, 0, len(links)/2)
	mapping := make(map[string]string, len(links)/2)
	for i := 0; i < len(links); i += 2 {
		required = append(required, links[i])
		mapping[links[i]] = links[i+1]
	}
	require.NoError(t, f.procs.Put(context.Background(), procedures.Procedure{
		ID:          id,
		UserID:      owner,
		Title:       titlePtr,
		Template:    procedures.Template{ID: "tpl", Title: "Passeport", RequiredTypes: required},
		DocumentMap: mapping,
		State:       procedures.StateComplete,
		CreatedAt:   time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}))
}

// addDocument stores a document whose remote content is body. An empty
// storageID leaves the document without remote content.
func (f *fixture) addDocument(t *testing.T, id, owner, fileName, storageID, body string) {
	t.Helper()
	doc := documents.Document{ID: id, UserID: owner, FileName: fileName}
	if storageID != "" {
		doc.StorageID = &storageID
		f.fetcher.files[storageID] = body
	}
	require.NoError(t, f.docs.Put(context.Background(), doc))
}

type zipEntry struct {
	Name string
	Body string
}

func unzip(t *testing.T, data []byte) []zipEntry {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make([]zipEntry, 0, len(zr.File))
	for _, file := range zr.File {
		rc, err := file.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		_ = rc.Close()
		out = append(out, zipEntry{Name: file.Name, Body: string(body)})
	}
	return out
}

func entryNames(entries []zipEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}
