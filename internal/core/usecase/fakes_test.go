package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/dealsense/sales-intel/internal/core/domain"
	"github.com/dealsense/sales-intel/internal/core/ports"
)

type fakeRepo struct {
	mu          sync.Mutex
	docs        map[string]*domain.Document
	createErr   error
	updateErr   error
	transitions []string
}

func newFakeRepo(docs ...*domain.Document) *fakeRepo {
	r := &fakeRepo{docs: make(map[string]*domain.Document)}
	for _, doc := range docs {
		r.docs[doc.ID] = doc
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, doc *domain.Document) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeRepo) ListByStatus(_ context.Context, status domain.DocumentStatus) ([]domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Document
	for _, doc := range r.docs {
		if doc.Status == status {
			out = append(out, *doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	doc.Status = status
	doc.Error = errMessage
	r.transitions = append(r.transitions, fmt.Sprintf("%s:%s", id, status))
	return nil
}

func (r *fakeRepo) SaveExtraction(_ context.Context, id string, extraction domain.Extraction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	doc.Text = extraction.Text
	doc.Pages = extraction.Pages
	doc.UsedRecognition = extraction.UsedRecognition
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
	openErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = raw
	return nil
}

func (s *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("no object %q", key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type fakeQueue struct {
	published  []string
	publishErr error
}

func (q *fakeQueue) PublishDocumentUploaded(_ context.Context, documentID string) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.published = append(q.published, documentID)
	return nil
}

func (q *fakeQueue) SubscribeDocumentUploaded(context.Context, func(context.Context, string) error) error {
	return nil
}

// fakeExtractor returns a canned extraction per document ID, or an error.
type fakeExtractor struct {
	results map[string]domain.Extraction
	errs    map[string]error
	calls   []string
}

func (e *fakeExtractor) Extract(_ context.Context, doc *domain.Document, _ io.Reader, _ ports.ProgressSink) (domain.Extraction, error) {
	e.calls = append(e.calls, doc.ID)
	if err := e.errs[doc.ID]; err != nil {
		return domain.Extraction{}, err
	}
	return e.results[doc.ID], nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Analysis
	resets  int
	gets    int
	puts    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*domain.Analysis)}
}

func (c *fakeCache) Get(key string) (*domain.Analysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	analysis, ok := c.entries[key]
	return analysis, ok
}

func (c *fakeCache) Put(key string, analysis *domain.Analysis) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.entries[key] = analysis
}

func (c *fakeCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets++
	c.entries = make(map[string]*domain.Analysis)
}

// fakeAssembler hands out sessions that track the raw buffer as the
// best-effort view and finalize with a strict parse.
type fakeAssembler struct {
	sessions int
}

func (a *fakeAssembler) NewSession() ports.AnalysisSession {
	a.sessions++
	return &fakeSession{}
}

type fakeSession struct {
	buf     strings.Builder
	appends int
}

func (s *fakeSession) Append(fragment string) map[string]string {
	s.buf.WriteString(fragment)
	s.appends++
	return map[string]string{"summary": s.buf.String()}
}

func (s *fakeSession) Finalize() (*domain.Analysis, error) {
	var analysis domain.Analysis
	if err := json.Unmarshal([]byte(s.buf.String()), &analysis); err != nil {
		return nil, domain.ErrParseFailure
	}
	return &analysis, nil
}

// fakeStreamer replays a fixed fragment sequence.
type fakeStreamer struct {
	fragments []string
	err       error
	calls     int
	lastCtx   string
}

func (s *fakeStreamer) StreamAnalysis(_ context.Context, _ string, documentContext string, emit func(string)) error {
	s.calls++
	s.lastCtx = documentContext
	for _, fragment := range s.fragments {
		emit(fragment)
	}
	return s.err
}
