package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anonymeye/apex-platform/internal/apiclient"
	"github.com/anonymeye/apex-platform/pkg/types"
)

// memSession is an in-memory SessionStore for tests.
type memSession struct {
	session *types.Session
	cleared atomic.Bool
}

func (m *memSession) Session() (*types.Session, error) { return m.session, nil }
func (m *memSession) ClearSession() error {
	m.session = nil
	m.cleared.Store(true)
	return nil
}

func newTestClient(t *testing.T, srv *httptest.Server, session *memSession) *apiclient.Client {
	t.Helper()
	return apiclient.New(apiclient.Options{
		BaseURL: srv.URL,
		Version: "v1",
		Timeout: 5 * time.Second,
		Session: session,
	})
}

func TestBearerTokenInjection(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		if r.URL.Path != "/api/v1/agents" {
			t.Errorf("path = %q, want /api/v1/agents", r.URL.Path)
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	session := &memSession{session: &types.Session{Token: "jwt-123"}}
	c := newTestClient(t, srv, session)

	if _, err := c.ListAgents(context.Background()); err != nil {
		t.Fatalf("ListAgents: %v", err)
	}
	if gotAuth != "Bearer jwt-123" {
		t.Errorf("Authorization = %q, want Bearer jwt-123", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestNoSessionFailsBeforeRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &memSession{})

	_, err := c.ListAgents(context.Background())
	if !errors.Is(err, types.ErrNotLoggedIn) {
		t.Fatalf("err = %v, want ErrNotLoggedIn", err)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("request count = %d, want 0 (no round-trip without a token)", n)
	}
}

func TestLoginWorksWithoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"access_token":"fresh-jwt","user":{"id":"u1","email":"ops@example.com"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &memSession{})

	session, err := c.Login(context.Background(), "ops@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token != "fresh-jwt" {
		t.Errorf("token = %q, want fresh-jwt", session.Token)
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	session := &memSession{session: &types.Session{Token: "stale"}}
	c := newTestClient(t, srv, session)

	_, err := c.ListAgents(context.Background())
	if !errors.Is(err, types.ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if !session.cleared.Load() {
		t.Error("session was not cleared after 401")
	}
}

func TestUnauthorizedOnAuthPathKeepsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid credentials"}`))
	}))
	defer srv.Close()

	session := &memSession{session: &types.Session{Token: "current"}}
	c := newTestClient(t, srv, session)

	_, err := c.Login(context.Background(), "ops@example.com", "wrong")
	if errors.Is(err, types.ErrSessionExpired) {
		t.Fatal("failed login must not look like an expired session")
	}
	var apiErr *types.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 APIError", err)
	}
	if apiErr.Message != "invalid credentials" {
		t.Errorf("message = %q, want detail from body", apiErr.Message)
	}
	if session.cleared.Load() {
		t.Error("existing session cleared by a failed login")
	}
}

func TestListNotFoundMeansEmptyAndNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &memSession{session: &types.Session{Token: "jwt-123"}})

	agents, err := c.ListAgents(context.Background())
	if err != nil {
		t.Fatalf("404 on list must not be an error, got %v", err)
	}
	if len(agents) != 0 {
		t.Errorf("agents = %v, want empty", agents)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("request count = %d, want 1 (no retries for 404)", n)
	}
}

func TestServerErrorIsRetriedThenSurfaced(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"db unavailable"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &memSession{session: &types.Session{Token: "jwt-123"}})

	_, err := c.ListConnections(context.Background())
	var apiErr *types.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err = %v, want 500 APIError", err)
	}
	if n := calls.Load(); n < 2 {
		t.Errorf("request count = %d, want retries for 5xx", n)
	}
}

func TestGetNotFoundIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"agent not found"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &memSession{session: &types.Session{Token: "jwt-123"}})

	// 404-as-empty applies to list endpoints only; a missing entity is
	// still an error.
	_, err := c.GetAgent(context.Background(), "nope")
	if !types.IsNotFound(err) {
		t.Fatalf("err = %v, want 404 APIError", err)
	}
}

func TestListScoresKeepsWindowOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &memSession{session: &types.Session{Token: "jwt-123"}})

	page, err := c.ListScores(context.Background(), "run-1", 40, 20)
	if err != nil {
		t.Fatalf("ListScores: %v", err)
	}
	if page.Skip != 40 || page.Limit != 20 {
		t.Errorf("window = (%d,%d), want (40,20)", page.Skip, page.Limit)
	}
	if page.HasMore() {
		t.Error("empty page reports HasMore")
	}
	if !page.HasPrevious() {
		t.Error("skip=40 must report HasPrevious")
	}
}

func TestUploadDocumentSendsChunkingParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("chunk_size"); got != "512" {
			t.Errorf("chunk_size = %q, want 512", got)
		}
		if got := r.FormValue("chunk_overlap"); got != "64" {
			t.Errorf("chunk_overlap = %q, want 64", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "notes.md" {
			t.Errorf("filename = %q, want notes.md", header.Filename)
		}
		body, _ := io.ReadAll(file)
		if string(body) != "# notes" {
			t.Errorf("file body = %q", body)
		}
		w.Write([]byte(`{"id":"doc-1","knowledge_base_id":"kb-1","filename":"notes.md"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &memSession{session: &types.Session{Token: "jwt-123"}})

	doc, err := c.UploadDocument(context.Background(), "kb-1", "notes.md",
		strings.NewReader("# notes"), types.UploadParams{ChunkSize: 512, ChunkOverlap: 64})
	if err != nil {
		t.Fatalf("UploadDocument: %v", err)
	}
	if doc.ID != "doc-1" {
		t.Errorf("doc id = %q, want doc-1", doc.ID)
	}
}
