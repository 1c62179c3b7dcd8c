package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type objectServer struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func (s *objectServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		s.objects[r.URL.Path] = string(body)
		s.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func TestMinioArchivePut(t *testing.T) {
	backend := &objectServer{objects: map[string]string{}, types: map[string]string{}}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	a, err := New(Config{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "test",
		SecretKey: "testsecret",
		Bucket:    "exports",
		Prefix:    "/innkeeper/",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if err := a.EnsureBucket(ctx); err != nil {
		t.Fatalf("EnsureBucket() error = %v", err)
	}

	key, err := a.Put(ctx, "h1/folio/F-1.xlsx", "application/octet-stream", []byte("workbook"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if key != "innkeeper/h1/folio/F-1.xlsx" {
		t.Errorf("Put() key = %q", key)
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	// Plain-HTTP uploads may arrive aws-chunked, so only look for the payload.
	if got := backend.objects["/exports/innkeeper/h1/folio/F-1.xlsx"]; !strings.Contains(got, "workbook") {
		t.Errorf("stored object = %q, want it to contain %q", got, "workbook")
	}
	if got := backend.types["/exports/innkeeper/h1/folio/F-1.xlsx"]; got != "application/octet-stream" {
		t.Errorf("content type = %q", got)
	}
}

func TestKey(t *testing.T) {
	at := time.Date(2025, 3, 1, 23, 30, 0, 0, time.FixedZone("X", -5*3600))
	if got := Key("h1", "reservations", "r.xlsx", at); got != "h1/reservations/2025/03/02/r.xlsx" {
		t.Errorf("Key() = %q", got)
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{Endpoint: "localhost:9000"}).Enabled() {
		t.Error("config without bucket should be disabled")
	}
	if !(Config{Endpoint: "localhost:9000", Bucket: "b"}).Enabled() {
		t.Error("config with endpoint and bucket should be enabled")
	}
}
