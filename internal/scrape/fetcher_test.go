package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestFetchPlainHTTP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer ts.Close()

	f := NewHTTPFetcher(0)
	doc, err := f.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc.StatusCode != http.StatusOK || string(doc.Body) != "<html>ok</html>" {
		t.Errorf("unexpected document: %d %q", doc.StatusCode, doc.Body)
	}
	if doc.InsecureTLS {
		t.Error("plain fetch must not be marked as a TLS downgrade")
	}
	if doc.ContentType != "text/html" {
		t.Errorf("content type: %s", doc.ContentType)
	}
}

func TestFetchRetriesOnceWithoutVerification(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("self-signed body"))
	}))
	defer ts.Close()

	f := NewHTTPFetcher(0)
	doc, err := f.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("expected the insecure retry to succeed, got %v", err)
	}
	if !doc.InsecureTLS {
		t.Error("expected document marked InsecureTLS after downgrade")
	}
	if string(doc.Body) != "self-signed body" {
		t.Errorf("unexpected body: %q", doc.Body)
	}
	// The verified attempt fails during the handshake, so only the retry
	// reaches the handler.
	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 handled request, got %d", got)
	}
}

func TestFetchNonTLSFailureDoesNotRetry(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	f := NewHTTPFetcher(0)
	if _, err := f.Fetch(context.Background(), ts.URL); err == nil {
		t.Fatal("expected error for 500 response")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected a single attempt, got %d", got)
	}
}
