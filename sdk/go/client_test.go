package finplansdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestNewInitializesHTTPClient(t *testing.T) {
	c := New("http://localhost")
	if c.HTTPClient == nil {
		t.Fatalf("New left HTTPClient nil")
	}
	if c.HTTPClient.Timeout != c.Timeout {
		t.Fatalf("client timeout = %v, want %v", c.HTTPClient.Timeout, c.Timeout)
	}
}

func TestConcurrentRequestsDoNotMutateClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	// A zero-value client fills in a transport per call without writing it
	// back, so shared use stays race-free.
	c := &Client{BaseURL: srv.URL}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Health(context.Background()); err != nil {
				t.Errorf("health: %v", err)
			}
		}()
	}
	wg.Wait()
	if c.HTTPClient != nil {
		t.Fatalf("request mutated the shared client")
	}
}
