package poller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kafkapulse/kafkapulse/internal/config"
	"github.com/kafkapulse/kafkapulse/internal/normalize"
)

const brokerExposition = `# HELP kafka_server_BrokerTopicMetrics_OneMinuteRate rate
kafka_server_BrokerTopicMetrics_OneMinuteRate 12.5
jmx_scrape_duration_seconds 0.01
`

func TestNew_UnsupportedMode(t *testing.T) {
	if _, err := New(config.Source{ID: "x", Mode: "graphite", Endpoint: "http://h"}); err == nil {
		t.Fatal("expected error for unsupported mode, got nil")
	}
}

func TestTextPoller_ReturnsBodyVerbatim(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = w.Write([]byte(brokerExposition))
	}))
	defer srv.Close()

	p, err := New(config.Source{ID: "broker", Mode: "jmx", Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	body, mode, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if mode != normalize.ModeJMX {
		t.Errorf("mode = %q, want %q", mode, normalize.ModeJMX)
	}
	if string(body) != brokerExposition {
		t.Errorf("body altered in transit:\n%s", body)
	}
	if !strings.Contains(gotAccept, "text/plain") {
		t.Errorf("Accept header = %q, want text exposition format", gotAccept)
	}
}

func TestTextPoller_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, _ := New(config.Source{ID: "broker", Mode: "text", Endpoint: srv.URL})
	if _, _, err := p.Poll(context.Background()); err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
}

func TestTextPoller_ConnectFailure(t *testing.T) {
	p, _ := New(config.Source{ID: "down", Mode: "jmx", Endpoint: "http://127.0.0.1:1"})
	if _, _, err := p.Poll(context.Background()); err == nil {
		t.Fatal("expected error for unreachable endpoint, got nil")
	}
}

func TestQueryPoller_ExtractsResultArray(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query" {
			t.Errorf("path = %q, want /api/v1/query", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": {
				"resultType": "vector",
				"result": [{"metric": {"__name__": "up", "job": "api", "instance": "i"}, "value": [1700000000, "1"]}]
			}
		}`))
	}))
	defer srv.Close()

	p, err := New(config.Source{ID: "prom", Mode: "query", Endpoint: srv.URL + "/", Query: "up"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	body, mode, err := p.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if mode != normalize.ModeQuery {
		t.Errorf("mode = %q, want %q", mode, normalize.ModeQuery)
	}
	if gotQuery != "up" {
		t.Errorf("query param = %q, want %q", gotQuery, "up")
	}
	if !strings.HasPrefix(strings.TrimSpace(string(body)), "[") {
		t.Errorf("body is not the raw result array: %s", body)
	}
}

func TestQueryPoller_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "error", "data": {}}`))
	}))
	defer srv.Close()

	p, _ := New(config.Source{ID: "prom", Mode: "query", Endpoint: srv.URL, Query: "up"})
	if _, _, err := p.Poll(context.Background()); err == nil {
		t.Fatal("expected error for query status != success, got nil")
	}
}

func TestAuthRoundTripper_Headers(t *testing.T) {
	t.Setenv("POLLER_TEST_KEY", "s3cret")
	t.Setenv("POLLER_TEST_TOKEN", "tok")

	cases := []struct {
		name string
		auth config.AuthConfig
		want func(*http.Request) bool
	}{
		{
			name: "apikey",
			auth: config.AuthConfig{Mode: "apikey", Header: "X-Api-Key", KeyEnv: "POLLER_TEST_KEY"},
			want: func(r *http.Request) bool { return r.Header.Get("X-Api-Key") == "s3cret" },
		},
		{
			name: "bearer",
			auth: config.AuthConfig{Mode: "bearer", TokenEnv: "POLLER_TEST_TOKEN"},
			want: func(r *http.Request) bool { return r.Header.Get("Authorization") == "Bearer tok" },
		},
		{
			name: "none",
			auth: config.AuthConfig{Mode: "none"},
			want: func(r *http.Request) bool { return r.Header.Get("Authorization") == "" },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok := false
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ok = tc.want(r)
				_, _ = w.Write([]byte("kafka_x 1\n"))
			}))
			defer srv.Close()

			p, err := New(config.Source{ID: "s", Mode: "text", Endpoint: srv.URL, Auth: tc.auth})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if _, _, err := p.Poll(context.Background()); err != nil {
				t.Fatalf("Poll() error = %v", err)
			}
			if !ok {
				t.Error("expected auth header not present on request")
			}
		})
	}
}
