package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storesearch/internal/domain"
	"github.com/kailas-cloud/storesearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

func newTestClient(url string) *Client {
	return NewClient(&Config{
		BaseURL: url,
		Token:   "test-token",
		Logger:  zap.NewNop(),
	})
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if got := r.URL.Query().Get("q"); got != "شارژر سامسونگ" {
			t.Errorf("unexpected q: %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "24" {
			t.Errorf("unexpected limit: %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":17,"domain":"invoice","title":"فاکتور ۱۷","subtitle":"علی"},
			{"id":"c-3","domain":"customer","title":"علی رضایی","titleHL":"<mark>علی</mark>"},
			{"id":"x","domain":"warehouse","title":"dropped"},
			{"domain":"product","title":"no id"},
			{"id":"p-1","domain":"product","title":"شارژر","snippet":"۲۵ وات"}
		]}`))
	}))
	defer server.Close()

	dropped := testutil.ToFloat64(metrics.RemoteSearchItemsDropped.WithLabelValues("unknown_domain"))

	items, err := newTestClient(server.URL).Search(context.Background(), "شارژر سامسونگ")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(items), items)
	}
	if items[0].ID != "17" || items[0].Domain != domain.DomainInvoice || items[0].Subtitle != "علی" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].TitleHL != "<mark>علی</mark>" {
		t.Errorf("highlight not decoded: %+v", items[1])
	}
	if items[2].Snippet != "۲۵ وات" {
		t.Errorf("snippet not decoded: %+v", items[2])
	}

	if got := testutil.ToFloat64(metrics.RemoteSearchItemsDropped.WithLabelValues("unknown_domain")); got != dropped+1 {
		t.Errorf("expected one unknown-domain drop, got %f", got-dropped)
	}
}

func TestClient_Search_ErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"server message", http.StatusForbidden, `{"message":"دسترسی ندارید"}`, "دسترسی ندارید"},
		{"no message", http.StatusInternalServerError, `{}`, domain.DefaultSearchErrorMessage},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, domain.DefaultSearchErrorMessage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			items, err := newTestClient(server.URL).Search(context.Background(), "abc")
			if items != nil {
				t.Errorf("failed call must not return items, got %v", items)
			}
			if !errors.Is(err, domain.ErrNetwork) {
				t.Fatalf("expected ErrNetwork, got %v", err)
			}
			var se *domain.SearchError
			if !errors.As(err, &se) || se.Status != tc.status {
				t.Fatalf("expected SearchError with status %d, got %v", tc.status, err)
			}
			if got := domain.UserMessage(err); got != tc.wantMsg {
				t.Errorf("user message = %q, want %q", got, tc.wantMsg)
			}
		})
	}
}

func TestClient_Search_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Search(context.Background(), "abc")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestClient_Search_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Search(context.Background(), "abc")
	if !errors.Is(err, domain.ErrNetwork) || errors.Is(err, domain.ErrAborted) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestClient_Search_Aborted(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	aborted := testutil.ToFloat64(metrics.RemoteSearchRequestsTotal.WithLabelValues(metrics.OutcomeAborted))
	failed := testutil.ToFloat64(metrics.RemoteSearchRequestsTotal.WithLabelValues(metrics.OutcomeError))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := newTestClient(server.URL).Search(ctx, "abc")
	if !errors.Is(err, domain.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if errors.Is(err, domain.ErrNetwork) {
		t.Error("abort must be distinct from network errors")
	}

	if got := testutil.ToFloat64(metrics.RemoteSearchRequestsTotal.WithLabelValues(metrics.OutcomeAborted)); got != aborted+1 {
		t.Errorf("expected aborted counter +1, got %f", got-aborted)
	}
	if got := testutil.ToFloat64(metrics.RemoteSearchRequestsTotal.WithLabelValues(metrics.OutcomeError)); got != failed {
		t.Error("abort must not count as a failure")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(&Config{BaseURL: "http://search.local/"})
	if c.endpoint != "http://search.local/api/search" {
		t.Errorf("unexpected endpoint %q", c.endpoint)
	}
	if c.limit != DefaultLimit || c.http.Timeout != DefaultTimeout {
		t.Errorf("defaults not applied: limit=%d timeout=%s", c.limit, c.http.Timeout)
	}

	c = NewClient(&Config{BaseURL: "http://search.local", Path: "v2/find", Limit: 5})
	if c.endpoint != "http://search.local/v2/find" || c.limit != 5 {
		t.Errorf("overrides not applied: %q %d", c.endpoint, c.limit)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{`"abc"`, "abc"},
		{`42`, "42"},
		{`1.5e3`, "1.5e3"},
		{`null`, ""},
		{``, ""},
		{`{"a":1}`, ""},
	}
	for _, tc := range tests {
		if got := parseID([]byte(tc.raw)); got != tc.want {
			t.Errorf("parseID(%s) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestClient_HealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"method not allowed is reachable", http.StatusMethodNotAllowed, false},
		{"server error", http.StatusBadGateway, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodHead {
					t.Errorf("unexpected method: %s", r.Method)
				}
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			err := newTestClient(server.URL).HealthCheck(context.Background())
			if (err != nil) != tc.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestClient_Search_HighlightAlias(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":1,"domain":"customer","title":"x","titleHL":"<b>x</b>","titleHighlighted":"<i>x</i>"},
			{"id":2,"domain":"customer","title":"y","titleHighlighted":"<i>y</i>"},
			{"id":3,"domain":"customer","title":"z"}
		]}`))
	}))
	defer server.Close()

	items, err := newTestClient(server.URL).Search(context.Background(), "xy")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	want := []string{"<b>x</b>", "<i>y</i>", ""}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, hl := range want {
		if items[i].TitleHL != hl {
			t.Errorf("item %d: TitleHL %q, want %q", i, items[i].TitleHL, hl)
		}
	}
}
