package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goredis "github.com/redis/go-redis/v9"
)

type stubDBPinger struct {
	err     error
	lastCtx context.Context
	calls   int
}

func (s *stubDBPinger) PingContext(ctx context.Context) error {
	s.calls++
	s.lastCtx = ctx
	return s.err
}

type stubHTTPClient struct {
	resp    *http.Response
	err     error
	lastReq *http.Request
}

func (s *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type stubRedis struct {
	err error
}

func (s *stubRedis) Ping(ctx context.Context) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx, "ping")
	if s.err != nil {
		cmd.SetErr(s.err)
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

type stubDialer struct {
	err  error
	addr string
}

func (s *stubDialer) DialContext(_ context.Context, _, address string) (net.Conn, error) {
	s.addr = address
	if s.err != nil {
		return nil, s.err
	}
	client, server := net.Pipe()
	_ = server.Close()
	return client, nil
}

func TestNewDBPingProbe(t *testing.T) {
	t.Run("nil client", func(t *testing.T) {
		if err := NewDBPingProbe("postgres", nil)(context.Background()); err == nil {
			t.Fatal("expected error when db client is nil")
		}
	})

	t.Run("success forwards a context", func(t *testing.T) {
		stub := &stubDBPinger{}
		if err := NewDBPingProbe("postgres", stub)(nil); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if stub.lastCtx == nil {
			t.Fatal("expected context to be supplied")
		}
	})

	t.Run("each call is a fresh attempt", func(t *testing.T) {
		stub := &stubDBPinger{}
		attempt := NewDBPingProbe("postgres", stub)
		for i := 0; i < 3; i++ {
			_ = attempt(context.Background())
		}
		if stub.calls != 3 {
			t.Fatalf("expected 3 pings, got %d", stub.calls)
		}
	})

	t.Run("failure wraps error", func(t *testing.T) {
		sentinel := errors.New("connection refused")
		err := NewDBPingProbe("postgres", &stubDBPinger{err: sentinel})(context.Background())
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected wrapped sentinel, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "postgres probe failed") {
			t.Fatalf("expected probe name in error, got %v", err)
		}
	})
}

func TestNewRedisPingProbe(t *testing.T) {
	t.Run("nil client", func(t *testing.T) {
		if err := NewRedisPingProbe("cache", nil)(context.Background()); err == nil {
			t.Fatal("expected error when redis client is nil")
		}
	})

	t.Run("pong", func(t *testing.T) {
		if err := NewRedisPingProbe("cache", &stubRedis{})(context.Background()); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	})

	t.Run("loading dataset", func(t *testing.T) {
		sentinel := errors.New("LOADING Redis is loading the dataset in memory")
		err := NewRedisPingProbe("cache", &stubRedis{err: sentinel})(context.Background())
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected wrapped sentinel, got %v", err)
		}
	})
}

func TestNewTCPProbe(t *testing.T) {
	t.Run("requires address", func(t *testing.T) {
		if err := NewTCPProbe("mssql", "  ", nil)(context.Background()); err == nil {
			t.Fatal("expected error when address missing")
		}
	})

	t.Run("dials trimmed address", func(t *testing.T) {
		dialer := &stubDialer{}
		if err := NewTCPProbe("mssql", " mssql:1433 ", dialer)(context.Background()); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if dialer.addr != "mssql:1433" {
			t.Fatalf("expected trimmed address, got %q", dialer.addr)
		}
	})

	t.Run("dial failure", func(t *testing.T) {
		sentinel := errors.New("no route to host")
		err := NewTCPProbe("mssql", "mssql:1433", &stubDialer{err: sentinel})(context.Background())
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected wrapped sentinel, got %v", err)
		}
	})

	t.Run("real listener", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		defer ln.Close()
		go func() {
			conn, err := ln.Accept()
			if err == nil {
				_ = conn.Close()
			}
		}()

		if err := NewTCPProbe("local", ln.Addr().String(), nil)(context.Background()); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	})
}

func TestNewHTTPProbe(t *testing.T) {
	t.Run("requires target", func(t *testing.T) {
		if err := NewHTTPProbe("search", http.MethodGet, "", nil)(context.Background()); err == nil {
			t.Fatal("expected error when target missing")
		}
	})

	t.Run("success with default client", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET request, got %s", r.Method)
			}
			io.WriteString(w, "ok")
		}))
		defer server.Close()

		if err := NewHTTPProbe("api", "", server.URL, nil)(nil); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	})

	t.Run("non success status fails", func(t *testing.T) {
		client := &stubHTTPClient{resp: &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Body:       io.NopCloser(strings.NewReader("starting")),
		}}

		err := NewHTTPProbe("api", "head", "https://example.invalid", client)(context.Background())
		if err == nil || !strings.Contains(err.Error(), "unexpected status 503") {
			t.Fatalf("expected status error, got %v", err)
		}
		if client.lastReq == nil || client.lastReq.Method != http.MethodHead {
			t.Fatalf("expected HEAD request, got %+v", client.lastReq)
		}
	})

	t.Run("request failure is propagated", func(t *testing.T) {
		sentinel := errors.New("network down")
		err := NewHTTPProbe("api", http.MethodGet, "https://example.invalid", &stubHTTPClient{err: sentinel})(context.Background())
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected wrapped sentinel, got %v", err)
		}
	})

	t.Run("mutator failure aborts", func(t *testing.T) {
		sentinel := errors.New("no token")
		client := &stubHTTPClient{}
		err := NewHTTPProbe("api", http.MethodGet, "https://example.invalid", client,
			WithHTTPRequestMutator(func(*http.Request) error { return sentinel }),
		)(context.Background())
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected wrapped sentinel, got %v", err)
		}
		if client.lastReq != nil {
			t.Fatal("expected request not to be sent")
		}
	})

	t.Run("allowed statuses and headers", func(t *testing.T) {
		client := &stubHTTPClient{resp: &http.Response{
			StatusCode: http.StatusNoContent,
			Body:       io.NopCloser(strings.NewReader("")),
		}}
		attempt := NewHTTPProbe("api", http.MethodGet, "https://example.invalid", nil,
			WithHTTPClient(client),
			WithHTTPAllowedStatuses(http.StatusNoContent),
			WithHTTPHeader("Authorization", "Bearer demo"),
			WithHTTPDrainResponseBody(false),
		)
		if err := attempt(context.Background()); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if got := client.lastReq.Header.Get("Authorization"); got != "Bearer demo" {
			t.Fatalf("expected header to be set, got %q", got)
		}
	})
}

func TestWithHTTPAllowedStatusesEmptyKeepsDefault(t *testing.T) {
	cfg := buildHTTPProbeConfig(nil, WithHTTPAllowedStatuses())
	if !cfg.expect(http.StatusOK) || cfg.expect(http.StatusBadGateway) {
		t.Fatal("expected default 2xx expectation")
	}
	if cfg.client != http.DefaultClient {
		t.Fatal("expected default client")
	}
}
