package collyfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the body of a 200 response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("hello"))
		}))
		defer srv.Close()

		f := New(Config{}, zap.NewNop())
		body, err := f.Fetch(ctx, srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "hello", body)
	})

	t.Run("non-200 bodies are passed through", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("slow down"))
		}))
		defer srv.Close()

		f := New(Config{}, zap.NewNop())
		body, err := f.Fetch(ctx, srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "slow down", body)
	})

	t.Run("sends a user agent from the configured pool", func(t *testing.T) {
		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.UserAgent()
			_, _ = w.Write([]byte("ok"))
		}))
		defer srv.Close()

		f := New(Config{UserAgents: []string{"agent-a", "agent-b"}}, zap.NewNop())
		_, err := f.Fetch(ctx, srv.URL)
		require.NoError(t, err)
		assert.Contains(t, []string{"agent-a", "agent-b"}, gotUA)
	})

	t.Run("unreachable host is an error", func(t *testing.T) {
		f := New(Config{Timeout: time.Second}, zap.NewNop())
		_, err := f.Fetch(ctx, "http://127.0.0.1:1")
		require.Error(t, err)
	})

	t.Run("canceled context aborts the fetch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(2 * time.Second)
			_, _ = w.Write([]byte("late"))
		}))
		defer srv.Close()

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		f := New(Config{}, zap.NewNop())
		_, err := f.Fetch(canceled, srv.URL)
		require.Error(t, err)
	})
}

func TestPickUserAgent(t *testing.T) {
	t.Run("empty config falls back to the default pool", func(t *testing.T) {
		f := New(Config{}, zap.NewNop())
		assert.Contains(t, defaultUserAgents, f.pickUserAgent())
	})

	t.Run("configured pool is used", func(t *testing.T) {
		f := New(Config{UserAgents: []string{"only-agent"}}, zap.NewNop())
		assert.Equal(t, "only-agent", f.pickUserAgent())
	})
}
