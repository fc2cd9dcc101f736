package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

const (
	testCookie = "activitySessionId=abc; sessionKey=sk-123"
	testOrg    = "org-1111"
)

// fakeService is an in-process TLS stand-in for the chat service.
type fakeService struct {
	t         *testing.T
	router    chi.Router
	server    *httptest.Server
	orgCalls  atomic.Int32
	orgStatus int
	orgBody   string
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	fs := &fakeService{
		t:         t,
		router:    chi.NewRouter(),
		orgStatus: http.StatusOK,
		orgBody:   `[{"uuid":"` + testOrg + `","name":"Personal"},{"uuid":"org-2222"}]`,
	}
	fs.router.Get("/api/organizations", func(w http.ResponseWriter, r *http.Request) {
		fs.orgCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(fs.orgStatus)
		_, _ = w.Write([]byte(fs.orgBody))
	})
	fs.server = httptest.NewTLSServer(fs.router)
	t.Cleanup(fs.server.Close)
	return fs
}

func (fs *fakeService) config() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = fs.server.URL
	cfg.Transport = fs.server.Client().Transport
	return cfg
}

func (fs *fakeService) client() *Client {
	fs.t.Helper()
	c, err := New(context.Background(), testCookie, fs.config())
	require.NoError(fs.t, err)
	return c
}

func writeJSONBody(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func conversationsRoute(org string) string {
	return "/api/organizations/" + org + "/chat_conversations"
}
