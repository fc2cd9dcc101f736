package claude

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHTTPClient_InvalidCredential(t *testing.T) {
	cfg := DefaultConfig().withDefaults()

	for name, cookie := range map[string]string{
		"empty":        "",
		"blank":        "   ",
		"newline":      "sessionKey=abc\r\nX-Injected: 1",
		"control char": "sessionKey=a\x00b",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := buildHTTPClient(cfg, cookie)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCredential), "got %v", err)
		})
	}
}

func TestBuildHTTPClient_RequiresHTTPSBaseURL(t *testing.T) {
	cfg := DefaultConfig().withDefaults()
	cfg.BaseURL = "http://claude.ai"

	_, err := buildHTTPClient(cfg, testCookie)
	require.Error(t, err)
	assert.Equal(t, CodeNetwork, CodeOf(err))
}

func TestHeaderTransport_RejectsPlainHTTP(t *testing.T) {
	fs := newFakeService(t)
	hc, err := buildHTTPClient(fs.config().withDefaults(), testCookie)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "http://example.com/api/organizations", nil)
	require.NoError(t, err)

	_, err = hc.Do(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestHeaderTransport_PinsHeaders(t *testing.T) {
	fs := newFakeService(t)
	var got http.Header
	fs.router.Get("/probe", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	})

	cfg := fs.config().withDefaults()
	hc, err := buildHTTPClient(cfg, testCookie)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, fs.server.URL+"/probe", nil)
	require.NoError(t, err)
	req.Header.Set("Cookie", "overridden=1")

	resp, err := hc.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, cfg.BaseURL, got.Get("Origin"))
	assert.Equal(t, cfg.BaseURL+"/chats/", got.Get("Referer"))
	assert.Equal(t, testCookie, got.Get("Cookie"))
	assert.Equal(t, DefaultUserAgent, got.Get("User-Agent"))
	assert.Equal(t, "overridden=1", req.Header.Get("Cookie"), "caller's request must not be mutated")
}

func TestServiceMessage(t *testing.T) {
	assert.Equal(t, "bad title", serviceMessage([]byte(`{"error":{"message":"bad title","type":"invalid_request_error"}}`)))
	assert.Equal(t, "Not found", serviceMessage([]byte(`{"detail":"Not found"}`)))
	assert.Equal(t, "plain text", serviceMessage([]byte("  plain text \n")))

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, serviceMessage(long), 203)
}

func TestError_IsAndFormat(t *testing.T) {
	err := &Error{Code: CodeNotFound, Op: "delete_conversation", Message: "gone", Status: 404}
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "claude: delete_conversation [NOT_FOUND]: gone (status 404)", err.Error())

	wrapped := errors.Join(errors.New("outer"), err)
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestStatusError(t *testing.T) {
	cases := map[int]ErrorCode{
		http.StatusUnauthorized:        CodeAuthentication,
		http.StatusForbidden:           CodeAuthentication,
		http.StatusNotFound:            CodeNotFound,
		http.StatusBadRequest:          CodeValidation,
		http.StatusUnprocessableEntity: CodeValidation,
		http.StatusConflict:            CodeValidation,
		http.StatusInternalServerError: CodeNetwork,
		http.StatusTooManyRequests:     CodeNetwork,
	}
	for status, want := range cases {
		err := statusError("op", status, nil)
		assert.Equal(t, want, err.Code, "status %d", status)
		assert.Equal(t, status, err.Status)
	}
}
