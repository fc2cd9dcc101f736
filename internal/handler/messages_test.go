package handler

import (
	"bytes"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/claude-web-client/internal/model"
	"github.com/capitalize-ai/claude-web-client/pkg/claude"
)

func messagesPath(id string) string {
	return "/api/v1/conversations/" + id + "/messages"
}

func TestMessageHandler_SendJSON(t *testing.T) {
	fc := &fakeClient{answer: "Hello there"}
	id := uuid.NewString()

	rec := do(t, newTestRouter(fc), http.MethodPost, messagesPath(id), "application/json",
		[]byte(`{"prompt":"Hi","timeout_seconds":30}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[model.SendMessageResponse](t, rec)
	assert.Equal(t, "Hello there", resp.Answer)
	assert.Equal(t, id, resp.ConversationID)
	assert.Empty(t, resp.Attachments)

	require.NotNil(t, fc.sent)
	assert.Equal(t, "Hi", fc.sent.Prompt)
	assert.Equal(t, 30*time.Second, fc.sent.Timeout)
	assert.Empty(t, fc.sent.AttachmentPaths)
}

func TestMessageHandler_SendValidation(t *testing.T) {
	r := newTestRouter(&fakeClient{})
	id := uuid.NewString()

	cases := map[string]struct {
		path string
		body string
	}{
		"bad id":           {messagesPath("nope"), `{"prompt":"Hi"}`},
		"empty prompt":     {messagesPath(id), `{"prompt":"   "}`},
		"negative timeout": {messagesPath(id), `{"prompt":"Hi","timeout_seconds":-5}`},
		"malformed json":   {messagesPath(id), `{"prompt":`},
		"empty body":       {messagesPath(id), ``},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, tc.path, "application/json", []byte(tc.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestMessageHandler_SendUpstreamErrors(t *testing.T) {
	cases := map[claude.ErrorCode]int{
		claude.CodeTimeout:  http.StatusGatewayTimeout,
		claude.CodeDecode:   http.StatusBadGateway,
		claude.CodeNotFound: http.StatusNotFound,
	}
	for code, status := range cases {
		t.Run(string(code), func(t *testing.T) {
			fc := &fakeClient{sendErr: &claude.Error{Code: code, Op: "send_message", Message: "upstream said no"}}

			rec := do(t, newTestRouter(fc), http.MethodPost, messagesPath(uuid.NewString()), "application/json", []byte(`{"prompt":"Hi"}`))
			assert.Equal(t, status, rec.Code)
			errResp := decodeBody[errorResponse](t, rec)
			assert.Equal(t, string(code), errResp.Code)
			assert.Equal(t, "upstream said no", errResp.Error)
		})
	}
}

func TestMessageHandler_SendMultipart(t *testing.T) {
	fc := &fakeClient{answer: "Reviewed"}
	body, contentType := multipartBody(t, "Review these", [][2]string{
		{"b-second.txt", "second file"},
		{"a-first.pdf", "%PDF first"},
		{"../../etc/passwd", "sneaky"},
	})

	rec := do(t, newTestRouter(fc), http.MethodPost, messagesPath(uuid.NewString()), contentType, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[model.SendMessageResponse](t, rec)
	assert.Equal(t, "Reviewed", resp.Answer)
	require.Len(t, resp.Attachments, 3)

	require.Len(t, fc.uploaded, 3)
	assert.Equal(t, "b-second.txt", fc.uploaded[0].name, "form order is upload order")
	assert.Equal(t, "second file", fc.uploaded[0].content)
	assert.Equal(t, "a-first.pdf", fc.uploaded[1].name)
	assert.Equal(t, "passwd", fc.uploaded[2].name, "path components are stripped")
	assert.Equal(t, "Review these", fc.sent.Prompt)

	for _, up := range fc.uploaded {
		_, err := os.Stat(up.path)
		assert.True(t, os.IsNotExist(err), "spooled file %s is removed", up.path)
	}
}

func TestMessageHandler_SendMultipartDuplicateNames(t *testing.T) {
	fc := &fakeClient{answer: "ok"}
	body, contentType := multipartBody(t, "Compare", [][2]string{
		{"cv.pdf", "one"},
		{"cv.pdf", "two"},
	})

	rec := do(t, newTestRouter(fc), http.MethodPost, messagesPath(uuid.NewString()), contentType, body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fc.uploaded, 2)
	assert.Equal(t, "one", fc.uploaded[0].content)
	assert.Equal(t, "two", fc.uploaded[1].content)
}

func TestMessageHandler_SendMultipartWithoutPrompt(t *testing.T) {
	fc := &fakeClient{}
	body, contentType := multipartBody(t, "", [][2]string{{"cv.pdf", "data"}})

	rec := do(t, newTestRouter(fc), http.MethodPost, messagesPath(uuid.NewString()), contentType, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, fc.sent)
}

func TestMessageHandler_SendTooLarge(t *testing.T) {
	fc := &fakeClient{}
	big := strings.Repeat("x", uploadLimit+1)
	body, contentType := multipartBody(t, "Hi", [][2]string{{"big.txt", big}})

	rec := do(t, newTestRouter(fc), http.MethodPost, messagesPath(uuid.NewString()), contentType, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Nil(t, fc.sent)
}

func TestParsedInput_CleanupWithoutSpool(t *testing.T) {
	in := &parsedInput{}
	assert.NotPanics(t, func() { in.cleanup(nil) })
}

func TestBodyError(t *testing.T) {
	err := bodyError(bytes.ErrTooLarge, "bad")
	var rerr *requestError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusBadRequest, rerr.status)

	err = bodyError(&http.MaxBytesError{Limit: 10}, "bad")
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rerr.status)
}
