package handler

import (
	"bufio"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/claude-web-client/internal/model"
	"github.com/capitalize-ai/claude-web-client/pkg/claude"
)

type sseEvent struct {
	name string
	data string
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var cur sseEvent
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			cur.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			cur.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if cur.name != "" {
				events = append(events, cur)
			}
			cur = sseEvent{}
		}
	}
	require.NoError(t, sc.Err())
	return events
}

func streamPath(id string) string {
	return "/api/v1/conversations/" + id + "/stream"
}

func TestStreamHandler_EventsInOrder(t *testing.T) {
	fc := &fakeClient{answer: "All good"}
	body, contentType := multipartBody(t, "Check", [][2]string{{"a.txt", "A"}, {"b.txt", "B"}})

	rec := do(t, newTestRouter(fc), http.MethodPost, streamPath(uuid.NewString()), contentType, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, rec.Flushed)

	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 4)
	assert.Equal(t, []string{"attachment", "attachment", "completion", "done"},
		[]string{events[0].name, events[1].name, events[2].name, events[3].name})

	var first model.AttachmentEvent
	require.NoError(t, json.Unmarshal([]byte(events[0].data), &first))
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "a.txt", first.Attachment.FileName)

	var second model.AttachmentEvent
	require.NoError(t, json.Unmarshal([]byte(events[1].data), &second))
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, "b.txt", second.Attachment.FileName)

	var completion model.CompletionEvent
	require.NoError(t, json.Unmarshal([]byte(events[2].data), &completion))
	assert.Equal(t, "All good", completion.Completion)
}

func TestStreamHandler_ErrorEvent(t *testing.T) {
	fc := &fakeClient{sendErr: &claude.Error{Code: claude.CodeDecode, Op: "decode_completion", Message: "frame 3 is malformed"}}

	rec := do(t, newTestRouter(fc), http.MethodPost, streamPath(uuid.NewString()), "application/json", []byte(`{"prompt":"Hi"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].name)

	var ev model.ErrorEvent
	require.NoError(t, json.Unmarshal([]byte(events[0].data), &ev))
	assert.Equal(t, "DECODE", ev.Code)
	assert.Equal(t, "frame 3 is malformed", ev.Message)
}

func TestStreamHandler_RejectsBadRequestBeforeStreaming(t *testing.T) {
	rec := do(t, newTestRouter(&fakeClient{}), http.MethodPost, streamPath(uuid.NewString()), "application/json", []byte(`{"prompt":""}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
