package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/claude-web-client/internal/service"
	"github.com/capitalize-ai/claude-web-client/pkg/claude"
	"github.com/capitalize-ai/claude-web-client/pkg/logger"
)

// fakeClient is an in-memory service.ChatClient.
type fakeClient struct {
	mu            sync.Mutex
	conversations []claude.Conversation
	history       map[string][]claude.ChatMessage
	answer        string
	sendErr       error
	renameErr     error

	sent     *claude.SendMessageRequest
	uploaded []uploadedFile
}

type uploadedFile struct {
	path    string
	name    string
	content string
}

func (f *fakeClient) ListConversations(ctx context.Context) ([]claude.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]claude.Conversation{}, f.conversations...), nil
}

func (f *fakeClient) CreateConversation(ctx context.Context, name string) (*claude.Conversation, error) {
	return &claude.Conversation{UUID: uuid.NewString(), Name: name}, nil
}

func (f *fakeClient) ConversationHistory(ctx context.Context, id string) ([]claude.ChatMessage, error) {
	msgs, ok := f.history[id]
	if !ok {
		return nil, &claude.Error{Code: claude.CodeNotFound, Op: "conversation_history", Message: "Not found", Status: 404}
	}
	return msgs, nil
}

func (f *fakeClient) DeleteConversation(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.conversations {
		if c.UUID == id {
			f.conversations = append(f.conversations[:i], f.conversations[i+1:]...)
			return nil
		}
	}
	return &claude.Error{Code: claude.CodeNotFound, Op: "delete_conversation", Status: 404}
}

func (f *fakeClient) RenameConversation(ctx context.Context, id, title string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	if title == "" {
		return &claude.Error{Code: claude.CodeValidation, Op: "rename_conversation", Message: "title must not be empty", Status: 400}
	}
	return nil
}

func (f *fakeClient) SendMessage(ctx context.Context, req *claude.SendMessageRequest) (string, error) {
	f.mu.Lock()
	f.sent = req
	f.mu.Unlock()

	for _, p := range req.AttachmentPaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", &claude.Error{Code: claude.CodeIO, Op: "upload_attachment", Err: err}
		}
		att := claude.Attachment{FileName: filepath.Base(p), FileSize: int64(len(data)), ExtractedContent: string(data)}
		f.uploaded = append(f.uploaded, uploadedFile{path: p, name: att.FileName, content: string(data)})
		if req.OnAttachment != nil {
			req.OnAttachment(att)
		}
	}
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.answer, nil
}

const uploadLimit = 1 << 20

func newTestRouter(fc *fakeClient) chi.Router {
	log := logger.NewNop()
	convSvc := service.NewConversationService(fc, log)
	msgSvc := service.NewMessageService(fc, nil, log)

	conversations := NewConversationHandler(convSvc, log)
	messages := NewMessageHandler(msgSvc, log, uploadLimit)
	stream := NewStreamHandler(msgSvc, log, uploadLimit)

	r := chi.NewRouter()
	r.Route("/api/v1/conversations", func(r chi.Router) {
		r.Get("/", conversations.List)
		r.Post("/", conversations.Create)
		r.Delete("/", conversations.Reset)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", conversations.Get)
			r.Put("/", conversations.Update)
			r.Delete("/", conversations.Delete)
			r.Post("/messages", messages.Send)
			r.Post("/stream", stream.StreamWithMessage)
		})
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func multipartBody(t *testing.T, prompt string, files [][2]string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if prompt != "" {
		require.NoError(t, mw.WriteField("prompt", prompt))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile("files", f[0])
		require.NoError(t, err)
		_, err = fw.Write([]byte(f[1]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestStatusForCode(t *testing.T) {
	cases := map[claude.ErrorCode]int{
		claude.CodeNotFound:          http.StatusNotFound,
		claude.CodeValidation:        http.StatusBadRequest,
		claude.CodeTimeout:           http.StatusGatewayTimeout,
		claude.CodeAuthentication:    http.StatusBadGateway,
		claude.CodeNetwork:           http.StatusBadGateway,
		claude.CodeDecode:            http.StatusBadGateway,
		claude.CodeUpload:            http.StatusBadGateway,
		claude.CodeIO:                http.StatusInternalServerError,
		claude.CodeInvalidCredential: http.StatusInternalServerError,
		"":                           http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, statusForCode(code), "code %q", code)
	}
}
