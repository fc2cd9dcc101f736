package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/claude-web-client/internal/config"
	"github.com/capitalize-ai/claude-web-client/pkg/claude"
	"github.com/capitalize-ai/claude-web-client/pkg/logger"
)

type fakeChat struct {
	convs   []claude.Conversation
	history []claude.ChatMessage
	answer  string
	err     error

	created  string
	deleted  string
	renamed  [2]string
	sent     *claude.SendMessageRequest
	resetRan bool
}

func (f *fakeChat) ListConversations(ctx context.Context) ([]claude.Conversation, error) {
	return f.convs, f.err
}

func (f *fakeChat) CreateConversation(ctx context.Context, name string) (*claude.Conversation, error) {
	f.created = name
	if f.err != nil {
		return nil, f.err
	}
	return &claude.Conversation{UUID: "new-uuid", Name: name}, nil
}

func (f *fakeChat) ConversationHistory(ctx context.Context, conversationID string) ([]claude.ChatMessage, error) {
	return f.history, f.err
}

func (f *fakeChat) DeleteConversation(ctx context.Context, conversationID string) error {
	f.deleted = conversationID
	return f.err
}

func (f *fakeChat) RenameConversation(ctx context.Context, conversationID, title string) error {
	f.renamed = [2]string{conversationID, title}
	return f.err
}

func (f *fakeChat) SendMessage(ctx context.Context, req *claude.SendMessageRequest) (string, error) {
	f.sent = req
	if f.err != nil {
		return "", f.err
	}
	for _, p := range req.AttachmentPaths {
		if req.OnAttachment != nil {
			req.OnAttachment(claude.Attachment{FileName: p, FileSize: 2048})
		}
	}
	return f.answer, nil
}

func (f *fakeChat) ResetAll(ctx context.Context) error {
	f.resetRan = true
	return f.err
}

func run(t *testing.T, f *fakeChat, args ...string) (string, string, error) {
	t.Helper()
	factory := func(ctx context.Context, cfg *config.Config, log *logger.Logger) (chatClient, error) {
		return f, nil
	}
	root := newRootCmd(factory)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestList(t *testing.T) {
	f := &fakeChat{convs: []claude.Conversation{
		{UUID: "c1", Name: "Trip planning"},
		{UUID: "c2"},
	}}

	out, _, err := run(t, f, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "UUID")
	assert.Contains(t, out, "Trip planning")
	assert.Contains(t, out, "(untitled)")
}

func TestList_Empty(t *testing.T) {
	out, _, err := run(t, &fakeChat{}, "list")
	require.NoError(t, err)
	assert.Equal(t, "No conversations.\n", out)
}

func TestCreate(t *testing.T) {
	f := &fakeChat{}
	out, _, err := run(t, f, "create", "Notes")
	require.NoError(t, err)
	assert.Equal(t, "Notes", f.created)
	assert.Contains(t, out, "new-uuid")

	f = &fakeChat{}
	_, _, err = run(t, f, "create")
	require.NoError(t, err)
	assert.Empty(t, f.created)
}

func TestHistory(t *testing.T) {
	f := &fakeChat{history: []claude.ChatMessage{
		{Sender: "human", Text: "Hi", Attachments: []claude.Attachment{{FileName: "cv.pdf", FileSize: 10}}},
		{Sender: "assistant", Text: "Hello!"},
	}}

	out, _, err := run(t, f, "history", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "human:\n")
	assert.Contains(t, out, "[attachment] cv.pdf (10 B)")
	assert.Contains(t, out, "Hello!")
}

func TestDeleteAndRename(t *testing.T) {
	f := &fakeChat{}
	_, _, err := run(t, f, "delete", "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", f.deleted)

	_, _, err = run(t, f, "rename", "c1", "New title")
	require.NoError(t, err)
	assert.Equal(t, [2]string{"c1", "New title"}, f.renamed)
}

func TestSend(t *testing.T) {
	f := &fakeChat{answer: "  Looks good.\n"}

	out, progress, err := run(t, f, "send", "c1", "Review", "-a", "b.pdf", "--attach", "a.txt", "--timeout", "2m")
	require.NoError(t, err)
	assert.Equal(t, "Looks good.\n", out)

	require.NotNil(t, f.sent)
	assert.Equal(t, "c1", f.sent.ConversationID)
	assert.Equal(t, "Review", f.sent.Prompt)
	assert.Equal(t, []string{"b.pdf", "a.txt"}, f.sent.AttachmentPaths)
	assert.Equal(t, 2*time.Minute, f.sent.Timeout)
	assert.Contains(t, progress, "uploaded b.pdf (2.0 KB)")
}

func TestSend_RequiresArgs(t *testing.T) {
	_, _, err := run(t, &fakeChat{}, "send", "c1")
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	f := &fakeChat{}
	_, _, err := run(t, f, "reset")
	require.Error(t, err)
	assert.False(t, f.resetRan)

	_, _, err = run(t, f, "reset", "--yes")
	require.NoError(t, err)
	assert.True(t, f.resetRan)
}

func TestClientErrorsPropagate(t *testing.T) {
	f := &fakeChat{err: claude.ErrNotFound}
	_, _, err := run(t, f, "history", "missing")
	assert.True(t, errors.Is(err, claude.ErrNotFound))
}

func TestFactoryError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config, log *logger.Logger) (chatClient, error) {
		return nil, claude.ErrAuthentication
	}
	root := newRootCmd(factory)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"list"})
	err := root.ExecuteContext(context.Background())
	assert.True(t, errors.Is(err, claude.ErrAuthentication))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.5 KB", formatSize(1536))
	assert.Equal(t, "3.0 MB", formatSize(3<<20))
}
