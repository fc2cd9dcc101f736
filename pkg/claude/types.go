package claude

import "time"

// Organization is one entry of the organization listing.
type Organization struct {
	UUID string `json:"uuid"`
	Name string `json:"name,omitempty"`
}

// Conversation is a chat thread owned by the organization.
type Conversation struct {
	UUID      string     `json:"uuid"`
	Name      string     `json:"name"`
	Summary   string     `json:"summary"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ChatMessage is one turn of a conversation history.
type ChatMessage struct {
	UUID         string       `json:"uuid"`
	Sender       string       `json:"sender"`
	Index        int          `json:"index"`
	Text         string       `json:"text"`
	Attachments  []Attachment `json:"attachments"`
	ChatFeedback *string      `json:"chat_feedback,omitempty"`
	CreatedAt    *time.Time   `json:"created_at,omitempty"`
}

// Attachment is the service's descriptor for an uploaded document.
type Attachment struct {
	ID               string `json:"id,omitempty"`
	ExtractedContent string `json:"extracted_content"`
	FileName         string `json:"file_name"`
	FileSize         int64  `json:"file_size"`
	FileType         string `json:"file_type"`
}

// SendMessageRequest describes one append_message call.
type SendMessageRequest struct {
	ConversationID string
	Prompt         string
	// AttachmentPaths are uploaded one at a time in this order before the
	// message is sent; the service pairs descriptors with the text by position.
	AttachmentPaths []string
	// Timeout overrides Config.MessageTimeout for the append_message request.
	Timeout time.Duration
	// OnAttachment, if set, is called after each successful upload.
	OnAttachment func(Attachment)
}

type createConversationPayload struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

type deleteConversationPayload struct {
	ConversationID string `json:"conversation_id"`
}

type renamePayload struct {
	OrganizationUUID string `json:"organization_uuid"`
	ConversationUUID string `json:"conversation_uuid"`
	Title            string `json:"title"`
}

type completionParams struct {
	Prompt   string `json:"prompt"`
	Timezone string `json:"timezone"`
	Model    string `json:"model"`
}

type appendMessagePayload struct {
	Completion       completionParams `json:"completion"`
	OrganizationUUID string           `json:"organization_uuid"`
	ConversationUUID string           `json:"conversation_uuid"`
	Text             string           `json:"text"`
	Attachments      []Attachment     `json:"attachments"`
}

type historyResponse struct {
	ChatMessages []ChatMessage `json:"chat_messages"`
}
