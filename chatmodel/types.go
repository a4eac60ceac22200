package chatmodel

import (
	"strings"
)

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ContentKind is the discriminator tag for ContentPart.
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentMedia ContentKind = "media"
)

// MediaData holds typed binary content (image bytes, audio, ...).
type MediaData struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// ContentPart is a tagged union representing one part of a message.
type ContentPart struct {
	Kind  ContentKind `json:"kind"`
	Text  string      `json:"text,omitempty"`
	Media *MediaData  `json:"media,omitempty"`
}

// TextPart creates a text ContentPart.
func TextPart(text string) ContentPart {
	return ContentPart{Kind: ContentText, Text: text}
}

// MediaPart creates a media ContentPart.
func MediaPart(mimeType string, data []byte) ContentPart {
	return ContentPart{Kind: ContentMedia, Media: &MediaData{MIMEType: mimeType, Data: data}}
}

// Message is one turn in a conversation.
type Message struct {
	Role  Role          `json:"role"`
	Parts []ContentPart `json:"parts"`
}

// TextContent returns the concatenation of all text parts.
func (m Message) TextContent() string {
	var sb strings.Builder
	for _, part := range m.Parts {
		if part.Kind == ContentText {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// SystemMessage creates a system Message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Parts: []ContentPart{TextPart(text)}}
}

// UserMessage creates a user Message with text content.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Parts: []ContentPart{TextPart(text)}}
}

// AssistantMessage creates an assistant Message with text content.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Parts: []ContentPart{TextPart(text)}}
}

// Usage is normalized token accounting for one model invocation. Counts
// the provider omitted stay nil rather than collapsing to zero.
type Usage struct {
	PromptTokens     *int64 `json:"prompt_tokens,omitempty"`
	CompletionTokens *int64 `json:"completion_tokens,omitempty"`
}

// Generation is one generated text alternative.
type Generation struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// ChatResponse is the normalized result of one model invocation.
type ChatResponse struct {
	Generations []Generation `json:"generations"`
	Usage       Usage        `json:"usage"`
}

// Text returns the text of the first generation.
func (r *ChatResponse) Text() string {
	if r == nil || len(r.Generations) == 0 {
		return ""
	}
	return r.Generations[0].Text
}

// StreamElement is one element of a streamed response. Exactly one of
// Response and Err is set; an element with Err set is terminal.
type StreamElement struct {
	Response *ChatResponse
	Err      error
}
