package modelapi

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one message in a chat-completion request. Content is
// either a plain string or a []ContentPart for multi-part vision input.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is a fragment of a multi-part user message.
type ContentPart struct {
	Type     string    `json:"type"` // "text" | "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageRef `json:"image_url,omitempty"`
}

type ImageRef struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// TextMessage builds a plain text chat message.
func TextMessage(role, content string) ChatMessage {
	return ChatMessage{Role: role, Content: content}
}

// VisionMessage builds a user message pairing an instruction with an
// image reference. Detail "low" keeps vision token cost down.
func VisionMessage(instruction, imageURL string) ChatMessage {
	return ChatMessage{
		Role: RoleUser,
		Content: []ContentPart{
			{Type: "text", Text: instruction},
			{Type: "image_url", ImageURL: &ImageRef{URL: imageURL, Detail: "low"}},
		},
	}
}

type ChatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []ChatMessage `json:"messages"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatChoice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type ChatResponse struct {
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// Text returns the first choice's content, or "" when there is none.
func (r ChatResponse) Text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

type ImageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
}

type ImageData struct {
	URL string `json:"url"`
}

type ImageResponse struct {
	Data []ImageData `json:"data"`
}

// URL returns the first generated image URL, or "" when there is none.
func (r ImageResponse) URL() string {
	if len(r.Data) == 0 {
		return ""
	}
	return r.Data[0].URL
}

// Client calls chat-completion and image-generation endpoints.
type Client interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error)
	GenerateImage(ctx context.Context, req ImageRequest) (ImageResponse, error)
}
