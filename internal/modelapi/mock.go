package modelapi

import "context"

// MockClient serves deterministic canned responses for local runs and
// tests. Hook fields override individual calls.
type MockClient struct {
	ChatFn  func(ctx context.Context, req ChatRequest) (ChatResponse, error)
	ImageFn func(ctx context.Context, req ImageRequest) (ImageResponse, error)
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) ChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if m.ChatFn != nil {
		return m.ChatFn(ctx, req)
	}
	var out ChatResponse
	out.Choices = []ChatChoice{{}}
	out.Choices[0].Message.Role = RoleAssistant
	out.Choices[0].Message.Content = "응, 나 여기 있어!"
	out.Usage = &Usage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2}
	return out, nil
}

func (m *MockClient) GenerateImage(ctx context.Context, req ImageRequest) (ImageResponse, error) {
	if m.ImageFn != nil {
		return m.ImageFn(ctx, req)
	}
	return ImageResponse{Data: []ImageData{{URL: "https://example.invalid/mock-image.png"}}}, nil
}
