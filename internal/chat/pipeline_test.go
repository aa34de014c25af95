package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dearxhq/dearx/internal/imagegen"
	"github.com/dearxhq/dearx/internal/modelapi"
	"github.com/dearxhq/dearx/internal/persona"
)

func testPipeline(models modelapi.Client) *Pipeline {
	resolver := imagegen.NewResolver(models, imagegen.Config{
		VisionModel:     "gpt-4o-mini",
		VisionMaxTokens: 500,
		VisionTimeout:   5 * time.Second,
		ImageModel:      "dall-e-3",
		ImageSize:       "1024x1024",
		ImageQuality:    "standard",
		ImageTimeout:    5 * time.Second,
	})
	return NewPipeline(models, resolver, nil, nil, Config{
		Model:     "gpt-4o-mini",
		MaxTokens: 400,
		Timeout:   5 * time.Second,
	})
}

func chatReply(text string) modelapi.ChatResponse {
	var out modelapi.ChatResponse
	out.Choices = []modelapi.ChatChoice{{}}
	out.Choices[0].Message.Role = modelapi.RoleAssistant
	out.Choices[0].Message.Content = text
	out.Usage = &modelapi.Usage{PromptTokens: 20, CompletionTokens: 5, TotalTokens: 25}
	return out
}

func motherRequest(lastUtterance string) Request {
	return Request{
		Persona: persona.Persona{
			Name:          "엄마",
			Relationship:  "엄마",
			TargetAge:     45,
			Gender:        persona.GenderFemale,
			TimeDirection: persona.DirectionPast,
			Photo:         "https://cdn.example/mom.jpg",
		},
		Turns: []persona.Turn{
			{Role: persona.RoleUser, Content: "안녕"},
			{Role: persona.RoleAssistant, Content: "안녕! 잘 지냈어?"},
			{Role: persona.RoleUser, Content: lastUtterance},
		},
		UserName: "지은",
		Language: "ko",
	}
}

func TestRespondTextOnlyTurn(t *testing.T) {
	var gotReq modelapi.ChatRequest
	mock := modelapi.NewMockClient()
	mock.ChatFn = func(_ context.Context, req modelapi.ChatRequest) (modelapi.ChatResponse, error) {
		gotReq = req
		return chatReply("응, 잘 지냈어!"), nil
	}
	mock.ImageFn = func(context.Context, modelapi.ImageRequest) (modelapi.ImageResponse, error) {
		t.Fatalf("text-only turn must not call the image model")
		return modelapi.ImageResponse{}, nil
	}

	res, err := testPipeline(mock).Respond(context.Background(), motherRequest("밥 먹었어?"))
	if err != nil {
		t.Fatalf("Respond error = %v", err)
	}
	if res.Reply.Message != "응, 잘 지냈어!" {
		t.Fatalf("message = %q", res.Reply.Message)
	}
	if res.Reply.ImageURL != "" {
		t.Fatalf("imageURL = %q, want empty", res.Reply.ImageURL)
	}
	if res.WantsPhoto {
		t.Fatalf("WantsPhoto = true for a non-photo utterance")
	}
	if res.PhotoOutcome != imagegen.OutcomeNone {
		t.Fatalf("PhotoOutcome = %s, want none", res.PhotoOutcome)
	}

	if len(gotReq.Messages) != 4 {
		t.Fatalf("messages = %d, want system + 3 turns", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != modelapi.RoleSystem {
		t.Fatalf("first message role = %q, want system", gotReq.Messages[0].Role)
	}
	if gotReq.Messages[3].Content != "밥 먹었어?" {
		t.Fatalf("last message = %v, want newest user utterance", gotReq.Messages[3].Content)
	}
	if gotReq.Model != "gpt-4o-mini" || gotReq.MaxTokens != 400 {
		t.Fatalf("request model/max_tokens = %q/%d", gotReq.Model, gotReq.MaxTokens)
	}
}

func TestRespondReusesStoredPhoto(t *testing.T) {
	var systemPrompt string
	mock := modelapi.NewMockClient()
	mock.ChatFn = func(_ context.Context, req modelapi.ChatRequest) (modelapi.ChatResponse, error) {
		systemPrompt, _ = req.Messages[0].Content.(string)
		return chatReply("이 사진 기억나? 우리 이때 찍었잖아~"), nil
	}
	mock.ImageFn = func(context.Context, modelapi.ImageRequest) (modelapi.ImageResponse, error) {
		t.Fatalf("stored photo reuse must not call the image model")
		return modelapi.ImageResponse{}, nil
	}

	res, err := testPipeline(mock).Respond(context.Background(), motherRequest("사진 보여줘"))
	if err != nil {
		t.Fatalf("Respond error = %v", err)
	}
	if res.Reply.ImageURL != "https://cdn.example/mom.jpg" {
		t.Fatalf("imageURL = %q, want stored photo unchanged", res.Reply.ImageURL)
	}
	if res.Reply.Message == "" {
		t.Fatalf("message should be non-empty completion text")
	}
	if res.PhotoOutcome != imagegen.OutcomeReused {
		t.Fatalf("PhotoOutcome = %s, want reused", res.PhotoOutcome)
	}
	if !strings.Contains(systemPrompt, "실제 그때 사진") {
		t.Fatalf("system prompt should coach the stored-photo reply:\n%s", systemPrompt)
	}
}

func TestRespondSelfWithoutReferenceSynthesizes(t *testing.T) {
	visionCalls := 0
	mock := modelapi.NewMockClient()
	mock.ChatFn = func(_ context.Context, req modelapi.ChatRequest) (modelapi.ChatResponse, error) {
		// The pipeline's completion and the resolver's vision call share
		// the client; vision requests carry multi-part content.
		if _, multi := req.Messages[len(req.Messages)-1].Content.([]modelapi.ContentPart); multi {
			visionCalls++
			return chatReply("features"), nil
		}
		return chatReply("짜잔~ 나 이렇게 늙었어 ㅎㅎ"), nil
	}
	mock.ImageFn = func(_ context.Context, req modelapi.ImageRequest) (modelapi.ImageResponse, error) {
		if !strings.Contains(req.Prompt, "elderly") {
			t.Errorf("prompt should describe an elderly subject:\n%s", req.Prompt)
		}
		if strings.Contains(req.Prompt, "Character design reference") {
			t.Errorf("no reference photo means no feature block:\n%s", req.Prompt)
		}
		return modelapi.ImageResponse{Data: []modelapi.ImageData{{URL: "https://img.example/old-me.png"}}}, nil
	}

	req := Request{
		Persona: persona.Persona{
			Name:          "지은",
			Relationship:  persona.RelationshipSelf,
			TargetAge:     70,
			CurrentAge:    30,
			Gender:        persona.GenderFemale,
			TimeDirection: persona.DirectionFuture,
		},
		Turns:    []persona.Turn{{Role: persona.RoleUser, Content: "지금 모습 보여줘"}},
		UserName: "지은",
	}
	res, err := testPipeline(mock).Respond(context.Background(), req)
	if err != nil {
		t.Fatalf("Respond error = %v", err)
	}
	if visionCalls != 0 {
		t.Fatalf("vision calls = %d, want 0 without a reference photo", visionCalls)
	}
	if res.PhotoOutcome != imagegen.OutcomeSynthesized {
		t.Fatalf("PhotoOutcome = %s, want synthesized", res.PhotoOutcome)
	}
	if res.Reply.ImageURL != "https://img.example/old-me.png" {
		t.Fatalf("imageURL = %q", res.Reply.ImageURL)
	}
}

func TestRespondCompletionFailureFailsTurn(t *testing.T) {
	mock := modelapi.NewMockClient()
	mock.ChatFn = func(context.Context, modelapi.ChatRequest) (modelapi.ChatResponse, error) {
		return modelapi.ChatResponse{}, errors.New("upstream down")
	}

	_, err := testPipeline(mock).Respond(context.Background(), motherRequest("안녕"))
	if err == nil {
		t.Fatalf("completion failure should fail the turn")
	}
	if !strings.Contains(err.Error(), "completion call") {
		t.Fatalf("error should name the failed stage: %v", err)
	}
}

func TestRespondImageFailureDegradesToTextOnly(t *testing.T) {
	mock := modelapi.NewMockClient()
	mock.ChatFn = func(_ context.Context, req modelapi.ChatRequest) (modelapi.ChatResponse, error) {
		if _, multi := req.Messages[len(req.Messages)-1].Content.([]modelapi.ContentPart); multi {
			return modelapi.ChatResponse{}, errors.New("vision down")
		}
		return chatReply("사진 곧 보여줄게!"), nil
	}
	mock.ImageFn = func(context.Context, modelapi.ImageRequest) (modelapi.ImageResponse, error) {
		return modelapi.ImageResponse{}, errors.New("image down")
	}

	req := motherRequest("사진 보여줘")
	req.Persona.Photo = ""
	req.Persona.PastPhoto = ""
	req.Persona.CurrentPhoto = "data:image/jpeg;base64,ref"

	res, err := testPipeline(mock).Respond(context.Background(), req)
	if err != nil {
		t.Fatalf("image failures must not fail the turn: %v", err)
	}
	if res.Reply.ImageURL != "" {
		t.Fatalf("imageURL = %q, want empty after failure", res.Reply.ImageURL)
	}
	if res.PhotoOutcome != imagegen.OutcomeFailed {
		t.Fatalf("PhotoOutcome = %s, want failed", res.PhotoOutcome)
	}
	if res.Reply.Message != "사진 곧 보여줄게!" {
		t.Fatalf("message = %q", res.Reply.Message)
	}
}

func TestRespondEmptyCompletionGetsPlaceholder(t *testing.T) {
	mock := modelapi.NewMockClient()
	mock.ChatFn = func(context.Context, modelapi.ChatRequest) (modelapi.ChatResponse, error) {
		return chatReply("   "), nil
	}

	res, err := testPipeline(mock).Respond(context.Background(), motherRequest("안녕"))
	if err != nil {
		t.Fatalf("Respond error = %v", err)
	}
	if res.Reply.Message != emptyReplyPlaceholder {
		t.Fatalf("message = %q, want placeholder", res.Reply.Message)
	}
}

func TestRespondUsagePassthrough(t *testing.T) {
	mock := modelapi.NewMockClient()
	mock.ChatFn = func(context.Context, modelapi.ChatRequest) (modelapi.ChatResponse, error) {
		return chatReply("응!"), nil
	}

	res, err := testPipeline(mock).Respond(context.Background(), motherRequest("안녕"))
	if err != nil {
		t.Fatalf("Respond error = %v", err)
	}
	if res.Usage == nil || res.Usage.TotalTokens != 25 {
		t.Fatalf("Usage = %+v, want total 25", res.Usage)
	}
}
