package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dearxhq/dearx/internal/imagegen"
	"github.com/dearxhq/dearx/internal/modelapi"
	"github.com/dearxhq/dearx/internal/observability"
	"github.com/dearxhq/dearx/internal/persona"
)

// emptyReplyPlaceholder stands in when the completion model returns no
// content at all.
const emptyReplyPlaceholder = "…"

// Config controls the completion call the pipeline makes.
type Config struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Request is one conversation turn to answer.
type Request struct {
	Persona  persona.Persona
	Turns    []persona.Turn
	UserName string
	Language string
}

// Result is the assembled turn outcome.
type Result struct {
	Reply        persona.Reply
	Usage        *modelapi.Usage
	WantsPhoto   bool
	PhotoOutcome imagegen.Outcome
}

// Pipeline runs the conversation turn: classify photo intent, build the
// persona prompt, resolve the photo, call the completion model, and
// assemble the reply. It holds no per-request state.
type Pipeline struct {
	models   modelapi.Client
	resolver *imagegen.Resolver
	metrics  *observability.Metrics
	window   *observability.StageWindow
	cfg      Config
}

func NewPipeline(models modelapi.Client, resolver *imagegen.Resolver, metrics *observability.Metrics, window *observability.StageWindow, cfg Config) *Pipeline {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Pipeline{
		models:   models,
		resolver: resolver,
		metrics:  metrics,
		window:   window,
		cfg:      cfg,
	}
}

type imageResult struct {
	url     string
	outcome imagegen.Outcome
}

// Respond answers one turn. A vision or image failure degrades to a
// text-only reply; a completion failure fails the whole turn with no
// fallback text.
func (p *Pipeline) Respond(ctx context.Context, req Request) (Result, error) {
	turnStart := time.Now()

	utterance := persona.LastUserUtterance(req.Turns)
	wantsPhoto := persona.WantsPhoto(utterance)
	// Stored photos are only reused for personas of other people; self
	// conversations always synthesize (imagegen decision table).
	hasStoredPhoto := !req.Persona.IsSelf() && req.Persona.UploadedPhoto() != ""

	systemPrompt := persona.BuildSystemPrompt(req.Persona, persona.PromptOptions{
		UserName:       req.UserName,
		Language:       req.Language,
		WantsPhoto:     wantsPhoto,
		HasStoredPhoto: hasStoredPhoto,
	})

	// The image sequence and the completion call populate disjoint
	// fields, so they run concurrently and join before assembly.
	imageCh := make(chan imageResult, 1)
	go func() {
		url, outcome := p.resolver.Resolve(ctx, req.Persona, wantsPhoto)
		imageCh <- imageResult{url: url, outcome: outcome}
	}()

	messages := make([]modelapi.ChatMessage, 0, len(req.Turns)+1)
	messages = append(messages, modelapi.TextMessage(modelapi.RoleSystem, systemPrompt))
	for _, turn := range req.Turns {
		messages = append(messages, modelapi.TextMessage(turn.Role, turn.Content))
	}

	callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	callStart := time.Now()
	res, err := p.models.ChatCompletion(callCtx, modelapi.ChatRequest{
		Model:     p.cfg.Model,
		MaxTokens: p.cfg.MaxTokens,
		Messages:  messages,
	})
	p.observe(observability.StageCompletion, time.Since(callStart), err)
	if err != nil {
		p.countTurn("model_failure")
		return Result{}, fmt.Errorf("completion call: %w", err)
	}

	image := <-imageCh
	if wantsPhoto && p.metrics != nil {
		p.metrics.PhotoRequests.WithLabelValues(string(image.outcome)).Inc()
	}

	message := strings.TrimSpace(res.Text())
	if message == "" {
		message = emptyReplyPlaceholder
	}

	p.countTurn("ok")
	if p.window != nil {
		p.window.Observe(observability.StageTurnTotal, time.Since(turnStart))
	}

	return Result{
		Reply: persona.Reply{
			Message:  message,
			ImageURL: image.url,
		},
		Usage:        res.Usage,
		WantsPhoto:   wantsPhoto,
		PhotoOutcome: image.outcome,
	}, nil
}

func (p *Pipeline) observe(stage string, d time.Duration, err error) {
	if p.metrics != nil {
		p.metrics.ObserveModelCall(stage, d, err)
	}
	if p.window != nil {
		p.window.Observe(stage, d)
	}
}

func (p *Pipeline) countTurn(outcome string) {
	if p.metrics != nil {
		p.metrics.ChatTurns.WithLabelValues(outcome).Inc()
	}
}
