package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dearxhq/dearx/internal/chat"
	"github.com/dearxhq/dearx/internal/config"
	"github.com/dearxhq/dearx/internal/history"
	"github.com/dearxhq/dearx/internal/httpapi"
	"github.com/dearxhq/dearx/internal/imagegen"
	"github.com/dearxhq/dearx/internal/modelapi"
	"github.com/dearxhq/dearx/internal/observability"
	"github.com/dearxhq/dearx/internal/ratelimit"
)

type BuildResult struct {
	Config   config.Config
	API      *httpapi.Server
	Pipeline *chat.Pipeline
	Metrics  *observability.Metrics
	Window   *observability.StageWindow

	// Cleanup should be called on shutdown to release external resources
	// (DB pool, redis client).
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	window := observability.NewStageWindow(256)

	store, err := history.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("history store init failed: %w", err)
	}

	models, err := modelapi.New(modelapi.Config{
		Provider: cfg.ModelProvider,
		BaseURL:  cfg.OpenAIBaseURL,
		APIKey:   cfg.OpenAIAPIKey,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("model client init failed: %w", err)
	}

	resolver := imagegen.NewResolver(models, imagegen.Config{
		VisionModel:     cfg.VisionModel,
		VisionMaxTokens: cfg.VisionMaxTokens,
		VisionTimeout:   cfg.VisionTimeout,
		ImageModel:      cfg.ImageModel,
		ImageSize:       cfg.ImageSize,
		ImageQuality:    cfg.ImageQuality,
		ImageTimeout:    cfg.ImageTimeout,
		Observe: func(stage string, d time.Duration, err error) {
			metrics.ObserveModelCall(stage, d, err)
			window.Observe(stage, d)
		},
	})

	pipeline := chat.NewPipeline(models, resolver, metrics, window, chat.Config{
		Model:     cfg.CompletionModel,
		MaxTokens: cfg.CompletionMaxTokens,
		Timeout:   cfg.CompletionTimeout,
	})

	limiter := ratelimit.New(cfg.RedisAddr, store, cfg.FreeDailyMessages)

	api := httpapi.New(cfg, pipeline, store, limiter, metrics, window)

	cleanup := func() error {
		var errs []string
		if err := limiter.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if err := store.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	return &BuildResult{
		Config:   cfg,
		API:      api,
		Pipeline: pipeline,
		Metrics:  metrics,
		Window:   window,
		Cleanup:  cleanup,
	}, nil
}
