// Package generation 实现图像生成编排
package generation

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"ai-gallery-api/internal/config"
	"ai-gallery-api/internal/domain/entity"
	"ai-gallery-api/internal/domain/repository"
	"ai-gallery-api/internal/infrastructure/storage/cloudinary"
	"ai-gallery-api/pkg/errors"
	"ai-gallery-api/pkg/logger"
	"ai-gallery-api/pkg/metrics"
)

var tracer = otel.Tracer("generation-service")

// Engine 推理引擎依赖
type Engine interface {
	Caller
	Configured() bool
}

// ArtifactStore 对象存储依赖
type ArtifactStore interface {
	Upload(ctx context.Context, image []byte) (*cloudinary.StorageReference, error)
	Configured() bool
}

// FeedCache 画廊首页缓存失效依赖
type FeedCache interface {
	InvalidateGalleryFeed(ctx context.Context) error
}

// Service 生成编排服务
// 流程：校验提示词 -> 派生标签 -> 带重试的推理 -> 上传对象存储 -> 写目录与用户索引
type Service struct {
	engine    Engine
	store     ArtifactStore
	imageRepo repository.ImageRepository
	userRepo  repository.UserRepository
	feedCache FeedCache
	retry     *RetryController
	deadline  time.Duration
}

// NewService 创建生成编排服务
func NewService(
	cfg *config.Config,
	engine Engine,
	store ArtifactStore,
	imageRepo repository.ImageRepository,
	userRepo repository.UserRepository,
	feedCache FeedCache,
) *Service {
	return &Service{
		engine:    engine,
		store:     store,
		imageRepo: imageRepo,
		userRepo:  userRepo,
		feedCache: feedCache,
		retry: NewRetryController(
			engine,
			cfg.Inference.MaxAttempts,
			cfg.Inference.RetryBackoff,
			cfg.Inference.TransportBackoff,
		),
		deadline: cfg.Inference.OverallDeadline,
	}
}

// Generate 为指定用户生成一张图像并登记到目录
//
// 提示词校验失败时不发起任何外部调用；
// 上传失败时推理成本作废，不写入目录；
// 目录写入成功后用户索引追加失败仅记录告警，不回滚目录记录
func (s *Service) Generate(ctx context.Context, userID, prompt string) (*entity.Image, error) {
	ctx, span := tracer.Start(ctx, "GenerationService.Generate")
	defer span.End()

	log := logger.FromContext(ctx)
	start := time.Now()

	trimmed := strings.TrimSpace(prompt)
	if len(trimmed) < entity.PromptMinLen {
		metrics.GenerationTotal.WithLabelValues("invalid_prompt").Inc()
		return nil, errors.NewInvalidPrompt("prompt must be at least 3 characters")
	}
	if len(trimmed) > entity.PromptMaxLen {
		metrics.GenerationTotal.WithLabelValues("invalid_prompt").Inc()
		return nil, errors.NewInvalidPrompt("prompt must be at most 500 characters")
	}

	if !s.engine.Configured() {
		metrics.GenerationTotal.WithLabelValues("misconfigured").Inc()
		return nil, errors.NewServiceMisconfigured("inference credential is not configured")
	}
	if !s.store.Configured() {
		metrics.GenerationTotal.WithLabelValues("misconfigured").Inc()
		return nil, errors.NewServiceMisconfigured("storage credential is not configured")
	}

	if s.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	tags := DeriveTags(trimmed)

	result, err := s.retry.Run(ctx, trimmed)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("inference_failed").Inc()
		metrics.GenerationDuration.WithLabelValues("inference_failed").Observe(time.Since(start).Seconds())
		return nil, err
	}
	metrics.InferenceAttempts.WithLabelValues("success").Observe(float64(result.Attempts))

	ref, err := s.store.Upload(ctx, result.Image)
	if err != nil {
		log.Error("artifact upload failed, discarding generated image",
			"user_id", userID,
			"model", result.Model,
			"error", err.Error(),
		)
		metrics.GenerationTotal.WithLabelValues("upload_failed").Inc()
		metrics.GenerationDuration.WithLabelValues("upload_failed").Observe(time.Since(start).Seconds())
		return nil, errors.NewArtifactPersist(err)
	}

	image := entity.NewImage(trimmed, ref.SecureURL, ref.PublicID, userID, tags)
	if err := s.imageRepo.Create(ctx, image); err != nil {
		log.Error("catalog write failed after successful upload",
			"user_id", userID,
			"storage_key", ref.PublicID,
			"error", err.Error(),
		)
		metrics.GenerationTotal.WithLabelValues("catalog_failed").Inc()
		metrics.GenerationDuration.WithLabelValues("catalog_failed").Observe(time.Since(start).Seconds())
		return nil, errors.NewCatalogWrite(err)
	}

	if err := s.feedCache.InvalidateGalleryFeed(ctx); err != nil {
		log.Warn("failed to invalidate gallery feed cache", "error", err.Error())
	}

	// 目录记录保留不回滚，索引写入失败按目录写入错误上报
	if err := s.userRepo.AppendCreatedImage(ctx, userID, image.ID); err != nil {
		log.Error("failed to append image to user index",
			"user_id", userID,
			"image_id", image.ID,
			"error", err.Error(),
		)
		metrics.GenerationTotal.WithLabelValues("catalog_failed").Inc()
		metrics.GenerationDuration.WithLabelValues("catalog_failed").Observe(time.Since(start).Seconds())
		return nil, errors.NewCatalogWrite(err)
	}

	metrics.GenerationTotal.WithLabelValues("success").Inc()
	metrics.GenerationDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())

	log.Info("image generated",
		"user_id", userID,
		"image_id", image.ID,
		"model", result.Model,
		"attempts", result.Attempts,
		"fallback_used", result.FallbackUsed,
		"duration", time.Since(start).String(),
	)

	return image, nil
}
