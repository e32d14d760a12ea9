//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"ai-gallery-api/internal/application/auth"
	"ai-gallery-api/internal/application/gallery"
	"ai-gallery-api/internal/application/generation"
	"ai-gallery-api/internal/config"
	"ai-gallery-api/internal/domain/repository"
	"ai-gallery-api/internal/infrastructure/inference"
	"ai-gallery-api/internal/infrastructure/persistence/postgres"
	"ai-gallery-api/internal/infrastructure/persistence/redis"
	"ai-gallery-api/internal/infrastructure/storage/cloudinary"
	"ai-gallery-api/internal/interfaces/http/handler"
	"ai-gallery-api/internal/interfaces/http/middleware"
	"ai-gallery-api/internal/interfaces/http/router"
)

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewUserRepository,
	postgres.NewImageRepository,
	postgres.NewCommentRepository,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(repository.ImageRepository), new(*postgres.ImageRepository)),
	wire.Bind(new(repository.CommentRepository), new(*postgres.CommentRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(generation.FeedCache), new(*redis.Cache)),
	wire.Bind(new(gallery.FeedCache), new(*redis.Cache)),
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// PipelineSet 生成管线提供者集合
var PipelineSet = wire.NewSet(
	inference.NewClient,
	cloudinary.NewClient,
	generation.NewService,
	wire.Bind(new(generation.Engine), new(*inference.Client)),
	wire.Bind(new(generation.ArtifactStore), new(*cloudinary.Client)),
	wire.Bind(new(gallery.ArtifactDestroyer), new(*cloudinary.Client)),
)

// ServiceSet 应用服务提供者集合
var ServiceSet = wire.NewSet(
	auth.NewService,
	gallery.NewService,
	wire.Bind(new(middleware.TokenVerifier), new(*auth.Service)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewAuthHandler,
	handler.NewImageHandler,
	handler.NewCommentHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		PipelineSet,
		ServiceSet,
		RouterSet,
	)
	return nil, nil, nil
}

