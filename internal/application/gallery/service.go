// Package gallery 实现画廊浏览与社交互动
package gallery

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"ai-gallery-api/internal/domain/entity"
	"ai-gallery-api/internal/domain/repository"
	"ai-gallery-api/internal/infrastructure/persistence/redis"
	"ai-gallery-api/pkg/errors"
	"ai-gallery-api/pkg/logger"
	"ai-gallery-api/pkg/metrics"
)

var tracer = otel.Tracer("gallery-service")

// feedCacheTTL 首页列表缓存时长，写入侧主动失效
const feedCacheTTL = 60 * time.Second

// defaultSearchLimit 检索默认返回条数
const defaultSearchLimit = 20

// FeedCache 列表缓存依赖
type FeedCache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
	InvalidateGalleryFeed(ctx context.Context) error
}

// ArtifactDestroyer 对象存储删除依赖
type ArtifactDestroyer interface {
	Destroy(ctx context.Context, publicID string) error
}

// Service 画廊应用服务
type Service struct {
	imageRepo   repository.ImageRepository
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	tx          repository.Transactor
	cache       FeedCache
	store       ArtifactDestroyer
}

// NewService 创建画廊应用服务
func NewService(
	imageRepo repository.ImageRepository,
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	tx repository.Transactor,
	cache FeedCache,
	store ArtifactDestroyer,
) *Service {
	return &Service{
		imageRepo:   imageRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		tx:          tx,
		cache:       cache,
		store:       store,
	}
}

// ListImages 按创建时间倒序分页获取公开图像，结果经缓存
func (s *Service) ListImages(ctx context.Context, page, pageSize int) (*repository.PagedResult[*entity.Image], error) {
	ctx, span := tracer.Start(ctx, "GalleryService.ListImages")
	defer span.End()

	pagination := repository.NewPagination(page, pageSize)
	key := redis.GalleryFeedKey(pagination.Page, pagination.PageSize)

	raw, err := s.cache.GetOrLoadSafe(ctx, key, feedCacheTTL, func() (interface{}, error) {
		metrics.GalleryCacheHits.WithLabelValues("miss").Inc()
		result, err := s.imageRepo.ListPublic(ctx, pagination)
		if err != nil {
			return nil, err
		}
		s.populateCreatorNames(ctx, result.Items)
		return result, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, errors.NewDatabaseError(err)
	}

	var result repository.PagedResult[*entity.Image]
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternalError, "internal server error")
	}
	metrics.GalleryCacheHits.WithLabelValues("hit").Inc()
	return &result, nil
}

// GetImage 获取单张图像并累加浏览计数
func (s *Service) GetImage(ctx context.Context, id string) (*entity.Image, error) {
	ctx, span := tracer.Start(ctx, "GalleryService.GetImage")
	defer span.End()

	image, err := s.imageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	if image == nil {
		return nil, errors.ErrImageNotFound
	}

	// 浏览计数尽力而为，失败不影响读取
	if err := s.imageRepo.IncrementViews(ctx, id); err != nil {
		logger.FromContext(ctx).Warn("failed to increment views", "image_id", id, "error", err.Error())
	} else {
		image.Views++
	}

	s.populateCreatorNames(ctx, []*entity.Image{image})
	return image, nil
}

// Search 按关键词检索公开图像的提示词与标签
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*entity.Image, error) {
	ctx, span := tracer.Start(ctx, "GalleryService.Search")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New(errors.CodeInvalidParam, "invalid parameter").WithDetail("search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	images, err := s.imageRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	s.populateCreatorNames(ctx, images)
	return images, nil
}

// ToggleLike 切换用户对图像的点赞状态
// 图像的点赞集合与用户的点赞索引在同一事务内更新
func (s *Service) ToggleLike(ctx context.Context, userID, imageID string) (*entity.Image, error) {
	ctx, span := tracer.Start(ctx, "GalleryService.ToggleLike")
	defer span.End()

	var image *entity.Image
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		image, err = s.imageRepo.GetByID(ctx, imageID)
		if err != nil {
			return errors.NewDatabaseError(err)
		}
		if image == nil {
			return errors.ErrImageNotFound
		}

		if image.IsLikedBy(userID) {
			image.Unlike(userID)
			if err := s.userRepo.RemoveLikedImage(ctx, userID, imageID); err != nil {
				return errors.NewDatabaseError(err)
			}
		} else {
			image.Like(userID)
			if err := s.userRepo.AppendLikedImage(ctx, userID, imageID); err != nil {
				return errors.NewDatabaseError(err)
			}
		}

		if err := s.imageRepo.Update(ctx, image); err != nil {
			return errors.NewDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 缓存的列表页带点赞数，变更后立即失效
	if err := s.cache.InvalidateGalleryFeed(ctx); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate gallery feed cache", "error", err.Error())
	}

	s.populateCreatorNames(ctx, []*entity.Image{image})
	return image, nil
}

// DeleteImage 删除图像及其评论、对象存储副本与用户索引
// 仅创建者可删除
func (s *Service) DeleteImage(ctx context.Context, userID, imageID string) error {
	ctx, span := tracer.Start(ctx, "GalleryService.DeleteImage")
	defer span.End()

	log := logger.FromContext(ctx)

	image, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return errors.NewDatabaseError(err)
	}
	if image == nil {
		return errors.ErrImageNotFound
	}
	if image.CreatorID != userID {
		return errors.New(errors.CodeForbidden, "forbidden").WithDetail("only the creator can delete this image")
	}

	// 优先使用落库的存储标识，旧记录从 URL 推导
	storageKey := image.StorageKey
	if storageKey == "" {
		storageKey = image.DeriveStorageKey()
	}
	if storageKey != "" {
		if err := s.store.Destroy(ctx, storageKey); err != nil {
			// 对象存储删除失败不阻塞目录删除，留下孤儿对象可接受
			log.Warn("failed to destroy stored artifact",
				"image_id", imageID,
				"storage_key", storageKey,
				"error", err.Error(),
			)
		}
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.commentRepo.DeleteByImage(ctx, imageID); err != nil {
			return errors.NewDatabaseError(err)
		}
		if err := s.imageRepo.Delete(ctx, imageID); err != nil {
			return errors.NewDatabaseError(err)
		}
		if err := s.userRepo.RemoveCreatedImage(ctx, image.CreatorID, imageID); err != nil {
			return errors.NewDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := s.cache.InvalidateGalleryFeed(ctx); err != nil {
		log.Warn("failed to invalidate gallery feed cache", "error", err.Error())
	}

	log.Info("image deleted", "image_id", imageID, "user_id", userID)
	return nil
}

// AddComment 为图像添加评论
func (s *Service) AddComment(ctx context.Context, userID, imageID, text string) (*entity.Comment, error) {
	ctx, span := tracer.Start(ctx, "GalleryService.AddComment")
	defer span.End()

	text = strings.TrimSpace(text)
	if len(text) < entity.CommentMinLen {
		return nil, errors.New(errors.CodeInvalidParam, "invalid parameter").WithDetail("comment text is required")
	}
	if len(text) > entity.CommentMaxLen {
		return nil, errors.New(errors.CodeInvalidParam, "invalid parameter").WithDetail("comment text must be at most 500 characters")
	}

	image, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	if image == nil {
		return nil, errors.ErrImageNotFound
	}

	comment := entity.NewComment(imageID, userID, text)
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, errors.NewDatabaseError(err)
	}

	s.populateAuthorNames(ctx, []*entity.Comment{comment})
	return comment, nil
}

// ListComments 获取图像评论
func (s *Service) ListComments(ctx context.Context, imageID string) ([]*entity.Comment, error) {
	ctx, span := tracer.Start(ctx, "GalleryService.ListComments")
	defer span.End()

	image, err := s.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	if image == nil {
		return nil, errors.ErrImageNotFound
	}

	comments, err := s.commentRepo.ListByImage(ctx, imageID)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	s.populateAuthorNames(ctx, comments)
	return comments, nil
}

// DeleteComment 删除评论，评论作者或图像创建者可删除
func (s *Service) DeleteComment(ctx context.Context, userID, commentID string) error {
	ctx, span := tracer.Start(ctx, "GalleryService.DeleteComment")
	defer span.End()

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return errors.NewDatabaseError(err)
	}
	if comment == nil {
		return errors.ErrCommentNotFound
	}

	if comment.AuthorID != userID {
		image, err := s.imageRepo.GetByID(ctx, comment.ImageID)
		if err != nil {
			return errors.NewDatabaseError(err)
		}
		if image == nil || image.CreatorID != userID {
			return errors.New(errors.CodeForbidden, "forbidden").WithDetail("only the author or the image creator can delete this comment")
		}
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return errors.NewDatabaseError(err)
	}
	return nil
}

// populateCreatorNames 填充展示用的创建者名称，查询失败静默跳过
func (s *Service) populateCreatorNames(ctx context.Context, images []*entity.Image) {
	names := map[string]string{}
	for _, image := range images {
		if image == nil {
			continue
		}
		name, ok := names[image.CreatorID]
		if !ok {
			user, err := s.userRepo.GetByID(ctx, image.CreatorID)
			if err != nil || user == nil {
				continue
			}
			name = user.Username
			names[image.CreatorID] = name
		}
		image.CreatorName = name
	}
}

// populateAuthorNames 填充展示用的评论作者名称
func (s *Service) populateAuthorNames(ctx context.Context, comments []*entity.Comment) {
	names := map[string]string{}
	for _, comment := range comments {
		if comment == nil {
			continue
		}
		name, ok := names[comment.AuthorID]
		if !ok {
			user, err := s.userRepo.GetByID(ctx, comment.AuthorID)
			if err != nil || user == nil {
				continue
			}
			name = user.Username
			names[comment.AuthorID] = name
		}
		comment.AuthorName = name
	}
}
