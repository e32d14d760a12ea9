package gallery

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/lib/pq"

	"ai-gallery-api/internal/domain/entity"
	"ai-gallery-api/internal/domain/repository"
	apperrors "ai-gallery-api/pkg/errors"
)

type memImageRepo struct {
	images map[string]*entity.Image
	listed int
}

func (r *memImageRepo) Create(_ context.Context, image *entity.Image) error {
	image.ID = "img-new"
	r.images[image.ID] = image
	return nil
}

func (r *memImageRepo) GetByID(_ context.Context, id string) (*entity.Image, error) {
	image, ok := r.images[id]
	if !ok {
		return nil, nil
	}
	copied := *image
	return &copied, nil
}

func (r *memImageRepo) ListPublic(_ context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Image], error) {
	r.listed++
	items := make([]*entity.Image, 0, len(r.images))
	for _, image := range r.images {
		if image.IsPublic {
			items = append(items, image)
		}
	}
	return repository.NewPagedResult(items, int64(len(items)), pagination), nil
}

func (r *memImageRepo) Search(_ context.Context, _ string, _ int) ([]*entity.Image, error) {
	return nil, nil
}

func (r *memImageRepo) IncrementViews(_ context.Context, id string) error {
	if image, ok := r.images[id]; ok {
		image.Views++
	}
	return nil
}

func (r *memImageRepo) Update(_ context.Context, image *entity.Image) error {
	r.images[image.ID] = image
	return nil
}

func (r *memImageRepo) Delete(_ context.Context, id string) error {
	delete(r.images, id)
	return nil
}

type memUserRepo struct {
	repository.UserRepository
	users        map[string]*entity.User
	liked        map[string][]string
	removedIndex []string
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (r *memUserRepo) AppendLikedImage(_ context.Context, userID, imageID string) error {
	r.liked[userID] = append(r.liked[userID], imageID)
	return nil
}

func (r *memUserRepo) RemoveLikedImage(_ context.Context, userID, imageID string) error {
	kept := r.liked[userID][:0]
	for _, id := range r.liked[userID] {
		if id != imageID {
			kept = append(kept, id)
		}
	}
	r.liked[userID] = kept
	return nil
}

func (r *memUserRepo) RemoveCreatedImage(_ context.Context, userID, imageID string) error {
	r.removedIndex = append(r.removedIndex, userID+":"+imageID)
	return nil
}

type memCommentRepo struct {
	comments map[string]*entity.Comment
}

func (r *memCommentRepo) Create(_ context.Context, comment *entity.Comment) error {
	comment.ID = "comment-new"
	r.comments[comment.ID] = comment
	return nil
}

func (r *memCommentRepo) GetByID(_ context.Context, id string) (*entity.Comment, error) {
	comment, ok := r.comments[id]
	if !ok {
		return nil, nil
	}
	return comment, nil
}

func (r *memCommentRepo) ListByImage(_ context.Context, imageID string) ([]*entity.Comment, error) {
	var out []*entity.Comment
	for _, comment := range r.comments {
		if comment.ImageID == imageID {
			out = append(out, comment)
		}
	}
	return out, nil
}

func (r *memCommentRepo) Delete(_ context.Context, id string) error {
	delete(r.comments, id)
	return nil
}

func (r *memCommentRepo) DeleteByImage(_ context.Context, imageID string) error {
	for id, comment := range r.comments {
		if comment.ImageID == imageID {
			delete(r.comments, id)
		}
	}
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// loaderCache 总是穿透到 loader，并记录失效次数
type loaderCache struct {
	invalidations int
}

func (c *loaderCache) GetOrLoadSafe(_ context.Context, _ string, _ time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	val, err := loader()
	if err != nil {
		return nil, err
	}
	return json.Marshal(val)
}

func (c *loaderCache) InvalidateGalleryFeed(_ context.Context) error {
	c.invalidations++
	return nil
}

type recordingDestroyer struct {
	destroyed []string
	failWith  error
}

func (d *recordingDestroyer) Destroy(_ context.Context, publicID string) error {
	if d.failWith != nil {
		return d.failWith
	}
	d.destroyed = append(d.destroyed, publicID)
	return nil
}

type galleryFixture struct {
	images    *memImageRepo
	users     *memUserRepo
	comments  *memCommentRepo
	cache     *loaderCache
	destroyer *recordingDestroyer
	svc       *Service
}

func newGalleryFixture() *galleryFixture {
	f := &galleryFixture{
		images: &memImageRepo{images: map[string]*entity.Image{
			"img-1": {
				ID:         "img-1",
				Prompt:     "a cat in space",
				ImageURL:   "https://res.cloudinary.com/demo/image/upload/v1/ai-image-gallery/abc.png",
				StorageKey: "ai-image-gallery/abc",
				CreatorID:  "user-1",
				Tags:       pq.StringArray{"cat", "space"},
				LikedBy:    pq.StringArray{},
				IsPublic:   true,
			},
		}},
		users: &memUserRepo{
			users: map[string]*entity.User{
				"user-1": {ID: "user-1", Username: "alice"},
				"user-2": {ID: "user-2", Username: "bob"},
			},
			liked: map[string][]string{},
		},
		comments:  &memCommentRepo{comments: map[string]*entity.Comment{}},
		cache:     &loaderCache{},
		destroyer: &recordingDestroyer{},
	}
	f.svc = NewService(f.images, f.users, f.comments, passthroughTx{}, f.cache, f.destroyer)
	return f
}

func TestListImages(t *testing.T) {
	f := newGalleryFixture()

	result, err := f.svc.ListImages(context.Background(), 1, 12)
	if err != nil {
		t.Fatalf("ListImages returned error: %v", err)
	}
	if result.Total != 1 || len(result.Items) != 1 {
		t.Fatalf("Total = %d, Items = %d", result.Total, len(result.Items))
	}
	if result.Items[0].CreatorName != "alice" {
		t.Errorf("CreatorName = %q, want alice", result.Items[0].CreatorName)
	}
}

func TestGetImageIncrementsViews(t *testing.T) {
	f := newGalleryFixture()

	image, err := f.svc.GetImage(context.Background(), "img-1")
	if err != nil {
		t.Fatalf("GetImage returned error: %v", err)
	}
	if image.Views != 1 {
		t.Errorf("Views = %d, want 1", image.Views)
	}
	if image.CreatorName != "alice" {
		t.Errorf("CreatorName = %q, want alice", image.CreatorName)
	}
}

func TestGetImageNotFound(t *testing.T) {
	f := newGalleryFixture()

	_, err := f.svc.GetImage(context.Background(), "missing")
	if err != apperrors.ErrImageNotFound {
		t.Fatalf("err = %v, want ErrImageNotFound", err)
	}
}

func TestToggleLike(t *testing.T) {
	f := newGalleryFixture()

	image, err := f.svc.ToggleLike(context.Background(), "user-2", "img-1")
	if err != nil {
		t.Fatalf("ToggleLike returned error: %v", err)
	}
	if image.Likes != 1 || !image.IsLikedBy("user-2") {
		t.Errorf("like not applied: likes=%d likedBy=%v", image.Likes, image.LikedBy)
	}
	if got := f.users.liked["user-2"]; len(got) != 1 || got[0] != "img-1" {
		t.Errorf("user liked index = %v", got)
	}

	// 再次切换应取消点赞
	image, err = f.svc.ToggleLike(context.Background(), "user-2", "img-1")
	if err != nil {
		t.Fatalf("ToggleLike returned error: %v", err)
	}
	if image.Likes != 0 || image.IsLikedBy("user-2") {
		t.Errorf("unlike not applied: likes=%d likedBy=%v", image.Likes, image.LikedBy)
	}
	if got := f.users.liked["user-2"]; len(got) != 0 {
		t.Errorf("user liked index = %v, want empty", got)
	}

	// 点赞与取消各使列表缓存失效一次
	if f.cache.invalidations != 2 {
		t.Errorf("feed invalidations = %d, want 2", f.cache.invalidations)
	}
}

func TestDeleteImage(t *testing.T) {
	f := newGalleryFixture()
	f.comments.comments["c1"] = &entity.Comment{ID: "c1", ImageID: "img-1", AuthorID: "user-2", Text: "nice"}

	if err := f.svc.DeleteImage(context.Background(), "user-1", "img-1"); err != nil {
		t.Fatalf("DeleteImage returned error: %v", err)
	}

	if len(f.destroyer.destroyed) != 1 || f.destroyer.destroyed[0] != "ai-image-gallery/abc" {
		t.Errorf("destroyed = %v, want persisted storage key", f.destroyer.destroyed)
	}
	if _, ok := f.images.images["img-1"]; ok {
		t.Error("image record should be deleted")
	}
	if len(f.comments.comments) != 0 {
		t.Error("comments should be deleted with the image")
	}
	if len(f.users.removedIndex) != 1 || f.users.removedIndex[0] != "user-1:img-1" {
		t.Errorf("removedIndex = %v", f.users.removedIndex)
	}
	if f.cache.invalidations != 1 {
		t.Errorf("feed invalidations = %d, want 1", f.cache.invalidations)
	}
}

func TestDeleteImageDerivesLegacyStorageKey(t *testing.T) {
	f := newGalleryFixture()
	f.images.images["img-1"].StorageKey = ""

	if err := f.svc.DeleteImage(context.Background(), "user-1", "img-1"); err != nil {
		t.Fatalf("DeleteImage returned error: %v", err)
	}
	// 旧记录退回 URL 最后两段去扩展名
	if len(f.destroyer.destroyed) != 1 || f.destroyer.destroyed[0] != "ai-image-gallery/abc" {
		t.Errorf("destroyed = %v, want key derived from URL", f.destroyer.destroyed)
	}
}

func TestDeleteImageForbiddenForNonCreator(t *testing.T) {
	f := newGalleryFixture()

	err := f.svc.DeleteImage(context.Background(), "user-2", "img-1")
	var appErr *apperrors.AppError
	if !asAppError(err, &appErr) || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if _, ok := f.images.images["img-1"]; !ok {
		t.Error("image must survive a forbidden delete")
	}
	if len(f.destroyer.destroyed) != 0 {
		t.Error("artifact must survive a forbidden delete")
	}
}

func TestDeleteImageToleratesDestroyFailure(t *testing.T) {
	f := newGalleryFixture()
	f.destroyer.failWith = apperrors.ErrServiceUnavailable

	if err := f.svc.DeleteImage(context.Background(), "user-1", "img-1"); err != nil {
		t.Fatalf("DeleteImage should tolerate destroy failure, got: %v", err)
	}
	if _, ok := f.images.images["img-1"]; ok {
		t.Error("catalog record should be deleted even when artifact destroy fails")
	}
}

func TestAddComment(t *testing.T) {
	f := newGalleryFixture()

	comment, err := f.svc.AddComment(context.Background(), "user-2", "img-1", "  great shot  ")
	if err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	if comment.Text != "great shot" {
		t.Errorf("Text = %q, want trimmed", comment.Text)
	}
	if comment.AuthorName != "bob" {
		t.Errorf("AuthorName = %q, want bob", comment.AuthorName)
	}
}

func TestAddCommentValidation(t *testing.T) {
	f := newGalleryFixture()

	if _, err := f.svc.AddComment(context.Background(), "user-2", "img-1", "   "); err == nil {
		t.Error("blank comment should be rejected")
	}
	if _, err := f.svc.AddComment(context.Background(), "user-2", "missing", "hello"); err != apperrors.ErrImageNotFound {
		t.Errorf("err = %v, want ErrImageNotFound", err)
	}
}

func TestDeleteCommentPermissions(t *testing.T) {
	f := newGalleryFixture()
	f.comments.comments["c1"] = &entity.Comment{ID: "c1", ImageID: "img-1", AuthorID: "user-2", Text: "nice"}

	// 路人既不是作者也不是图像创建者
	f.users.users["user-3"] = &entity.User{ID: "user-3", Username: "carol"}
	err := f.svc.DeleteComment(context.Background(), "user-3", "c1")
	var appErr *apperrors.AppError
	if !asAppError(err, &appErr) || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("err = %v, want forbidden", err)
	}

	// 图像创建者可删除他人评论
	if err := f.svc.DeleteComment(context.Background(), "user-1", "c1"); err != nil {
		t.Fatalf("image creator should be allowed to delete: %v", err)
	}
	if len(f.comments.comments) != 0 {
		t.Error("comment should be deleted")
	}
}

func asAppError(err error, target **apperrors.AppError) bool {
	appErr, ok := err.(*apperrors.AppError)
	if ok {
		*target = appErr
	}
	return ok
}
