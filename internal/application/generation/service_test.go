package generation

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"ai-gallery-api/internal/domain/entity"
	"ai-gallery-api/internal/domain/repository"
	"ai-gallery-api/internal/infrastructure/inference"
	"ai-gallery-api/internal/infrastructure/storage/cloudinary"
	apperrors "ai-gallery-api/pkg/errors"
)

type fakeStore struct {
	uploads    int
	configured bool
	failWith   error
	ref        *cloudinary.StorageReference
}

func (s *fakeStore) Upload(_ context.Context, _ []byte) (*cloudinary.StorageReference, error) {
	s.uploads++
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.ref, nil
}

func (s *fakeStore) Configured() bool { return s.configured }

type fakeImageRepo struct {
	repository.ImageRepository
	creates  int
	failWith error
}

func (r *fakeImageRepo) Create(_ context.Context, image *entity.Image) error {
	r.creates++
	if r.failWith != nil {
		return r.failWith
	}
	image.ID = "img-1"
	return nil
}

type fakeUserRepo struct {
	repository.UserRepository
	appended []string
	failWith error
}

func (r *fakeUserRepo) AppendCreatedImage(_ context.Context, _, imageID string) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.appended = append(r.appended, imageID)
	return nil
}

type fakeFeedCache struct {
	invalidations int
}

func (c *fakeFeedCache) InvalidateGalleryFeed(_ context.Context) error {
	c.invalidations++
	return nil
}

type fixture struct {
	engine *scriptedEngine
	store  *fakeStore
	images *fakeImageRepo
	users  *fakeUserRepo
	feed   *fakeFeedCache
	svc    *Service
}

func newFixture(outcomes ...inference.Outcome) *fixture {
	f := &fixture{
		engine: &scriptedEngine{outcomes: outcomes},
		store: &fakeStore{
			configured: true,
			ref: &cloudinary.StorageReference{
				SecureURL: "https://res.cloudinary.com/demo/ai-image-gallery/img.png",
				PublicID:  "ai-image-gallery/img",
			},
		},
		images: &fakeImageRepo{},
		users:  &fakeUserRepo{},
		feed:   &fakeFeedCache{},
	}

	ctrl := NewRetryController(f.engine, 3, 10*time.Second, 5*time.Second)
	ctrl.sleep = func(context.Context, time.Duration) error { return nil }

	f.svc = &Service{
		engine:    f.engine,
		store:     f.store,
		imageRepo: f.images,
		userRepo:  f.users,
		feedCache: f.feed,
		retry:     ctrl,
		deadline:  2 * time.Minute,
	}
	return f
}

func TestGenerateHappyPath(t *testing.T) {
	f := newFixture(success("png-bytes"))

	image, err := f.svc.Generate(context.Background(), "user-1", "a cat in space")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if image.Prompt != "a cat in space" {
		t.Errorf("Prompt = %q", image.Prompt)
	}
	if image.ImageURL != f.store.ref.SecureURL {
		t.Errorf("ImageURL = %q", image.ImageURL)
	}
	if image.StorageKey != "ai-image-gallery/img" {
		t.Errorf("StorageKey = %q", image.StorageKey)
	}
	if image.CreatorID != "user-1" {
		t.Errorf("CreatorID = %q", image.CreatorID)
	}
	if want := []string{"cat", "space"}; !reflect.DeepEqual([]string(image.Tags), want) {
		t.Errorf("Tags = %v, want %v", image.Tags, want)
	}
	if !image.IsPublic {
		t.Error("new image should be public")
	}
	if f.images.creates != 1 {
		t.Errorf("catalog creates = %d, want 1", f.images.creates)
	}
	if want := []string{"img-1"}; !reflect.DeepEqual(f.users.appended, want) {
		t.Errorf("user index appends = %v, want %v", f.users.appended, want)
	}
	if f.feed.invalidations != 1 {
		t.Errorf("feed invalidations = %d, want 1", f.feed.invalidations)
	}
}

func TestGenerateRejectsInvalidPrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
	}{
		{"too short", "ab"},
		{"whitespace only", "   "},
		{"too long", string(make([]byte, 501))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.svc.Generate(context.Background(), "user-1", tt.prompt)
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeInvalidPrompt {
				t.Fatalf("err = %v, want code %s", err, apperrors.CodeInvalidPrompt)
			}

			// 校验失败必须零外部调用
			if len(f.engine.calls) != 0 {
				t.Errorf("engine called %d times, want 0", len(f.engine.calls))
			}
			if f.store.uploads != 0 {
				t.Errorf("store uploads = %d, want 0", f.store.uploads)
			}
			if f.images.creates != 0 {
				t.Errorf("catalog creates = %d, want 0", f.images.creates)
			}
		})
	}
}

func TestGenerateTrimsPromptBeforeValidation(t *testing.T) {
	f := newFixture(success("png"))

	image, err := f.svc.Generate(context.Background(), "user-1", "  neon city at night  ")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if image.Prompt != "neon city at night" {
		t.Errorf("Prompt = %q, want trimmed", image.Prompt)
	}
}

func TestGenerateMisconfigured(t *testing.T) {
	f := newFixture()
	f.store.configured = false

	_, err := f.svc.Generate(context.Background(), "user-1", "a cat in space")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeServiceMisconfigured {
		t.Fatalf("err = %v, want code %s", err, apperrors.CodeServiceMisconfigured)
	}
	if len(f.engine.calls) != 0 {
		t.Errorf("engine called %d times, want 0", len(f.engine.calls))
	}
}

func TestGenerateLoadingThenSuccess(t *testing.T) {
	f := newFixture(
		loading(5*time.Second),
		loading(5*time.Second),
		success("png"),
	)

	_, err := f.svc.Generate(context.Background(), "user-1", "a cat in space")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(f.engine.calls) != 3 {
		t.Errorf("engine called %d times, want 3", len(f.engine.calls))
	}
	if f.store.uploads != 1 {
		t.Errorf("store uploads = %d, want 1", f.store.uploads)
	}
}

func TestGenerateExhaustedSkipsPersistence(t *testing.T) {
	f := newFixture(
		recoverable(false, false),
		recoverable(false, false),
		recoverable(false, false),
	)

	_, err := f.svc.Generate(context.Background(), "user-1", "a cat in space")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeInferenceExhausted {
		t.Fatalf("err = %v, want code %s", err, apperrors.CodeInferenceExhausted)
	}
	if appErr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", appErr.Attempts)
	}
	if f.store.uploads != 0 {
		t.Errorf("store uploads = %d, want 0", f.store.uploads)
	}
	if f.images.creates != 0 {
		t.Errorf("catalog creates = %d, want 0", f.images.creates)
	}
}

func TestGenerateUploadFailureSkipsCatalog(t *testing.T) {
	f := newFixture(success("png"))
	f.store.failWith = errors.New("storage down")

	_, err := f.svc.Generate(context.Background(), "user-1", "a cat in space")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeArtifactPersist {
		t.Fatalf("err = %v, want code %s", err, apperrors.CodeArtifactPersist)
	}
	if f.images.creates != 0 {
		t.Errorf("catalog creates = %d, want 0", f.images.creates)
	}
	if len(f.users.appended) != 0 {
		t.Errorf("user index appends = %v, want none", f.users.appended)
	}
}

func TestGenerateCatalogFailure(t *testing.T) {
	f := newFixture(success("png"))
	f.images.failWith = errors.New("db down")

	_, err := f.svc.Generate(context.Background(), "user-1", "a cat in space")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeCatalogWrite {
		t.Fatalf("err = %v, want code %s", err, apperrors.CodeCatalogWrite)
	}
	if len(f.users.appended) != 0 {
		t.Errorf("user index appends = %v, want none", f.users.appended)
	}
}

func TestGenerateIndexAppendFailureReportsCatalogWrite(t *testing.T) {
	f := newFixture(success("png"))
	f.users.failWith = errors.New("index busy")

	_, err := f.svc.Generate(context.Background(), "user-1", "a cat in space")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeCatalogWrite {
		t.Fatalf("err = %v, want code %s", err, apperrors.CodeCatalogWrite)
	}
	// 目录记录保留，不回滚
	if f.images.creates != 1 {
		t.Errorf("catalog creates = %d, want 1", f.images.creates)
	}
	if f.feed.invalidations != 1 {
		t.Errorf("feed invalidations = %d, want 1", f.feed.invalidations)
	}
}

func TestGenerateFallbackSuccess(t *testing.T) {
	f := newFixture(
		recoverable(true, false),
		success("png"),
	)

	_, err := f.svc.Generate(context.Background(), "user-1", "a cat in space")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	wantCalls := []string{"primary-model", "fallback-model"}
	if !reflect.DeepEqual(f.engine.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", f.engine.calls, wantCalls)
	}
}
