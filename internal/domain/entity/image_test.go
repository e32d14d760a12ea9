package entity

import "testing"

func TestLikeUnlikeKeepsCountInvariant(t *testing.T) {
	image := NewImage("a cat in space", "https://example.com/a/b.png", "key", "user-1", nil)

	if !image.Like("user-2") {
		t.Fatal("first like should apply")
	}
	if image.Like("user-2") {
		t.Error("duplicate like must be rejected")
	}
	image.Like("user-3")

	if image.Likes != len(image.LikedBy) || image.Likes != 2 {
		t.Errorf("Likes = %d, LikedBy = %v", image.Likes, image.LikedBy)
	}

	if !image.Unlike("user-2") {
		t.Fatal("unlike of existing like should apply")
	}
	if image.Unlike("user-2") {
		t.Error("unlike of absent like must be rejected")
	}
	if image.Likes != len(image.LikedBy) || image.Likes != 1 {
		t.Errorf("Likes = %d, LikedBy = %v", image.Likes, image.LikedBy)
	}
}

func TestDeriveStorageKey(t *testing.T) {
	tests := []struct {
		name       string
		storageKey string
		imageURL   string
		want       string
	}{
		{
			name:       "persisted key wins",
			storageKey: "ai-image-gallery/stored",
			imageURL:   "https://res.cloudinary.com/demo/image/upload/v1/ai-image-gallery/other.png",
			want:       "ai-image-gallery/stored",
		},
		{
			name:     "derived from url",
			imageURL: "https://res.cloudinary.com/demo/image/upload/v1/ai-image-gallery/abc.png",
			want:     "ai-image-gallery/abc",
		},
		{
			name:     "url without extension",
			imageURL: "https://res.cloudinary.com/demo/image/upload/v1/ai-image-gallery/abc",
			want:     "ai-image-gallery/abc",
		},
		{
			name:     "url too short",
			imageURL: "abc",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			image := &Image{StorageKey: tt.storageKey, ImageURL: tt.imageURL}
			if got := image.DeriveStorageKey(); got != tt.want {
				t.Errorf("DeriveStorageKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
