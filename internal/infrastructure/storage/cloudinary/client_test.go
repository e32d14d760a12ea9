package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-gallery-api/internal/config"
)

func newTestClient(baseURL string) *Client {
	return &Client{
		cfg: &config.CloudinaryConfig{
			CloudName:     "demo",
			APIKey:        "key123",
			APISecret:     "secret456",
			Folder:        "ai-image-gallery",
			UploadTimeout: 5 * time.Second,
		},
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		now:        func() time.Time { return time.Unix(1700000000, 0) },
	}
}

func TestUpload(t *testing.T) {
	var gotPath string
	var gotFields map[string]string
	var gotFileBytes int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotFields[k] = v[0]
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file part: %v", err)
		}
		defer file.Close()
		gotFileBytes = int(header.Size)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/image/upload/v1/ai-image-gallery/abc.png","public_id":"ai-image-gallery/abc"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ref, err := client.Upload(context.Background(), []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if gotPath != "/demo/image/upload" {
		t.Errorf("path = %q, want /demo/image/upload", gotPath)
	}
	if gotFields["folder"] != "ai-image-gallery" {
		t.Errorf("folder = %q, want ai-image-gallery", gotFields["folder"])
	}
	if gotFields["api_key"] != "key123" {
		t.Errorf("api_key = %q, want key123", gotFields["api_key"])
	}
	if gotFileBytes != len("png-bytes") {
		t.Errorf("file size = %d, want %d", gotFileBytes, len("png-bytes"))
	}

	wantSig := sha1Hex("folder=ai-image-gallery&timestamp=1700000000" + "secret456")
	if gotFields["signature"] != wantSig {
		t.Errorf("signature = %q, want %q", gotFields["signature"], wantSig)
	}

	if ref.PublicID != "ai-image-gallery/abc" {
		t.Errorf("PublicID = %q, want ai-image-gallery/abc", ref.PublicID)
	}
	if ref.SecureURL == "" {
		t.Error("SecureURL is empty")
	}
}

func TestUploadRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid Signature"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.Upload(context.Background(), []byte("png")); err == nil {
		t.Fatal("Upload should fail on rejected request")
	}
}

func TestUploadMissingReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.Upload(context.Background(), []byte("png")); err == nil {
		t.Fatal("Upload should fail when response lacks secure_url and public_id")
	}
}

func TestDestroy(t *testing.T) {
	var gotPath string
	var gotFields map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotFields[k] = v[0]
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"ok"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Destroy(context.Background(), "ai-image-gallery/abc"); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}

	if gotPath != "/demo/image/destroy" {
		t.Errorf("path = %q, want /demo/image/destroy", gotPath)
	}
	if gotFields["public_id"] != "ai-image-gallery/abc" {
		t.Errorf("public_id = %q, want ai-image-gallery/abc", gotFields["public_id"])
	}

	wantSig := sha1Hex("public_id=ai-image-gallery/abc&timestamp=1700000000" + "secret456")
	if gotFields["signature"] != wantSig {
		t.Errorf("signature = %q, want %q", gotFields["signature"], wantSig)
	}
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
