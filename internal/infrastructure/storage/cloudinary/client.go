// Package cloudinary 提供对象存储适配器
package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ai-gallery-api/internal/config"
	"ai-gallery-api/pkg/metrics"
)

var tracer = otel.Tracer("cloudinary")

const defaultBaseURL = "https://api.cloudinary.com/v1_1"

// StorageReference 上传成功后的稳定引用
// PublicID 是后续删除对象所需的唯一句柄，与公开 URL 一同持久化
type StorageReference struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

// uploadResponse 上传接口响应
type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client 对象存储客户端
// 上传为单次同步调用，不含重试：推理成本已经付出，是否重做由上层决定
type Client struct {
	cfg        *config.CloudinaryConfig
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient 创建对象存储客户端
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:     &cfg.Storage.Cloudinary,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Storage.Cloudinary.UploadTimeout,
		},
		now: time.Now,
	}
}

// Configured 检查凭证是否已配置
func (c *Client) Configured() bool {
	return c.cfg.CloudName != "" && c.cfg.APIKey != "" && c.cfg.APISecret != ""
}

// Folder 上传目标目录
func (c *Client) Folder() string {
	return c.cfg.Folder
}

// Upload 上传图像字节并返回稳定引用
func (c *Client) Upload(ctx context.Context, image []byte) (*StorageReference, error) {
	ctx, span := tracer.Start(ctx, "cloudinary.Upload",
		trace.WithAttributes(attribute.Int("storage.bytes", len(image))))
	defer span.End()

	params := map[string]string{
		"folder":    c.cfg.Folder,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range params {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if err := writer.WriteField("api_key", c.cfg.APIKey); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}
	if err := writer.WriteField("signature", c.sign(params)); err != nil {
		return nil, fmt.Errorf("failed to write form field: %w", err)
	}

	part, err := writer.CreateFormFile("file", "artifact.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image bytes: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	url := fmt.Sprintf("%s/%s/image/upload", c.baseURL, c.cfg.CloudName)
	resp, err := c.post(ctx, url, writer.FormDataContentType(), &buf)
	if err != nil {
		metrics.StorageUploadTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		return nil, err
	}

	if resp.SecureURL == "" || resp.PublicID == "" {
		err := fmt.Errorf("upload response missing reference: %s", resp.Error.Message)
		metrics.StorageUploadTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		return nil, err
	}

	metrics.StorageUploadTotal.WithLabelValues("success").Inc()
	metrics.StorageUploadBytes.Observe(float64(len(image)))

	return &StorageReference{
		SecureURL: resp.SecureURL,
		PublicID:  resp.PublicID,
	}, nil
}

// Destroy 按存储标识删除对象
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	ctx, span := tracer.Start(ctx, "cloudinary.Destroy",
		trace.WithAttributes(attribute.String("storage.public_id", publicID)))
	defer span.End()

	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range params {
		if err := writer.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if err := writer.WriteField("api_key", c.cfg.APIKey); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	if err := writer.WriteField("signature", c.sign(params)); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	url := fmt.Sprintf("%s/%s/image/destroy", c.baseURL, c.cfg.CloudName)
	if _, err := c.post(ctx, url, writer.FormDataContentType(), &buf); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// post 发送请求并解析响应
func (c *Client) post(ctx context.Context, url, contentType string, body io.Reader) (*uploadResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read storage response: %w", err)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode storage response (%d): %s", resp.StatusCode, string(raw))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("storage rejected request (%d): %s", resp.StatusCode, msg)
	}

	return &parsed, nil
}

// sign 按参数名排序拼接后使用 SHA-1 签名
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.cfg.APISecret))
	return hex.EncodeToString(sum[:])
}
