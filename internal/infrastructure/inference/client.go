// Package inference 提供外部图像推理服务客户端
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ai-gallery-api/internal/config"
	"ai-gallery-api/pkg/metrics"
)

var tracer = otel.Tracer("inference")

// request 推理服务请求体
type request struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
	Options    options    `json:"options"`
}

type parameters struct {
	NegativePrompt    string `json:"negative_prompt,omitempty"`
	NumInferenceSteps int    `json:"num_inference_steps,omitempty"`
}

type options struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

// errorBody 推理服务错误响应体
type errorBody struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Client 推理服务客户端，每次调用对应对外部服务的一次同步请求
type Client struct {
	cfg        *config.InferenceConfig
	httpClient *http.Client
}

// NewClient 创建推理客户端
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg: &cfg.Inference,
		httpClient: &http.Client{
			// wait_for_model 为真时服务端可能长时间挂起连接，必须设置上限
			Timeout: cfg.Inference.AttemptTimeout,
		},
	}
}

// Configured 检查凭证是否已配置
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// PrimaryModel 主模型标识
func (c *Client) PrimaryModel() string {
	return c.cfg.Model
}

// FallbackModel 回退模型标识
func (c *Client) FallbackModel() string {
	return c.cfg.FallbackModel
}

// Generate 对指定模型发起一次同步推理调用
// 返回的 Outcome 由调用方立即消费，不做任何内部重试
func (c *Client) Generate(ctx context.Context, model, prompt string) Outcome {
	ctx, span := tracer.Start(ctx, "inference.Generate",
		trace.WithAttributes(attribute.String("inference.model", model)))
	defer span.End()

	start := time.Now()
	outcome := c.call(ctx, model, prompt)

	metrics.InferenceCallDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
	metrics.InferenceCallTotal.WithLabelValues(model, outcome.String()).Inc()
	span.SetAttributes(attribute.String("inference.outcome", outcome.String()))
	if outcome.Err != nil {
		span.RecordError(outcome.Err)
	}

	return outcome
}

func (c *Client) call(ctx context.Context, model, prompt string) Outcome {
	body, err := json.Marshal(request{
		Inputs: prompt,
		Parameters: parameters{
			NegativePrompt:    c.cfg.NegativePrompt,
			NumInferenceSteps: c.cfg.Steps,
		},
		Options: options{
			WaitForModel: true,
			UseCache:     false,
		},
	})
	if err != nil {
		return fatalOutcome(fmt.Errorf("failed to encode request: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s", strings.TrimRight(c.cfg.BaseURL, "/"), model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fatalOutcome(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-use-cache", "false")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 调用方取消时直接终止，不再进入重试
		if ctx.Err() != nil {
			return fatalOutcome(ctx.Err())
		}
		return recoverableOutcome(fmt.Errorf("inference request failed: %w", err), false, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		image, err := io.ReadAll(resp.Body)
		if err != nil {
			return recoverableOutcome(fmt.Errorf("failed to read image body: %w", err), false, true)
		}
		if len(image) == 0 {
			return recoverableOutcome(fmt.Errorf("inference returned empty body"), false, false)
		}
		return successOutcome(image)
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		eb = errorBody{Error: string(raw)}
	}

	// 模型加载中是独立的、不消耗重试预算的条件
	if strings.Contains(strings.ToLower(eb.Error), "loading") {
		wait := c.cfg.DefaultLoadingWait
		if eb.EstimatedTime > 0 {
			wait = time.Duration(eb.EstimatedTime * float64(time.Second))
		}
		return loadingOutcome(wait)
	}

	detail := eb.Error
	if detail == "" {
		detail = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusForbidden:
		// 模型不可达，调用方可切换回退模型
		return recoverableOutcome(
			fmt.Errorf("model %s not accessible (%d): %s", model, resp.StatusCode, detail),
			true, false,
		)
	case http.StatusUnauthorized:
		return fatalOutcome(fmt.Errorf("inference credential rejected (%d): %s", resp.StatusCode, detail))
	default:
		return recoverableOutcome(
			fmt.Errorf("inference failed (%d): %s", resp.StatusCode, detail),
			false, false,
		)
	}
}
