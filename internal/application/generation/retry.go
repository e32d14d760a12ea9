package generation

import (
	"context"
	"time"

	"ai-gallery-api/internal/infrastructure/inference"
	"ai-gallery-api/pkg/errors"
	"ai-gallery-api/pkg/logger"
)

// Caller 单次推理调用的抽象，由推理客户端实现
type Caller interface {
	Generate(ctx context.Context, model, prompt string) inference.Outcome
	PrimaryModel() string
	FallbackModel() string
}

// RetryResult 重试控制器的最终产出
type RetryResult struct {
	// Image 成功生成的图像字节
	Image []byte
	// Model 实际产出图像的模型
	Model string
	// Attempts 消耗的重试预算次数
	Attempts int
	// FallbackUsed 是否动用过回退模型
	FallbackUsed bool
}

// RetryController 推理重试控制器
//
// 状态机规则：
//   - 预算内的每次可恢复失败消耗一次尝试，随后按失败类别退避
//   - 模型加载中不消耗预算，等待服务端预估时间后重试当前模型
//   - 主模型返回 404/403 时切换回退模型发起一次调用；
//     回退调用的失败回到正常的预算消耗与退避流程
//   - 不可恢复失败立刻终止
type RetryController struct {
	caller        Caller
	maxAttempts   int
	contentWait   time.Duration
	transportWait time.Duration

	// sleep 可注入，测试中替换为立即返回
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryController 创建重试控制器
func NewRetryController(caller Caller, maxAttempts int, contentWait, transportWait time.Duration) *RetryController {
	return &RetryController{
		caller:        caller,
		maxAttempts:   maxAttempts,
		contentWait:   contentWait,
		transportWait: transportWait,
		sleep:         sleepContext,
	}
}

// Run 执行带重试与回退的推理，直至成功、预算耗尽或不可恢复失败
func (r *RetryController) Run(ctx context.Context, prompt string) (*RetryResult, error) {
	log := logger.FromContext(ctx)

	model := r.caller.PrimaryModel()
	attempts := 0
	fallbackUsed := false

	for attempts < r.maxAttempts {
		outcome := r.caller.Generate(ctx, model, prompt)

		switch outcome.Kind {
		case inference.OutcomeSuccess:
			return &RetryResult{
				Image:        outcome.Image,
				Model:        model,
				Attempts:     attempts + 1,
				FallbackUsed: fallbackUsed,
			}, nil

		case inference.OutcomeLoading:
			// 模型加载不占预算，按服务端预估等待后重试
			log.Info("model loading, waiting before retry",
				"model", model,
				"wait", outcome.EstimatedWait.String(),
			)
			if err := r.sleep(ctx, outcome.EstimatedWait); err != nil {
				return nil, errors.NewInferenceExhausted(attempts, err)
			}
			continue

		case inference.OutcomeFatal:
			return nil, errors.NewInferenceExhausted(attempts, outcome.Err)

		case inference.OutcomeRecoverable:
			if outcome.ModelUnavailable && !fallbackUsed && r.caller.FallbackModel() != "" && model != r.caller.FallbackModel() {
				// 主模型不可达，切换回退模型；本次失败不计入预算
				log.Warn("primary model unavailable, switching to fallback",
					"model", model,
					"fallback", r.caller.FallbackModel(),
					"error", outcome.Err.Error(),
				)
				model = r.caller.FallbackModel()
				fallbackUsed = true
				continue
			}

			attempts++
			log.Warn("inference attempt failed",
				"model", model,
				"attempt", attempts,
				"max_attempts", r.maxAttempts,
				"transport", outcome.Transport,
				"error", outcome.Err.Error(),
			)
			if attempts >= r.maxAttempts {
				return nil, errors.NewInferenceExhausted(attempts, outcome.Err)
			}

			wait := r.contentWait
			if outcome.Transport {
				wait = r.transportWait
			}
			if err := r.sleep(ctx, wait); err != nil {
				return nil, errors.NewInferenceExhausted(attempts, err)
			}
		}
	}

	return nil, errors.NewInferenceExhausted(attempts, ctx.Err())
}

// sleepContext 可被上下文取消的等待
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
