// Package inference 提供外部图像推理服务客户端
package inference

import (
	"fmt"
	"time"
)

// OutcomeKind 单次推理调用的结果类别
type OutcomeKind string

const (
	// OutcomeSuccess 成功返回图像数据
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeLoading 模型加载中，可不消耗重试预算地等待后重试
	OutcomeLoading OutcomeKind = "loading"
	// OutcomeRecoverable 可恢复失败，按重试预算处理
	OutcomeRecoverable OutcomeKind = "recoverable"
	// OutcomeFatal 不可恢复失败
	OutcomeFatal OutcomeKind = "fatal"
)

// Outcome 单次推理尝试的结果，生命周期仅限本次调用的消费方
type Outcome struct {
	Kind OutcomeKind

	// Image 成功时的原始图像字节
	Image []byte

	// EstimatedWait 模型加载中时服务端给出的等待预估
	EstimatedWait time.Duration

	// ModelUnavailable 模型不存在或无权访问（404/403），触发回退模型
	ModelUnavailable bool

	// Transport 网络层失败，与内容类失败采用不同的退避
	Transport bool

	// Err 非成功结果的错误详情
	Err error
}

// String 用于日志与指标标签
func (o Outcome) String() string {
	return string(o.Kind)
}

// successOutcome 构造成功结果
func successOutcome(image []byte) Outcome {
	return Outcome{Kind: OutcomeSuccess, Image: image}
}

// loadingOutcome 构造模型加载中结果
func loadingOutcome(wait time.Duration) Outcome {
	return Outcome{
		Kind:          OutcomeLoading,
		EstimatedWait: wait,
		Err:           fmt.Errorf("model is loading, estimated wait %s", wait),
	}
}

// recoverableOutcome 构造可恢复失败结果
func recoverableOutcome(err error, modelUnavailable, transport bool) Outcome {
	return Outcome{
		Kind:             OutcomeRecoverable,
		ModelUnavailable: modelUnavailable,
		Transport:        transport,
		Err:              err,
	}
}

// fatalOutcome 构造不可恢复失败结果
func fatalOutcome(err error) Outcome {
	return Outcome{Kind: OutcomeFatal, Err: err}
}
