package types

import "fmt"

// ErrorCode 检索源错误的统一错误码。
type ErrorCode string

const (
	ErrSourceUnavailable  ErrorCode = "SOURCE_UNAVAILABLE"  // 外部调用失败或超时
	ErrConfigIncomplete   ErrorCode = "CONFIG_INCOMPLETE"   // 缺少必需的协作方配置
	ErrInvariantViolation ErrorCode = "INVARIANT_VIOLATION" // 存储数据不合法（如向量损坏）
	ErrTimeout            ErrorCode = "TIMEOUT"
)

// SourceError 表示单个检索源的结构化错误。
// 检索源的失败不会中止兄弟检索源或融合阶段，错误码和消息
// 保留在 RetrievalOutcome.Path 中供排障检视。
type SourceError struct {
	Code    ErrorCode `json:"code"`
	Source  Source    `json:"source"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Code, e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Source, e.Message)
}

// Unwrap returns the underlying cause.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// NewSourceError creates a new SourceError.
func NewSourceError(code ErrorCode, src Source, message string) *SourceError {
	return &SourceError{Code: code, Source: src, Message: message}
}

// WithCause adds a cause to the error.
func (e *SourceError) WithCause(cause error) *SourceError {
	e.Cause = cause
	return e
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*SourceError); ok {
		return e.Code
	}
	return ""
}
