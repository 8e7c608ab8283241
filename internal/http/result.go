package httpapi

// Result 统一响应包装
// - code: 2000 success, -1 error, 4220 submission blocked by screening
// - type: 'success' | 'error' | 'warning'
// - message: string
// - result: any
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
	// ResultBlocked 内容筛查拒绝，message 为面向用户的固定文案
	ResultBlocked = 4220
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

func Blocked(message string) Result[any] {
	return Result[any]{Code: ResultBlocked, Type: "warning", Message: message, Result: nil}
}
