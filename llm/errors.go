package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed covers transport failures and non-2xx answers
	ErrRequestFailed = errors.New("API 请求失败")
	// ErrResponseFormat covers bodies that do not carry a completion
	ErrResponseFormat = errors.New("API 响应格式错误")
)

// HTTPStatusError captures non-2xx upstream responses
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d from %s: %s", ErrRequestFailed, e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) Unwrap() error {
	return ErrRequestFailed
}
