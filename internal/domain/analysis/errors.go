package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCodeFiles is returned when codeFiles is missing, not an array or empty.
	ErrNoCodeFiles = errors.New("분석할 'codeFiles' 배열이 요청 본문에 포함되어야 합니다.")

	// ErrInvalidMode is returned for a mode other than whole or per_file.
	ErrInvalidMode = errors.New("지원하지 않는 분석 모드입니다. (whole, per_file)")

	// ErrModelUnavailable hides every transport or API failure from the model
	// provider. The concrete cause is logged, never returned.
	ErrModelUnavailable = errors.New("모델 API 통신 중 문제가 발생했습니다.")
)

// snippetLen is how much of a bad model answer is echoed back to the caller.
const snippetLen = 100

// FormatError means the model answered with something that is not the JSON we asked for.
type FormatError struct {
	Snippet string
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("model response is not valid JSON (%s): %s", e.Reason, e.Snippet)
}

// Detail is the caller-facing diagnostic.
func (e *FormatError) Detail() string {
	return "모델 응답: " + e.Snippet + "..."
}

func newFormatError(raw, reason string) *FormatError {
	return &FormatError{Snippet: truncate(raw, snippetLen), Reason: reason}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
