package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeTimeout         Code = "TIMEOUT"
	CodeInternal        Code = "INTERNAL"

	// Session lifecycle codes. Part of the caller-facing contract, must stay
	// stable across releases.
	CodeQuotaExceeded          Code = "QUOTA_EXCEEDED"
	CodeSTTUnavailable         Code = "STT_UNAVAILABLE"
	CodeSTTFailed              Code = "STT_FAILED"
	CodeTTSUnavailable         Code = "TTS_UNAVAILABLE"
	CodeTTSFailed              Code = "TTS_FAILED"
	CodeAudioQualityPoor       Code = "AUDIO_QUALITY_POOR"
	CodePrimaryLLMFailed       Code = "PRIMARY_LLM_FAILED"
	CodeFallbackLLMFailed      Code = "FALLBACK_LLM_FAILED"
	CodeAllLLMsFailed          Code = "ALL_LLMS_FAILED"
	CodeInvalidStateTransition Code = "INVALID_STATE_TRANSITION"
	CodeInvalidModeCombination Code = "INVALID_MODE_COMBINATION"
	CodeSessionNotFound        Code = "SESSION_NOT_FOUND"
	CodeSessionCompleted       Code = "SESSION_COMPLETED"
)

// AppError is the unified error contract across layers.
type AppError struct {
	Code    Code
	Op      string // operation name, ex: "SessionManager.ProcessInput"
	Message string // safe message
	Err     error  // wrapped error
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op != "" && e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Op != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "error"
	}
}

func (e *AppError) Unwrap() error { return e.Err }

func E(code Code, op, msg string, err error) error {
	return &AppError{Code: code, Op: op, Message: msg, Err: err}
}

func IsCode(err error, code Code) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// CodeOf extracts the stable code from an error chain, or CodeInternal.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

func HTTPStatus(err error) int {
	var ae *AppError
	if errors.As(err, &ae) {
		switch ae.Code {
		case CodeInvalidArgument, CodeInvalidModeCombination:
			return http.StatusBadRequest
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeForbidden:
			return http.StatusForbidden
		case CodeNotFound, CodeSessionNotFound:
			return http.StatusNotFound
		case CodeConflict, CodeInvalidStateTransition, CodeSessionCompleted:
			return http.StatusConflict
		case CodeQuotaExceeded:
			return http.StatusTooManyRequests
		case CodeUnavailable, CodeAllLLMsFailed, CodeSTTUnavailable, CodeTTSUnavailable:
			return http.StatusServiceUnavailable
		case CodeTimeout:
			return http.StatusGatewayTimeout
		default:
			return http.StatusInternalServerError
		}
	}
	// fallback
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Backward-compatible sentinel errors
var (
	ErrNotFound = errors.New("not found")
)
