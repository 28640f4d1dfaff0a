package contract

import "errors"

var (
	ErrProviderUnavailable = errors.New("model provider unavailable")
	ErrUnknownTool         = errors.New("unknown tool")
	ErrMalformedToolCall   = errors.New("malformed tool call")
	ErrScriptNotFound      = errors.New("script not found")
	ErrProtectedOperation  = errors.New("protected operation refused")
	ErrValidation          = errors.New("validation failed")
)
