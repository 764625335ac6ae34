package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN_ERROR"

	// Protocol errors
	CodeMessageTooLarge      Code = "MESSAGE_TOO_LARGE"
	CodeInvalidJSON          Code = "INVALID_JSON"
	CodeInvalidMessageFormat Code = "INVALID_MESSAGE_FORMAT"
	CodeMissingCommand       Code = "MISSING_COMMAND"
	CodeInvalidCommandType   Code = "INVALID_COMMAND_TYPE"
	CodeUnknownCommand       Code = "UNKNOWN_COMMAND"
	CodeInvalidParamsType    Code = "INVALID_PARAMS_TYPE"
	CodeInvalidParams        Code = "INVALID_PARAMS"

	// Object errors
	CodeObjectNotFound  Code = "OBJECT_NOT_FOUND"
	CodeUnsupportedType Code = "UNSUPPORTED_TYPE"
	CodeCreationFailed  Code = "CREATION_FAILED"

	// Render errors
	CodeInvalidEngine Code = "INVALID_ENGINE"
	CodeInvalidFormat Code = "INVALID_FORMAT"
	CodeRenderFailed  Code = "RENDER_FAILED"
	CodePathError     Code = "PATH_ERROR"

	// Dispatch errors
	CodeExecutionError  Code = "EXECUTION_ERROR"
	CodeProcessingError Code = "PROCESSING_ERROR"
	CodeTimeout         Code = "TIMEOUT"
	CodeQueueFull       Code = "QUEUE_FULL"

	// Connection errors
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeNotConnected    Code = "NOT_CONNECTED"
	CodeConnectionError Code = "CONNECTION_ERROR"

	// Storage errors
	CodeStorageError Code = "STORAGE_ERROR"
)

// Category groups codes for logging and error statistics.
type Category string

const (
	CategoryValidation Category = "VALIDATION"
	CategoryCommand    Category = "COMMAND"
	CategoryEngine     Category = "ENGINE"
	CategoryConnection Category = "CONNECTION"
	CategoryTimeout    Category = "TIMEOUT"
	CategorySecurity   Category = "SECURITY"
	CategorySystem     Category = "SYSTEM"
)

// CategoryOf maps a code to its category.
func (c Code) Category() Category {
	switch c {
	case CodeMessageTooLarge,
		CodeInvalidJSON,
		CodeInvalidMessageFormat,
		CodeMissingCommand,
		CodeInvalidCommandType,
		CodeInvalidParamsType,
		CodeInvalidParams:
		return CategoryValidation

	case CodeUnknownCommand,
		CodeProcessingError,
		CodeQueueFull:
		return CategoryCommand

	case CodeObjectNotFound,
		CodeUnsupportedType,
		CodeCreationFailed,
		CodeInvalidEngine,
		CodeInvalidFormat,
		CodeRenderFailed,
		CodePathError,
		CodeExecutionError:
		return CategoryEngine

	case CodeNotConnected,
		CodeConnectionError:
		return CategoryConnection

	case CodeTimeout:
		return CategoryTimeout

	case CodeUnauthorized:
		return CategorySecurity

	default:
		return CategorySystem
	}
}
