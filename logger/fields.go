package logger

// Standard field key constants for structured logging.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldStack     = "stack"
	FieldOutcome   = "outcome"
	FieldErrorType = "error_type"
	FieldErrorID   = "error_id"
	FieldHandler   = "handler"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("done", logger.Fields("outcome", "handled", "status", 404))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for a failed dispatch of err.
func ErrorFields(errType string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldErrorType: errType,
		FieldError:     err.Error(),
	}
}
