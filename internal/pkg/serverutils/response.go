package serverutils

// SuccessBody is the envelope for successful JSON responses.
type SuccessBody[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// ErrorBody is the envelope for failed JSON responses.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
}

func SuccessResponse[T any](message string, data T) SuccessBody[T] {
	return SuccessBody[T]{
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(message string) ErrorBody {
	return ErrorBody{
		Error: ErrorDetail{Message: message},
	}
}
