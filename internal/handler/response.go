package handler

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Response is the envelope every endpoint answers with. RequestID is filled
// on service-error responses so a client report can be matched to the server
// log line.
type Response struct {
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: statusSuccess,
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  statusError,
		Message: message,
	}
}
