package api

// Google JSON API style response structures
type APIResponse struct {
	APIVersion string        `json:"apiVersion"`
	Data       any           `json:"data,omitempty"`
	Error      *APIErrorInfo `json:"error,omitempty"`
}

type APIErrorInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewDataResponse(data any) APIResponse {
	return APIResponse{
		APIVersion: "1.0",
		Data:       data,
	}
}

func NewErrorResponse(code int, message string) APIResponse {
	return APIResponse{
		APIVersion: "1.0",
		Error: &APIErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

const (
	MsgInvalidRequest        = "Invalid request. Please try again."
	MsgInvalidCredentials    = "Invalid email, password or verification code."
	MsgInvalidCode           = "Incorrect verification code. You have %d attempt(s) left."
	MsgTooManyFailedAttempts = "Too many failed attempts. Please try again later."
	MsgUserNotFound          = "No account found with that email address."
	MsgAlreadyEnabled        = "Two-factor authentication is already enabled."
	MsgNotEnabled            = "Two-factor authentication is not enabled."
	MsgSetupNotStarted       = "Two-factor setup has not been started."
	MsgIncorrectPassword     = "Your password is incorrect."
	MsgInternalError         = "Internal server error"
)
