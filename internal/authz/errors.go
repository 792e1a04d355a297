package authz

import "net/http"

const CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"

// Error is the authorization failure raised by RequirePermission. Every other
// engine function returns booleans and never fails.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newDeniedError() *Error {
	return &Error{
		Code:    CodeInsufficientPermissions,
		Status:  http.StatusForbidden,
		Message: "you do not have permission to perform this action",
	}
}
