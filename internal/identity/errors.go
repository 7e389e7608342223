package identity

import (
	"errors"
	"strings"
)

// Error is a failure reported by the identity provider. Message is fit for
// showing to the user.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var errorMessages = map[string]string{
	"EMAIL_EXISTS":                "The email address is already in use by another account.",
	"EMAIL_NOT_FOUND":             "There is no user record corresponding to this identifier. The user may have been deleted.",
	"INVALID_PASSWORD":            "The password is invalid.",
	"INVALID_EMAIL":               "The email address is badly formatted.",
	"INVALID_LOGIN_CREDENTIALS":   "The supplied auth credential is incorrect, malformed or has expired.",
	"MISSING_PASSWORD":            "A password is required.",
	"MISSING_EMAIL":               "An email address is required.",
	"USER_DISABLED":               "The user account has been disabled by an administrator.",
	"WEAK_PASSWORD":               "The given password is invalid. Password should be at least 6 characters.",
	"OPERATION_NOT_ALLOWED":       "This sign-in method is not enabled.",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "We have blocked all requests from this device due to unusual activity. Try again later.",
	"INVALID_IDP_RESPONSE":        "The supplied auth credential is malformed or has expired.",
}

// newError maps a provider error string such as "WEAK_PASSWORD : Password
// should be at least 6 characters" to an Error
func newError(raw string) *Error {
	code, detail, _ := strings.Cut(raw, " : ")
	code = strings.TrimSpace(code)
	if msg, ok := errorMessages[code]; ok {
		return &Error{Code: code, Message: msg}
	}
	if detail != "" {
		return &Error{Code: code, Message: strings.TrimSpace(detail)}
	}
	if code == "" {
		return &Error{Code: "UNKNOWN", Message: "An internal error has occurred."}
	}
	return &Error{Code: code, Message: "An internal error has occurred. [ " + code + " ]"}
}

// Message returns the text to show for err
func Message(err error) string {
	var idErr *Error
	if errors.As(err, &idErr) {
		return idErr.Message
	}
	return err.Error()
}
