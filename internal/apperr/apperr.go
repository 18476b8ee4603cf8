// Package apperr holds the error kinds shared by every service and their
// translation into HTTP responses.
package apperr

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Services wrap these kinds (fmt.Errorf("...: %w", kind)) so handlers can map
// them with errors.Is.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrDuplicateAccount    = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrRecordNotFound      = errors.New("record not found")
	ErrPhoneNotBound       = errors.New("phone number not registered; update your phone number first")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired OTP")
	ErrVerificationFailed  = errors.New("identity verification failed")
	ErrNoContacts          = errors.New("no emergency contacts found for this user")
	ErrDispatchFailure     = errors.New("failed to send message")
	ErrUnauthorized        = errors.New("unauthorized")
)

// ValidationError carries per-field messages for an InvalidInput failure.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return ErrInvalidInput.Error()
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Add records a message against a field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Err returns nil when no field failed, otherwise the ValidationError itself.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Required adds "this field is required." when value is empty.
func (e *ValidationError) Required(field, value string) {
	if value == "" {
		e.Add(field, "this field is required.")
	}
}

// MaxLen adds a length message when value exceeds max characters.
func (e *ValidationError) MaxLen(field, value string, max int) {
	if len([]rune(value)) > max {
		e.Add(field, "ensure this field has no more than "+strconv.Itoa(max)+" characters.")
	}
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrDispatchFailure):
		return http.StatusInternalServerError
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrDuplicateAccount),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrPhoneNotBound),
		errors.Is(err, ErrInvalidOrExpiredOTP),
		errors.Is(err, ErrVerificationFailed),
		errors.Is(err, ErrNoContacts):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// Handler returns a fiber ErrorHandler that renders {"error": ...} bodies.
// Internal errors are logged and replaced with a generic message.
func Handler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := Status(err)
		body := errorBody{Error: message(err)}

		var ve *ValidationError
		if errors.As(err, &ve) {
			body.Fields = ve.Fields
		}

		if status >= http.StatusInternalServerError && !errors.Is(err, ErrDispatchFailure) {
			if logger != nil {
				logger.Error("unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
			}
			body.Error = http.StatusText(status)
		}

		return c.Status(status).JSON(body)
	}
}

// message picks the user-facing text: the outermost known kind's text, so
// wrapping context stays in logs only.
func message(err error) string {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	for _, kind := range []error{
		ErrInvalidInput, ErrDuplicateAccount, ErrInvalidCredentials, ErrRecordNotFound,
		ErrPhoneNotBound, ErrInvalidOrExpiredOTP, ErrVerificationFailed, ErrNoContacts,
		ErrDispatchFailure, ErrUnauthorized,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return err.Error()
}
