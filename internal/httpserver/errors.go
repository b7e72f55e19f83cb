package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/logging"
)

// ErrorResponse is the body of every failed request. Stack is null in production.
type ErrorResponse struct {
	Message string  `json:"message"`
	Stack   *string `json:"stack"`
}

// ErrorHandler renders errors as ErrorResponse. In development the stack is
// the chain of wrapped causes.
func ErrorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			he = &echo.HTTPError{Code: http.StatusInternalServerError, Message: err.Error(), Internal: err}
		}

		code := he.Code
		if code == 0 || code == http.StatusOK {
			code = http.StatusInternalServerError
		}

		msg := fmt.Sprint(he.Message)
		switch {
		case errors.Is(err, echo.ErrNotFound), errors.Is(err, echo.ErrMethodNotAllowed):
			code = http.StatusNotFound
			msg = "Not Found - " + c.Request().URL.String()
		case code == http.StatusInternalServerError && he.Internal != nil:
			// Server failures carry the underlying message, not the handler's label.
			msg = he.Internal.Error()
		}

		resp := ErrorResponse{Message: msg}
		if !production {
			stack := causeChain(err)
			resp.Stack = &stack
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, resp)
		}
		if werr != nil {
			logging.FromContext(c.Request().Context()).Error("write_error_response_failed", "error", werr)
		}
	}
}

func causeChain(err error) string {
	var b strings.Builder
	for e := err; e != nil; e = errors.Unwrap(e) {
		if b.Len() > 0 {
			b.WriteString("\n    caused by: ")
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

// reason returns the detail a service attached to a sentinel error,
// capitalized for display: "validation: no order items" becomes "No order items".
func reason(err, sentinel error, fallback string) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" || msg == err.Error() {
		return fallback
	}
	r, size := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[size:]
}
