package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/you/storefront/domain"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the API refused or could not be reached
	ExitCommandError = 2 // bad flags or configuration
)

// ExitError carries the exit code of a failed command
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps err with an exit code
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// userMessage is what the shopper sees for err: the server's reason when
// there is one.
func userMessage(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return exitErr.Message
	}
	if errors.Is(err, domain.ErrNetwork) {
		return "Serveur injoignable: " + domain.Reason(err)
	}
	return domain.Reason(err)
}

// OutputFormatter writes either text renderings or JSON
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Emit writes v as JSON in json mode, otherwise calls render
func (f *OutputFormatter) Emit(v any, render func(io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	render(f.Writer)
	return nil
}

// Message writes a one-line confirmation, or {"message": ...} in json mode
func (f *OutputFormatter) Message(msg string) error {
	return f.Emit(map[string]string{"message": msg}, func(w io.Writer) {
		fmt.Fprintln(w, msg)
	})
}
