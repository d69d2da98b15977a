package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/medlog/internal/adherence"
	"github.com/julianstephens/medlog/internal/logger"
	"github.com/julianstephens/medlog/internal/storage"
	"github.com/julianstephens/medlog/internal/validation"
)

var hints = []struct {
	target error
	hint   string
}{
	{adherence.ErrInvalidDate, "dates are written as YYYY-MM-DD"},
	{adherence.ErrInvalidConfiguration, "check the values shown by 'medlog settings --list'"},
	{validation.ErrInvalidTransition, "a dose can be marked taken or missed while pending, or undone back to pending"},
	{storage.ErrNotFound, "use 'medlog patient list' or 'medlog dose list' to find valid names and IDs"},
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint returns a short suggestion for well-known failures, or "" when there is none.
func Hint(err error) string {
	for _, h := range hints {
		if errors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		if hint := Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
