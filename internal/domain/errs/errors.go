package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the forecasting pipeline. Callers match them with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrShape      = errors.New("shape error")
	ErrInference  = errors.New("inference error")
	ErrStore      = errors.New("store error")
)

// Validationf wraps a formatted message as a validation failure.
func Validationf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, a...))
}

// Shapef wraps a formatted message as a shape contract violation.
func Shapef(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrShape, fmt.Sprintf(format, a...))
}

// Inference wraps an engine failure. Shape errors pass through untouched.
func Inference(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrShape) || errors.Is(err, ErrInference) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInference, err)
}

// Store wraps a history store failure for the given operation.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStore) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrStore, op, err)
}

// Kind returns a short label for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrShape):
		return "shape"
	case errors.Is(err, ErrInference):
		return "inference"
	case errors.Is(err, ErrStore):
		return "store"
	default:
		return "internal"
	}
}

// Message strips the leading kind label so the text can be shown to end users.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, kind := range []error{ErrValidation, ErrShape, ErrInference, ErrStore} {
		if strings.HasPrefix(msg, kind.Error()+": ") {
			return strings.TrimPrefix(msg, kind.Error()+": ")
		}
	}
	return msg
}
