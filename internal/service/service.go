// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	RPC procedure (transport) → decodes params, enforces access tier
//	Service (business)        → validates input, degrades reads, logs changes
//	Repository (data)         → reads/writes the database
//
// Services depend on the repository interfaces, never on sqldb, so tests run
// against hand-written fakes or an in-memory SQLite store.
//
// STORAGE UNAVAILABLE:
// When the store reports apperror.ErrUnavailable, reads degrade: lists come
// back empty and gets come back nil, with a Warn log line so the state is not
// silent. Writes return the error unchanged; the RPC layer maps it to 503.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/gaia-lore/internal/apperror"
)

// validate is shared by every service; validator caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names ("imageUrl") instead of Go names ("ImageURL")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs struct validation and converts the first failure into
// an apperror validation error naming the offending field.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperror.ValidationFailed(fe.Field(), describe(fe))
	}
	return apperror.ValidationFailed("", err.Error())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be %s characters or less", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// degradeList turns an unavailable-storage read into an empty collection.
func degradeList[T any](logger *slog.Logger, op string, err error) ([]T, error) {
	if errors.Is(err, apperror.ErrUnavailable) {
		logger.Warn("storage unavailable, returning empty result", slog.String("op", op))
		return []T{}, nil
	}
	logger.Error("read failed", slog.String("op", op), slog.String("error", err.Error()))
	return nil, fmt.Errorf("%s: %w", op, err)
}

// degradeGet turns an unavailable-storage read into a nil record. Not-found
// and other errors pass through.
func degradeGet[T any](logger *slog.Logger, op string, err error) (*T, error) {
	if errors.Is(err, apperror.ErrUnavailable) {
		logger.Warn("storage unavailable, returning no record", slog.String("op", op))
		return nil, nil
	}
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	return nil, fmt.Errorf("%s: %w", op, err)
}

// trimPtr trims a non-nil string in place.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
