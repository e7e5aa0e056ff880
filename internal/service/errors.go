package service

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
)

// validationError converts validator failures into a typed validation error
// carrying a per-field breakdown.
func validationError(err error, message string) *appErrors.Error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return appErrors.Clone(appErrors.ErrValidation, message)
	}

	fields := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, message), fields)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
