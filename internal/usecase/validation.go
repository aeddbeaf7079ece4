package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validateInput runs the struct's validate tags and folds failures into a
// single DomainError.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &DomainError{Code: CodeValidation, Message: err.Error()}
	}

	fields := make([]ValidationError, 0, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ve := ValidationError{Field: jsonName(fe.StructField()), Message: ruleMessage(fe)}
		fields = append(fields, ve)
		msgs = append(msgs, ve.Error())
	}
	return &DomainError{Code: CodeValidation, Message: strings.Join(msgs, "; "), Fields: fields}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "url":
		return "must be a valid url"
	case "email":
		return "is invalid"
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}

// jsonName turns ClientName into client_name.
func jsonName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
