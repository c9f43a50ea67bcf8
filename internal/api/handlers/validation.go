package handlers

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
)

// validate is shared by all handlers; *validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("iso_date", validateISODate)
	return v
}

// validateISODate accepts calendar dates in YYYY-MM-DD form.
func validateISODate(fl validator.FieldLevel) bool {
	_, err := civil.ParseDate(fl.Field().String())
	return err == nil
}

// rangeRequest selects a user's stored transactions by date.
type rangeRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
	From   string `json:"from" validate:"required,iso_date"`
	To     string `json:"to" validate:"required,iso_date"`
}

// dates returns the parsed range. It must only be called after validation.
func (r rangeRequest) dates() (from, to civil.Date, err error) {
	from, _ = civil.ParseDate(r.From)
	to, _ = civil.ParseDate(r.To)
	if to.Before(from) {
		return from, to, fmt.Errorf("to must not be before from")
	}
	return from, to, nil
}

// validationMessage flattens validator errors into one client-facing line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fieldName(fe)))
		case "iso_date":
			parts = append(parts, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fieldName(fe)))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fieldName(fe), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fieldName(fe)))
		}
	}
	return strings.Join(parts, "; ")
}

// fieldName maps Go field names to their JSON names for error messages.
func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "UserID":
		return "user_id"
	case "From":
		return "from"
	case "To":
		return "to"
	case "Transactions":
		return "transactions"
	}
	return strings.ToLower(fe.Field())
}
