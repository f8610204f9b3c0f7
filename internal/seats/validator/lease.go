package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"seatlease/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// LeaseValidator checks lease requests before any storage work happens. It
// only guards shape (presence, id format, batch size); availability checks
// belong to the transactional scan in the service.
type LeaseValidator struct {
	validate *validator.Validate
}

func NewLeaseValidator() *LeaseValidator {
	return &LeaseValidator{validate: validator.New()}
}

func (v *LeaseValidator) ValidateAcquire(req *model.AcquireLeaseRequest) error {
	if err := v.validate.Struct(req); err != nil {
		return v.translate(err)
	}
	if hasDuplicates(req.SeatIDs) {
		return ValidationErrors{
			ValidationError{Field: "SeatIDs", Message: "seat_ids must not contain duplicates"},
		}
	}
	return nil
}

func (v *LeaseValidator) ValidateRelease(req *model.ReleaseSeatsRequest) error {
	if err := v.validate.Struct(req); err != nil {
		return v.translate(err)
	}
	if hasDuplicates(req.SeatIDsToUnlock) {
		return ValidationErrors{
			ValidationError{Field: "SeatIDsToUnlock", Message: "seat_ids_to_unlock must not contain duplicates"},
		}
	}
	return nil
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

func (v *LeaseValidator) translate(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var out ValidationErrors
	for _, fieldErr := range validationErrs {
		message := fieldErr.Error()

		switch fieldErr.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", fieldErr.Field())
		case "min":
			message = fmt.Sprintf("%s must contain at least %s element(s)", fieldErr.Field(), fieldErr.Param())
		case "max":
			message = fmt.Sprintf("%s must contain at most %s element(s)", fieldErr.Field(), fieldErr.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", fieldErr.Field())
		}

		out = append(out, ValidationError{
			Field:   fieldErr.Field(),
			Message: message,
		})
	}
	return out
}
