package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"rental-project/internal/core/domain"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newFormValidator reports field errors under their json names.
func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateListingForm normalizes the form and checks it. Any violation is
// reported as domain.ValidationErrors.
func ValidateListingForm(v *validator.Validate, form domain.ListingForm) (domain.ListingForm, error) {
	form = form.Normalized()

	err := v.Struct(form)
	if err == nil {
		return form, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return form, fmt.Errorf("validate listing form: %w", err)
	}

	out := make(domain.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, domain.ValidationError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return form, out
}

// fieldMessages are what the admin form shows under each field.
var fieldMessages = map[string]string{
	"title":           "Title is required",
	"title_bn":        "Bengali title is required",
	"category_id":     "Category is required",
	"price_per_night": "Price must be greater than 0",
	"location":        "Location is required",
	"location_bn":     "Bengali location is required",
	"max_guests":      "Max guests must be at least 1",
	"bedrooms":        "Bedrooms must be at least 1",
	"bathrooms":       "Bathrooms must be at least 1",
	"images":          "Please add at least one image",
}

func validationMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "gt":
		return "Must be greater than " + fe.Param()
	case "min":
		return "Must be at least " + fe.Param()
	default:
		return fmt.Sprintf("Failed the %q check", fe.Tag())
	}
}
