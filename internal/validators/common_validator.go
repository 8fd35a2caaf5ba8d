package validators

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"donationhub/internal/models"
	"donationhub/internal/rating"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report json field names so messages match the request body.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Register custom validation functions
	validate.RegisterValidation("rating_value", validateRatingValue)
	validate.RegisterValidation("donation_type", validateDonationType)
	validate.RegisterValidation("donation_filter", validateDonationFilter)
	validate.RegisterValidation("role", validateRole)
	validate.RegisterStructValidation(validateAddressCoordinates, models.Address{})
}

// Common validation errors
var (
	ErrInvalidCoordinates = errors.New("invalid GPS coordinates")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
)

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Fields maps each failing field to its message, for response details.
func (v ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return fields
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "body", Tag: "invalid", Message: err.Error()}}
	}

	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fmt.Sprintf("%v", fe.Value()),
			Message: getErrorMessage(fe),
		})
	}

	return validationErrors
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "url":
		return "Must be a valid URL"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "gt", "lte":
		return fmt.Sprintf("%s is out of range", err.Field())
	case "latitude", "longitude", "coordinates":
		return "Invalid GPS coordinates"
	case "rating_value":
		return "Rating must be between 1 and 5"
	case "donation_type":
		return "Donation type must be FOOD or CLOTHES"
	case "donation_filter":
		return "Donation type filter must be ALL, FOOD or CLOTHES"
	case "role":
		return "Role must be DONOR, VOLUNTEER or REQUESTER"
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

func validateRatingValue(fl validator.FieldLevel) bool {
	value := fl.Field().Int()
	return value >= rating.MinValue && value <= rating.MaxValue
}

func validateDonationType(fl validator.FieldLevel) bool {
	return models.DonationType(fl.Field().String()).IsValid()
}

func validateDonationFilter(fl validator.FieldLevel) bool {
	return models.DonationTypeFilter(fl.Field().String()).IsValid()
}

func validateRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).IsValid()
}

// An address carries both coordinates or neither.
func validateAddressCoordinates(sl validator.StructLevel) {
	addr := sl.Current().Interface().(models.Address)
	if (addr.Lat == nil) != (addr.Lng == nil) {
		sl.ReportError(addr.Lat, "lat", "Lat", "coordinates", "")
	}
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// SanitizeInput strips markup from free text such as chat messages and feedback.
func SanitizeInput(input string) string {
	return strings.TrimSpace(htmlTag.ReplaceAllString(input, ""))
}
