package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"transcribe-beautifier/internal/api/errors"
)

// Validator is implemented by requests with rules beyond their struct tags.
type Validator interface {
	Validate() error
}

// ValidateRequest binds a JSON body and checks its tags and domain rules.
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return bindError("request", "invalid JSON format", err)
	}
	return validateDomain(req)
}

// ValidateQuery binds query parameters.
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return bindError("query", "invalid query parameters", err)
	}
	return validateDomain(req)
}

func bindError(fallbackField, fallback string, err error) *errors.APIError {
	fields := make(map[string]string)

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields[fallbackField] = fallback
		return errors.NewValidationError("Validation failed", fields)
	}

	for _, fieldError := range validationErrs {
		field := strings.ToLower(fieldError.Field())
		switch fieldError.Tag() {
		case "required":
			fields[field] = "is required"
		case "min":
			fields[field] = "is too small"
		case "max":
			fields[field] = "is too large"
		case "oneof":
			fields[field] = "must be one of: " + fieldError.Param()
		default:
			fields[field] = "is invalid"
		}
	}
	return errors.NewValidationError("Validation failed", fields)
}

func validateDomain(req interface{}) error {
	if v, ok := req.(Validator); ok {
		return v.Validate()
	}
	return nil
}
