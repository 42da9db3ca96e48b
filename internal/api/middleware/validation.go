package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"media-transcriber/internal/api/errors"
)

// Validator is implemented by requests with rules beyond struct tags.
type Validator interface {
	Validate() error
}

// ValidateRequest binds the JSON body and checks struct tags, then domain
// rules when req implements Validator.
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return bindingError(err, "request", "invalid JSON format")
	}
	return validateDomain(req)
}

// ValidateQuery binds and checks query parameters.
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return bindingError(err, "query", "invalid query parameters")
	}
	return validateDomain(req)
}

// ValidateForm binds and checks multipart form fields.
func ValidateForm(c *gin.Context, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		return bindingError(err, "form", "invalid form data")
	}
	return validateDomain(req)
}

func bindingError(err error, field, message string) error {
	fields := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if stderrors.As(err, &validationErrs) {
		for _, fieldError := range validationErrs {
			name := strings.ToLower(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				fields[name] = "is required"
			case "gte", "min":
				fields[name] = "is too small"
			case "lte", "max":
				fields[name] = "is too large"
			case "oneof":
				fields[name] = "must be one of the allowed values"
			default:
				fields[name] = "is invalid"
			}
		}
	} else {
		fields[field] = message
	}
	return errors.NewValidationError("Validation failed", fields)
}

func validateDomain(req interface{}) error {
	if v, ok := req.(Validator); ok {
		return v.Validate()
	}
	return nil
}
