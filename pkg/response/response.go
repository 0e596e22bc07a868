// Package response defines the JSON envelope returned by every API endpoint.
package response

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var EmptyRequestBodyResponse = Response{
	Status:  StatusError,
	Error:   "Empty Request Body",
	Message: "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	Status:  StatusError,
	Error:   "Bad Request",
	Message: "The request could not be processed. Please check your input.",
}

var ResourceNotFoundResponse = Response{
	Status:  StatusError,
	Error:   "Resource Not Found",
	Message: "The requested resource was not found.",
}

var UnauthorizedResponse = Response{
	Status:  StatusError,
	Error:   "Unauthorized",
	Message: "The provided API key is not valid.",
}

var ServerErrorResponse = Response{
	Status:  StatusError,
	Error:   "Server Error",
	Message: "An internal server error occurred. Please try again later.",
}

type Response struct {
	Status  string            `json:"status"`
	Error   string            `json:"error,omitempty"`
	Message string            `json:"message"`
	Details []validationError `json:"details,omitempty"`
	Data    any               `json:"data,omitempty"`
}

type validationError struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Issue string `json:"issue"`
}

func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

// ValidationErrorResponse builds an error envelope carrying one detail entry
// per failed field.
func ValidationErrorResponse(err error) Response {
	return Response{
		Status:  StatusError,
		Error:   "Validation Error",
		Message: "The provided data is invalid. Please check the details.",
		Details: getValidationErrors(err),
	}
}

func getValidationErrors(err error) []validationError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	errs := make([]validationError, 0, len(validationErrs))

	for _, fieldErr := range validationErrs {
		value, _ := fieldErr.Value().(string)

		e := validationError{
			Field: fieldErr.Field(),
			Value: value,
		}

		switch fieldErr.Tag() {
		case "required":
			e.Issue = "This field is required."
		case "url":
			e.Issue = "Invalid url."
		case "authority":
			e.Issue = "The url must be absolute and include a host."
		default:
			e.Issue = "Invalid value."
		}

		errs = append(errs, e)
	}

	return errs
}
