package response

import (
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestSuccessResponse(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		data []any
		want Response
	}{
		{
			name: "without data",
			msg:  "Operation successful.",
			want: Response{
				Status:  StatusSuccess,
				Message: "Operation successful.",
			},
		},
		{
			name: "with data",
			msg:  "Operation successful.",
			data: []any{map[string]any{"short_code": "1"}},
			want: Response{
				Status:  StatusSuccess,
				Message: "Operation successful.",
				Data:    map[string]any{"short_code": "1"},
			},
		},
		{
			name: "with multiple data",
			msg:  "Operation successful.",
			data: []any{
				map[string]any{"short_code": "1"},
				map[string]any{"short_code": "2"},
			},
			want: Response{
				Status:  StatusSuccess,
				Message: "Operation successful.",
				Data:    map[string]any{"short_code": "1"},
			},
		},
		{
			name: "with nil data",
			msg:  "Operation successful.",
			data: nil,
			want: Response{
				Status:  StatusSuccess,
				Message: "Operation successful.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuccessResponse(tt.msg, tt.data...)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetValidationErrors(t *testing.T) {
	type req struct {
		URL string `json:"url" validate:"required,url,authority"`
		Key string `json:"key" validate:"required"`
	}

	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := validate.RegisterValidation("authority", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && u.Host != ""
	})
	if err != nil {
		t.Fatalf("Failed to register validation: %v", err)
	}

	tests := []struct {
		name string
		req  req
		want []validationError
	}{
		{
			name: "not a validation error",
			req: req{
				URL: "https://example.com",
				Key: "key",
			},
		},
		{
			name: "missing field",
			req: req{
				URL: "https://example.com",
			},
			want: []validationError{
				{
					Field: "key",
					Value: "",
					Issue: "This field is required.",
				},
			},
		},
		{
			name: "invalid url",
			req: req{
				URL: "not url",
				Key: "key",
			},
			want: []validationError{
				{
					Field: "url",
					Value: "not url",
					Issue: "Invalid url.",
				},
			},
		},
		{
			name: "url without authority",
			req: req{
				URL: "mailto:someone@example.com",
				Key: "key",
			},
			want: []validationError{
				{
					Field: "url",
					Value: "mailto:someone@example.com",
					Issue: "The url must be absolute and include a host.",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.req)
			got := getValidationErrors(err)

			assert.Equal(t, tt.want, got)
		})
	}
}
