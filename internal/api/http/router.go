// Package http adapts the shortener core to its HTTP boundary: it extracts
// short codes from request paths, validates write payloads before they reach
// the core and maps domain errors onto status codes.
package http

import (
	"context"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/k0r-eu/k0r/internal/models"
	"github.com/k0r-eu/k0r/internal/service"
)

// URLService defines the interface for the core shortening operations the
// HTTP layer depends on.
type URLService interface {
	// ResolveShortCode translates a short code into its URL record.
	ResolveShortCode(ctx context.Context, code string) (*models.URL, error)

	// ShortenURL stores a validated URL under the given API key and returns
	// the new short code.
	ShortenURL(ctx context.Context, params service.ShortenParams) (string, error)
}

// getValidate initializes the request validator. Field names in validation
// details follow the JSON tags, and the authority tag enforces that a URL is
// absolute: bare paths, relative references and data URLs are rejected here,
// before the core is invoked.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	//nolint:errcheck // registration only fails for an empty tag
	validate.RegisterValidation("authority", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && u.Host != ""
	})

	return validate
}

// NewRouter initializes the HTTP router with all routes and middleware.
func NewRouter(logger *httplog.Logger, urlSvc URLService) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/{shortCode}", handleRedirect(urlSvc))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		validate := getValidate()

		r.Get("/ping", handlePing)
		r.Post("/urls", handleShortenURL(urlSvc, validate))
	})

	return r
}
