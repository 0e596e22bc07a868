package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/k0r-eu/k0r/internal/database"
	"github.com/k0r-eu/k0r/internal/service"
	"github.com/k0r-eu/k0r/internal/shortcode"
	"github.com/k0r-eu/k0r/pkg/response"
)

// ignoredShortCodes are common browser and crawler probe paths. They are
// rejected here so they never reach the store; most of them are not valid
// base-36 anyway, but the fast path keeps bot noise off the query slots.
var ignoredShortCodes = map[string]struct{}{
	"favicon.ico":          {},
	"robots.txt":           {},
	"sitemap.xml":          {},
	"index.html":           {},
	"apple-touch-icon.png": {},
}

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// urlRequest represents the request payload for shortening a URL. The key
// field carries the caller's API key; title and description are optional and
// default to the empty string.
type urlRequest struct {
	URL         string `json:"url" validate:"required,url,authority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Key         string `json:"key" validate:"required"`
}

// shortCodeResponse represents the response payload for a successful shorten
// operation.
type shortCodeResponse struct {
	ShortCode string `json:"short_code"`
}

// handleRedirect handles GET requests for a short code and redirects to the
// original URL.
//
// Malformed codes and codes with no matching record both surface as a plain
// 404: to a probing client they are indistinguishable, and neither is worth
// more than a debug log line.
func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "shortCode")

		if _, ok := ignoredShortCodes[code]; ok {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.ResourceNotFoundResponse)
			return
		}

		url, err := svc.ResolveShortCode(r.Context(), code)
		if err != nil {
			if errors.Is(err, shortcode.ErrInvalidCode) || errors.Is(err, database.ErrURLNotFound) {
				// Expected, frequent outcome (bots probing random paths);
				// not worth more than a debug field on the request log.
				httplog.LogEntrySetField(r.Context(), "short_code", slog.StringValue(code))

				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, url.URL, http.StatusMovedPermanently)
	}
}

// handleShortenURL handles POST requests to shorten a URL.
//
// The URL must be absolute with an authority component; well-formedness is
// checked here, before the core is invoked. The API key is passed through
// unchanged and resolved by the store.
func handleShortenURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleShortenURL"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req urlRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		code, err := svc.ShortenURL(r.Context(), service.ShortenParams{
			URL:         req.URL,
			Title:       req.Title,
			Description: req.Description,
			APIKey:      req.Key,
		})
		if err != nil {
			if errors.Is(err, database.ErrUnauthorized) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.UnauthorizedResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, shortCodeResponse{ShortCode: code}))
	}
}
