package web

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// InProcessBaseURL is the base URL page renderers use when the API is served
// by the same fiber app. The host is never resolved.
const InProcessBaseURL = "http://psrec.internal"

// AppTransport is an http.RoundTripper that hands requests straight to a
// fiber app instead of dialing.
type AppTransport struct {
	app *fiber.App
}

func NewAppTransport(app *fiber.App) *AppTransport {
	return &AppTransport{app: app}
}

func (t *AppTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		defer req.Body.Close()
	}
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	return t.app.Test(req.Clone(req.Context()), -1)
}
