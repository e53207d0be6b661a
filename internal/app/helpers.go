package app

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/metinatakli/cinex-booking/internal/jsonutil"
	appmiddleware "github.com/metinatakli/cinex-booking/internal/middleware"
)

func (app *Application) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	return jsonutil.WriteJSON(w, status, data, headers)
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return jsonutil.ReadJSON(w, r, dst)
}

func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	return appmiddleware.LoggerFromContext(r.Context(), app.logger)
}

// background runs fn outside the request and recovers a panic in it.
func (app *Application) background(logger *slog.Logger, fn func()) {
	app.wg.Add(1)

	go func() {
		defer app.wg.Done()

		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic occurred in background task", "panic", err)
			}
		}()

		fn()
	}()
}

// value dereferences an optional query parameter.
func value(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func seatMapPath(showtimeID string) string {
	return "/showtimes/" + url.PathEscape(showtimeID) + "/seats"
}

// safeReturnTo keeps redirects on this site: only absolute paths are
// accepted, anything else falls back to "/".
func safeReturnTo(returnTo string) string {
	if !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") || strings.Contains(returnTo, "\\") {
		return "/"
	}

	return returnTo
}
