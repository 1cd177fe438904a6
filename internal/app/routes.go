package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(app.requestLogger)
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)
	r.Use(app.metrics.instrument)
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/healthcheck", app.GetHealth)
	r.Method(http.MethodGet, "/metrics", app.metrics.handler())

	r.Post("/movies/{movieId}/booking-sessions", app.CreateBookingSession)

	r.Route("/booking-sessions/{sessionId}", func(r chi.Router) {
		r.Get("/", app.GetBookingSession)
		r.Delete("/", app.DeleteBookingSession)
		r.Put("/theater", app.SelectTheater)
		r.Put("/date", app.SelectDate)
		r.Put("/time", app.SelectTime)
		r.Post("/seats/toggle", app.ToggleSeat)

		r.With(app.requireAuthentication).Route("/booking", func(r chi.Router) {
			r.Post("/", app.SubmitBooking)
			r.Post("/retry", app.RetryBooking)
			r.Get("/ticket", app.GetTicket)
		})
	})

	return r
}
