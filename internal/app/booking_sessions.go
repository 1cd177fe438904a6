package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/metinatakli/movie-booking/internal/events"
	"github.com/metinatakli/movie-booking/internal/mailer"
	"github.com/metinatakli/movie-booking/internal/orchestrator"
	"github.com/metinatakli/movie-booking/internal/ticket"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// submitTimeout bounds a booking write. Once started it runs to completion
// even if the client goes away.
const submitTimeout = 10 * time.Second

type SelectTheaterRequest struct {
	TheaterId int `json:"theaterId" validate:"required,gt=0"`
}

type SelectDateRequest struct {
	Date openapi_types.Date `json:"date" validate:"required"`
}

type SelectTimeRequest struct {
	Time string `json:"time" validate:"required,showtime"`
}

type ToggleSeatRequest struct {
	Seat string `json:"seat" validate:"required,seat"`
}

func (app *Application) CreateBookingSession(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	movieID, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	session := orchestrator.New(movieID, app.gateway, app.submitter, app.logger)

	err = session.Load(r.Context())
	if err != nil {
		session.Close()
		logger.Warn("failed to load booking session", "movie_id", movieID, "error", err)
		app.domainErrorResponse(w, r, err)
		return
	}

	id := app.sessions.Add(session)

	logger.Info("booking session created", "session_id", id.String(), "movie_id", movieID)

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/booking-sessions/%s", id))

	err = app.writeJSON(w, http.StatusCreated, toBookingSessionResponse(id, session), headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingSession(w http.ResponseWriter, r *http.Request) {
	id, session, ok := app.lookupSession(w, r)
	if !ok {
		return
	}

	app.writeSession(w, r, id, session)
}

func (app *Application) DeleteBookingSession(w http.ResponseWriter, r *http.Request) {
	id, err := app.readSessionIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if !app.sessions.Remove(id) {
		app.notFoundResponse(w, r)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) SelectTheater(w http.ResponseWriter, r *http.Request) {
	var input SelectTheaterRequest

	id, session, ok := app.lookupSessionWithInput(w, r, &input)
	if !ok {
		return
	}

	err := session.SelectTheater(r.Context(), input.TheaterId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.writeSession(w, r, id, session)
}

func (app *Application) SelectDate(w http.ResponseWriter, r *http.Request) {
	var input SelectDateRequest

	id, session, ok := app.lookupSessionWithInput(w, r, &input)
	if !ok {
		return
	}

	err := session.SelectDate(r.Context(), input.Date.Format(openapi_types.DateFormat))
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.writeSession(w, r, id, session)
}

func (app *Application) SelectTime(w http.ResponseWriter, r *http.Request) {
	var input SelectTimeRequest

	id, session, ok := app.lookupSessionWithInput(w, r, &input)
	if !ok {
		return
	}

	err := session.SelectTime(r.Context(), input.Time)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.writeSession(w, r, id, session)
}

func (app *Application) ToggleSeat(w http.ResponseWriter, r *http.Request) {
	var input ToggleSeatRequest

	id, session, ok := app.lookupSessionWithInput(w, r, &input)
	if !ok {
		return
	}

	seat, err := domain.ParseSeatID(input.Seat)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	_, err = session.ToggleSeat(r.Context(), seat)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.writeSession(w, r, id, session)
}

func (app *Application) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	_, session, ok := app.lookupSession(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), submitTimeout)
	defer cancel()

	result, err := session.Submit(ctx)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.bookingResponse(w, r, session, result)
}

func (app *Application) RetryBooking(w http.ResponseWriter, r *http.Request) {
	_, session, ok := app.lookupSession(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), submitTimeout)
	defer cancel()

	result, err := session.RetryFailed(ctx)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.bookingResponse(w, r, session, result)
}

// GetTicket renders the ticket of the session's confirmed booking for the
// user who made it.
func (app *Application) GetTicket(w http.ResponseWriter, r *http.Request) {
	_, session, ok := app.lookupSession(w, r)
	if !ok {
		return
	}

	userId := app.contextGetUserId(r)

	last := session.State().LastResult
	if last == nil || last.Outcome != domain.BookingConfirmed || last.Request.UserID != userId {
		app.notFoundResponse(w, r)
		return
	}

	user, err := app.userRepo.GetByID(r.Context(), userId)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	tk := ticketFor(session, *last)
	tk.Holder = user.FullName

	pdf, err := ticket.Render(tk)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tk.Filename()))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(pdf); err != nil {
		app.contextGetLogger(r).Error("failed to write ticket", "error", err, "bookingId", last.BookingID)
	}
}

func (app *Application) bookingResponse(
	w http.ResponseWriter,
	r *http.Request,
	session *orchestrator.Session,
	result domain.BookingResult) {

	logger := app.contextGetLogger(r)

	app.metrics.bookingOutcomes.WithLabelValues(result.Outcome.String()).Inc()
	app.publishBookingEvent(r, session.MovieID(), result)

	var status int

	switch result.Outcome {
	case domain.BookingConfirmed:
		status = http.StatusCreated
		app.sendBookingConfirmation(r, session, result)
	case domain.BookingPartial:
		status = http.StatusAccepted
		logger.Warn("booking partially created",
			"booking_id", result.BookingID,
			"failed_seats", domain.SeatStrings(result.Failed))
	default:
		app.domainErrorResponse(w, r, result.Err)
		return
	}

	err := app.writeJSON(w, status, toBookingResultResponse(result), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) publishBookingEvent(r *http.Request, movieID int, result domain.BookingResult) {
	event, ok := events.NewBookingEvent(movieID, result, time.Now())
	if !ok {
		return
	}

	logger := app.contextGetLogger(r)
	ctx := context.WithoutCancel(r.Context())

	app.background(logger, "publish booking event", func() {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		err := app.publisher.PublishBooking(ctx, event)
		if err != nil {
			logger.Error("failed to publish booking event", "type", event.Type, "booking_id", event.BookingID, "error", err)
		}
	})
}

func (app *Application) sendBookingConfirmation(r *http.Request, session *orchestrator.Session, result domain.BookingResult) {
	logger := app.contextGetLogger(r)
	ctx := context.WithoutCancel(r.Context())
	tk := ticketFor(session, result)

	app.background(logger, "send booking confirmation", func() {
		user, err := app.userRepo.GetByID(ctx, result.Request.UserID)
		if err != nil {
			logger.Error("failed to load user for booking confirmation", "user_id", result.Request.UserID, "error", err)
			return
		}

		tk.Holder = user.FullName

		var attachments []mailer.Attachment

		pdf, err := ticket.Render(tk)
		if err != nil {
			logger.Error("failed to render ticket", "booking_id", result.BookingID, "error", err)
		} else {
			attachments = append(attachments, mailer.Attachment{Filename: tk.Filename(), Content: pdf})
		}

		data := map[string]any{
			"name":      user.FullName,
			"bookingID": result.BookingID,
			"theater":   tk.Theater,
			"date":      tk.Date,
			"time":      tk.Time,
			"seats":     domain.SeatStrings(tk.Seats),
			"total":     tk.Total.StringFixed(2),
		}

		err = app.mailer.Send(user.Email, "booking_confirmation.tmpl", data, attachments...)
		if err != nil {
			logger.Error("failed to send booking confirmation", "booking_id", result.BookingID, "error", err)
			return
		}

		logger.Info("booking confirmation sent", "booking_id", result.BookingID)
	})
}

func (app *Application) lookupSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, *orchestrator.Session, bool) {
	id, err := app.readSessionIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return uuid.Nil, nil, false
	}

	session, ok := app.sessions.Get(id)
	if !ok {
		app.notFoundResponse(w, r)
		return uuid.Nil, nil, false
	}

	return id, session, true
}

// lookupSessionWithInput resolves the session and decodes and validates the
// request body into input.
func (app *Application) lookupSessionWithInput(
	w http.ResponseWriter,
	r *http.Request,
	input any) (uuid.UUID, *orchestrator.Session, bool) {

	id, session, ok := app.lookupSession(w, r)
	if !ok {
		return uuid.Nil, nil, false
	}

	err := app.readJSON(w, r, input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return uuid.Nil, nil, false
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return uuid.Nil, nil, false
	}

	return id, session, true
}

func (app *Application) writeSession(w http.ResponseWriter, r *http.Request, id uuid.UUID, session *orchestrator.Session) {
	err := app.writeJSON(w, http.StatusOK, toBookingSessionResponse(id, session), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ticketFor describes the seats result created. The theater is the one the
// booked schedule plays in.
func ticketFor(session *orchestrator.Session, result domain.BookingResult) ticket.Ticket {
	tk := ticket.Ticket{
		BookingID: result.BookingID,
		MovieID:   session.MovieID(),
		Seats:     result.Created,
		Total:     toBookingResultResponse(result).Total,
	}

	for _, s := range session.Schedules() {
		if s.ID != result.Request.ScheduleID {
			continue
		}

		tk.Date = s.Date
		tk.Time = s.Time

		for _, t := range session.Theaters() {
			if t.ID == s.TheaterID {
				tk.Theater = t.Name
			}
		}
	}

	return tk
}
