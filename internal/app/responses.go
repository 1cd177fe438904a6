package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/metinatakli/movie-booking/internal/orchestrator"
	"github.com/metinatakli/movie-booking/internal/seatmap"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

type TheaterResponse struct {
	Id                int    `json:"id"`
	Name              string `json:"name"`
	Sections          int    `json:"sections"`
	ColumnsPerSection int    `json:"columnsPerSection"`
	RowsPerSection    int    `json:"rowsPerSection"`
}

type ScheduleResponse struct {
	Id           int                `json:"id"`
	TheaterId    int                `json:"theaterId"`
	Date         openapi_types.Date `json:"date"`
	Time         string             `json:"time"`
	PricePerSeat decimal.Decimal    `json:"pricePerSeat"`
}

type GenreResponse struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

type SectionResponse struct {
	Index   int      `json:"index"`
	Columns []string `json:"columns"`
}

type SeatMapResponse struct {
	Rows     int               `json:"rows"`
	Sections []SectionResponse `json:"sections"`
	Seats    []string          `json:"seats"`
}

type SessionErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type BookingResultResponse struct {
	Outcome   string                `json:"outcome"`
	BookingId int                   `json:"bookingId,omitempty"`
	Created   []string              `json:"created"`
	Failed    []string              `json:"failed"`
	Total     decimal.Decimal       `json:"total"`
	Error     *SessionErrorResponse `json:"error,omitempty"`
}

type BookingSessionResponse struct {
	Id             uuid.UUID              `json:"id"`
	MovieId        int                    `json:"movieId"`
	Phase          string                 `json:"phase"`
	Theater        *TheaterResponse       `json:"theater"`
	Date           *openapi_types.Date    `json:"date"`
	Time           string                 `json:"time"`
	SelectedSeats  []string               `json:"selectedSeats"`
	BookedSeats    []string               `json:"bookedSeats"`
	Refreshing     bool                   `json:"refreshing"`
	TotalPrice     decimal.Decimal        `json:"totalPrice"`
	ActiveSchedule *ScheduleResponse      `json:"activeSchedule"`
	Error          *SessionErrorResponse  `json:"error"`
	LastBooking    *BookingResultResponse `json:"lastBooking,omitempty"`
	Genres         []GenreResponse        `json:"genres"`
	Theaters       []TheaterResponse      `json:"theaters"`
	Schedules      []ScheduleResponse     `json:"schedules"`
	SeatMap        *SeatMapResponse       `json:"seatMap"`
}

func toBookingSessionResponse(id uuid.UUID, session *orchestrator.Session) BookingSessionResponse {
	state := session.State()

	resp := BookingSessionResponse{
		Id:            id,
		MovieId:       session.MovieID(),
		Phase:         state.Phase.String(),
		Date:          toDate(state.Date),
		Time:          state.Time,
		SelectedSeats: domain.SeatStrings(state.SelectedSeats),
		BookedSeats:   domain.SeatStrings(state.BookedSeats),
		Refreshing:    state.Refreshing,
		TotalPrice:    state.TotalPrice,
		Error:         toSessionError(state.Error),
		Genres:        []GenreResponse{},
		Theaters:      []TheaterResponse{},
		Schedules:     []ScheduleResponse{},
	}

	if state.Theater != nil {
		theater := toTheaterResponse(*state.Theater)
		resp.Theater = &theater
		resp.SeatMap = toSeatMapResponse(*state.Theater)
	}

	if state.ActiveSchedule != nil {
		schedule := toScheduleResponse(*state.ActiveSchedule)
		resp.ActiveSchedule = &schedule
	}

	if state.LastResult != nil {
		result := toBookingResultResponse(*state.LastResult)
		resp.LastBooking = &result
	}

	for _, g := range session.Genres() {
		resp.Genres = append(resp.Genres, GenreResponse{Id: g.ID, Name: g.Name})
	}

	for _, t := range session.Theaters() {
		resp.Theaters = append(resp.Theaters, toTheaterResponse(t))
	}

	for _, s := range session.Schedules() {
		resp.Schedules = append(resp.Schedules, toScheduleResponse(s))
	}

	return resp
}

func toTheaterResponse(t domain.Theater) TheaterResponse {
	return TheaterResponse{
		Id:                t.ID,
		Name:              t.Name,
		Sections:          t.Sections,
		ColumnsPerSection: t.ColumnsPerSection,
		RowsPerSection:    t.RowsPerSection,
	}
}

func toScheduleResponse(s domain.Schedule) ScheduleResponse {
	resp := ScheduleResponse{
		Id:           s.ID,
		TheaterId:    s.TheaterID,
		Time:         s.Time,
		PricePerSeat: s.PricePerSeat,
	}

	if date := toDate(s.Date); date != nil {
		resp.Date = *date
	}

	return resp
}

// toDate is nil until a date is selected.
func toDate(date string) *openapi_types.Date {
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return nil
	}

	return &openapi_types.Date{Time: day}
}

func toSeatMapResponse(t domain.Theater) *SeatMapResponse {
	resp := &SeatMapResponse{
		Rows:     t.RowsPerSection,
		Sections: []SectionResponse{},
		Seats:    domain.SeatStrings(seatmap.Generate(t)),
	}

	for _, section := range seatmap.Sections(t) {
		letters := section.Letters()
		columns := make([]string, len(letters))
		for i, l := range letters {
			columns[i] = string(l)
		}

		resp.Sections = append(resp.Sections, SectionResponse{Index: section.Index, Columns: columns})
	}

	return resp
}

func toBookingResultResponse(result domain.BookingResult) BookingResultResponse {
	total := decimal.Zero
	for _, seat := range result.Created {
		if price, ok := result.PriceOf(seat); ok {
			total = total.Add(price)
		}
	}

	return BookingResultResponse{
		Outcome:   result.Outcome.String(),
		BookingId: result.BookingID,
		Created:   domain.SeatStrings(result.Created),
		Failed:    domain.SeatStrings(result.Failed),
		Total:     total,
		Error:     toSessionError(result.Err),
	}
}

func toSessionError(err error) *SessionErrorResponse {
	if err == nil {
		return nil
	}

	return &SessionErrorResponse{
		Kind:    domain.KindOf(err).String(),
		Message: err.Error(),
	}
}
