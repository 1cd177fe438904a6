package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Schedule struct {
	ID           int
	MovieID      int
	TheaterID    int
	Date         string
	Time         string
	PricePerSeat decimal.Decimal
}

// Day returns the calendar date of the schedule in loc.
func (s Schedule) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s.Date, loc)
}

// Matches reports whether the schedule is the one identified by date and time.
func (s Schedule) Matches(date, showtime string) bool {
	return s.Date == date && s.Time == showtime
}

type ScheduleRepository interface {
	GetByMovieID(ctx context.Context, movieID int) ([]Schedule, error)
}

// FindSchedule returns the first schedule matching date and time, in catalog order.
func FindSchedule(schedules []Schedule, date, showtime string) (Schedule, bool) {
	for _, s := range schedules {
		if s.Matches(date, showtime) {
			return s, true
		}
	}

	return Schedule{}, false
}
