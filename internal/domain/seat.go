package domain

import (
	"fmt"
	"strconv"
)

// SeatID identifies a seat by its column letter and 1-based row, e.g. "C7".
type SeatID struct {
	Column byte
	Row    int
}

func (s SeatID) String() string {
	return fmt.Sprintf("%c%d", s.Column, s.Row)
}

func (s SeatID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SeatID) UnmarshalText(text []byte) error {
	seat, err := ParseSeatID(string(text))
	if err != nil {
		return err
	}

	*s = seat

	return nil
}

func ParseSeatID(s string) (SeatID, error) {
	if len(s) < 2 {
		return SeatID{}, fmt.Errorf("invalid seat %q", s)
	}

	column := s[0]
	if column < 'A' || column > 'Z' {
		return SeatID{}, fmt.Errorf("invalid seat column in %q", s)
	}

	row, err := strconv.Atoi(s[1:])
	if err != nil || row < 1 || s[1] == '0' || s[1] == '+' {
		return SeatID{}, fmt.Errorf("invalid seat row in %q", s)
	}

	return SeatID{Column: column, Row: row}, nil
}

// ContainsSeat reports whether seat is present in seats.
func ContainsSeat(seats []SeatID, seat SeatID) bool {
	for _, v := range seats {
		if v == seat {
			return true
		}
	}

	return false
}

func SeatStrings(seats []SeatID) []string {
	out := make([]string, len(seats))
	for i, seat := range seats {
		out[i] = seat.String()
	}

	return out
}
