// Package seatmap derives seat identifiers from a theater layout.
//
// Columns are lettered A..Z across all sections of a theater, so a layout
// wider than 26 columns loses its trailing columns: they are dropped, not
// wrapped, and the theater's usable capacity shrinks accordingly.
package seatmap

import "github.com/metinatakli/movie-booking/internal/domain"

const maxColumns = 26

// Section is the half-open range of column indexes one section occupies.
type Section struct {
	Index       int
	StartColumn int
	EndColumn   int
}

func (s Section) Letters() []byte {
	letters := make([]byte, 0, s.EndColumn-s.StartColumn)
	for col := s.StartColumn; col < s.EndColumn; col++ {
		letters = append(letters, byte('A'+col))
	}

	return letters
}

// Sections returns the reachable sections of the theater. Sections that start
// beyond the last letter are omitted.
func Sections(theater domain.Theater) []Section {
	if theater.Sections <= 0 || theater.ColumnsPerSection <= 0 {
		return nil
	}

	// Only sections starting at or before Z are reachable.
	reachable := min(theater.Sections, (maxColumns-1)/theater.ColumnsPerSection+1)
	sections := make([]Section, 0, reachable)

	for i := 0; i < reachable; i++ {
		start := i * theater.ColumnsPerSection

		sections = append(sections, Section{
			Index:       i,
			StartColumn: start,
			EndColumn:   min(start+theater.ColumnsPerSection, maxColumns),
		})
	}

	return sections
}

// Generate returns every seat of the theater ordered by section, then column,
// then row.
func Generate(theater domain.Theater) []domain.SeatID {
	seats := make([]domain.SeatID, 0, Capacity(theater))

	for _, section := range Sections(theater) {
		for col := section.StartColumn; col < section.EndColumn; col++ {
			for row := 1; row <= theater.RowsPerSection; row++ {
				seats = append(seats, domain.SeatID{Column: byte('A' + col), Row: row})
			}
		}
	}

	return seats
}

func Capacity(theater domain.Theater) int {
	if theater.RowsPerSection <= 0 {
		return 0
	}

	columns := 0
	for _, section := range Sections(theater) {
		columns += section.EndColumn - section.StartColumn
	}

	return columns * theater.RowsPerSection
}

// Contains reports whether seat is part of the theater's layout.
func Contains(theater domain.Theater, seat domain.SeatID) bool {
	if seat.Row < 1 || seat.Row > theater.RowsPerSection {
		return false
	}

	col := int(seat.Column) - 'A'
	if col < 0 || col >= maxColumns || theater.ColumnsPerSection <= 0 {
		return false
	}

	return col/theater.ColumnsPerSection < theater.Sections
}
