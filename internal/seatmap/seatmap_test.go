package seatmap

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name      string
		theater   domain.Theater
		wantCount int
		wantFirst string
		wantLast  string
	}{
		{
			name:      "two sections of twelve columns",
			theater:   domain.Theater{Sections: 2, ColumnsPerSection: 12, RowsPerSection: 10},
			wantCount: 240,
			wantFirst: "A1",
			wantLast:  "X10",
		},
		{
			name:      "single column single row",
			theater:   domain.Theater{Sections: 1, ColumnsPerSection: 1, RowsPerSection: 1},
			wantCount: 1,
			wantFirst: "A1",
			wantLast:  "A1",
		},
		{
			name:      "second section truncated at Z",
			theater:   domain.Theater{Sections: 2, ColumnsPerSection: 20, RowsPerSection: 3},
			wantCount: 26 * 3,
			wantFirst: "A1",
			wantLast:  "Z3",
		},
		{
			name:      "sections beyond Z contribute nothing",
			theater:   domain.Theater{Sections: 5, ColumnsPerSection: 13, RowsPerSection: 2},
			wantCount: 26 * 2,
			wantFirst: "A1",
			wantLast:  "Z2",
		},
		{
			name:      "huge section count",
			theater:   domain.Theater{Sections: math.MaxInt32, ColumnsPerSection: 1, RowsPerSection: 1},
			wantCount: 26,
			wantFirst: "A1",
			wantLast:  "Z1",
		},
		{
			name:      "huge section width",
			theater:   domain.Theater{Sections: 2, ColumnsPerSection: math.MaxInt, RowsPerSection: 5},
			wantCount: 26 * 5,
			wantFirst: "A1",
			wantLast:  "Z5",
		},
		{
			name:      "no rows",
			theater:   domain.Theater{Sections: 2, ColumnsPerSection: 4, RowsPerSection: 0},
			wantCount: 0,
		},
		{
			name:      "no columns",
			theater:   domain.Theater{Sections: 3, ColumnsPerSection: 0, RowsPerSection: 8},
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seats := Generate(tt.theater)

			require.Len(t, seats, tt.wantCount)
			assert.Equal(t, tt.wantCount, Capacity(tt.theater))

			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantFirst, seats[0].String())
				assert.Equal(t, tt.wantLast, seats[len(seats)-1].String())
			}
		})
	}
}

func TestGenerateTwoSectionOrdering(t *testing.T) {
	theater := domain.Theater{ID: 1, Name: "T1", Sections: 2, ColumnsPerSection: 12, RowsPerSection: 10}

	var want []string
	for _, letter := range "ABCDEFGHIJKLMNOPQRSTUVWX" {
		for row := 1; row <= 10; row++ {
			want = append(want, fmt.Sprintf("%c%d", letter, row))
		}
	}

	got := domain.SeatStrings(Generate(theater))

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("seat order mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateIsUniqueAndMatchesCapacity(t *testing.T) {
	for sections := 0; sections <= 6; sections++ {
		for columns := 0; columns <= 30; columns += 3 {
			for rows := 0; rows <= 4; rows++ {
				theater := domain.Theater{Sections: sections, ColumnsPerSection: columns, RowsPerSection: rows}
				seats := Generate(theater)

				want := min(sections*columns, 26) * rows
				require.Lenf(t, seats, want, "theater %+v", theater)

				seen := make(map[domain.SeatID]bool, len(seats))
				for _, seat := range seats {
					require.Falsef(t, seen[seat], "duplicate seat %s in %+v", seat, theater)
					require.Truef(t, Contains(theater, seat), "seat %s outside %+v", seat, theater)
					seen[seat] = true
				}
			}
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	theater := domain.Theater{Sections: 3, ColumnsPerSection: 5, RowsPerSection: 7}

	assert.Equal(t, Generate(theater), Generate(theater))
}

func TestContains(t *testing.T) {
	theater := domain.Theater{Sections: 2, ColumnsPerSection: 3, RowsPerSection: 4}

	tests := []struct {
		seat string
		want bool
	}{
		{"A1", true},
		{"F4", true},
		{"G1", false},
		{"A5", false},
		{"C3", true},
	}

	for _, tt := range tests {
		t.Run(tt.seat, func(t *testing.T) {
			seat, err := domain.ParseSeatID(tt.seat)
			require.NoError(t, err)

			assert.Equal(t, tt.want, Contains(theater, seat))
		})
	}
}

func TestContainsWithOversizedLayout(t *testing.T) {
	theaters := []domain.Theater{
		{Sections: 2, ColumnsPerSection: math.MaxInt, RowsPerSection: 5},
		{Sections: math.MaxInt, ColumnsPerSection: math.MaxInt, RowsPerSection: 5},
		{Sections: math.MaxInt32, ColumnsPerSection: 1, RowsPerSection: 5},
	}

	for _, theater := range theaters {
		for _, seat := range Generate(theater) {
			require.Truef(t, Contains(theater, seat), "seat %s outside %+v", seat, theater)
		}
	}
}

func TestSections(t *testing.T) {
	theater := domain.Theater{Sections: 3, ColumnsPerSection: 10, RowsPerSection: 1}

	want := []Section{
		{Index: 0, StartColumn: 0, EndColumn: 10},
		{Index: 1, StartColumn: 10, EndColumn: 20},
		{Index: 2, StartColumn: 20, EndColumn: 26},
	}

	got := Sections(theater)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "UVWXYZ", string(got[2].Letters()))
}
