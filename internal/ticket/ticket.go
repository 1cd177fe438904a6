// Package ticket renders the printable ticket of a confirmed booking.
package ticket

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
)

type Ticket struct {
	BookingID int
	Holder    string
	MovieID   int
	Theater   string
	Date      string
	Time      string
	Seats     []domain.SeatID
	Total     decimal.Decimal
}

// Filename is the attachment name used for the ticket.
func (t Ticket) Filename() string {
	return fmt.Sprintf("ticket-%d.pdf", t.BookingID)
}

// Render lays the ticket out on a single A4 page.
func Render(t Ticket) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Ticket #%d", t.BookingID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "MOVIE TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)

	lines := []string{
		fmt.Sprintf("Booking   : #%d", t.BookingID),
		fmt.Sprintf("Name      : %s", fallback(t.Holder, "-")),
		fmt.Sprintf("Theater   : %s", fallback(t.Theater, "-")),
		fmt.Sprintf("Showtime  : %s %s", t.Date, t.Time),
		fmt.Sprintf("Seats     : %s", strings.Join(domain.SeatStrings(t.Seats), ", ")),
		fmt.Sprintf("Total     : %s", t.Total.StringFixed(2)),
	}

	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Present this ticket at the entrance. One seat admits one person.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket %d: %w", t.BookingID, err)
	}

	return buf.Bytes(), nil
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}

	return v
}
