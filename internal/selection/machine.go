// Package selection holds the theater, date, time and seat selection of one
// movie-detail session and keeps its derived fields consistent.
//
// A Machine has exactly one writer and is not safe for concurrent use.
// Booked seats are fetched outside the machine; every change of the active
// showtime bumps a generation counter and only a result carrying the current
// generation is applied.
package selection

import (
	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/shopspring/decimal"
)

type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseSubmitting
	PhaseConfirmed
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseSubmitting:
		return "submitting"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type State struct {
	Phase          Phase
	Theater        *domain.Theater
	Date           string
	Time           string
	SelectedSeats  []domain.SeatID
	BookedSeats    []domain.SeatID
	Refreshing     bool
	TotalPrice     decimal.Decimal
	ActiveSchedule *domain.Schedule
	Error          error
	LastResult     *domain.BookingResult
}

// Refresh describes the booked-seat fetch a mutation requires. When Needed is
// false the machine already settled the booked seats itself.
type Refresh struct {
	Generation uint64
	ScheduleID int
	Needed     bool
}

// Draft is the selection handed to the booking submitter.
type Draft struct {
	Schedule domain.Schedule
	Seats    []domain.SeatID
}

type Machine struct {
	state      State
	theaters   []domain.Theater
	schedules  []domain.Schedule
	generation uint64
}

func New() *Machine {
	return &Machine{
		state: State{
			Phase:      PhaseLoading,
			TotalPrice: decimal.Zero,
		},
	}
}

// Load installs the catalog data and applies the default selection: the
// first theater and the date and time of the first schedule, in catalog order.
func (m *Machine) Load(theaters []domain.Theater, schedules []domain.Schedule) Refresh {
	m.theaters = append([]domain.Theater(nil), theaters...)
	m.schedules = append([]domain.Schedule(nil), schedules...)

	m.state.Phase = PhaseReady
	m.state.Error = nil
	m.state.Theater = nil
	m.state.Date = ""
	m.state.Time = ""
	m.state.SelectedSeats = nil
	m.state.BookedSeats = nil

	if len(m.theaters) > 0 {
		theater := m.theaters[0]
		m.state.Theater = &theater
	}

	if len(m.schedules) > 0 {
		m.state.Date = m.schedules[0].Date
		m.state.Time = m.schedules[0].Time
	}

	r := m.refresh()
	m.recomputePrice()

	return r
}

// LoadFailed records a catalog failure. Previously loaded data stays in place.
func (m *Machine) LoadFailed(err error) {
	m.state.Error = err

	if m.state.Phase == PhaseLoading {
		m.state.Phase = PhaseReady
	}
}

func (m *Machine) Theaters() []domain.Theater {
	return append([]domain.Theater(nil), m.theaters...)
}

func (m *Machine) Schedules() []domain.Schedule {
	return append([]domain.Schedule(nil), m.schedules...)
}

// FindTheater looks a theater up in the loaded catalog.
func (m *Machine) FindTheater(id int) (domain.Theater, bool) {
	for _, t := range m.theaters {
		if t.ID == id {
			return t, true
		}
	}

	return domain.Theater{}, false
}

// SelectTheater switches theaters. Re-selecting the current theater keeps the
// seat selection.
func (m *Machine) SelectTheater(theater domain.Theater) error {
	if err := m.checkMutable(); err != nil {
		return err
	}

	if m.state.Theater != nil && m.state.Theater.ID == theater.ID {
		return nil
	}

	m.touch()

	m.state.Theater = &theater
	m.state.SelectedSeats = nil
	m.recomputePrice()

	return nil
}

func (m *Machine) SelectDate(date string) (Refresh, error) {
	if err := m.checkMutable(); err != nil {
		return Refresh{}, err
	}

	m.touch()

	m.state.Date = date
	m.state.SelectedSeats = nil
	r := m.refresh()
	m.recomputePrice()

	return r, nil
}

func (m *Machine) SelectTime(showtime string) (Refresh, error) {
	if err := m.checkMutable(); err != nil {
		return Refresh{}, err
	}

	m.touch()

	m.state.Time = showtime
	m.state.SelectedSeats = nil
	r := m.refresh()
	m.recomputePrice()

	return r, nil
}

// ToggleSeat flips the seat's membership in the selection. Booked seats are
// rejected with domain.ErrSeatBooked and leave the state unchanged.
func (m *Machine) ToggleSeat(seat domain.SeatID) (bool, error) {
	if err := m.checkMutable(); err != nil {
		return false, err
	}

	if domain.ContainsSeat(m.state.BookedSeats, seat) {
		return false, domain.ErrSeatBooked
	}

	m.touch()

	selected := false
	if i := indexOf(m.state.SelectedSeats, seat); i >= 0 {
		m.state.SelectedSeats = append(m.state.SelectedSeats[:i:i], m.state.SelectedSeats[i+1:]...)
	} else {
		m.state.SelectedSeats = append(m.state.SelectedSeats, seat)
		selected = true
	}

	m.recomputePrice()

	return selected, nil
}

// ApplyBookedSeats installs the result of a booked-seat fetch. Results of a
// superseded generation are discarded and false is returned. Selected seats
// that turn out to be booked are dropped from the selection. A failed
// booking keeps its error.
func (m *Machine) ApplyBookedSeats(generation uint64, seats []domain.SeatID) bool {
	if generation != m.generation {
		return false
	}

	m.state.BookedSeats = append([]domain.SeatID(nil), seats...)
	m.state.Refreshing = false

	// The fetch may have started before the last submit landed.
	if last := m.state.LastResult; last != nil && m.state.ActiveSchedule != nil && last.Request.ScheduleID == m.state.ActiveSchedule.ID {
		for _, seat := range last.Created {
			if !domain.ContainsSeat(m.state.BookedSeats, seat) {
				m.state.BookedSeats = append(m.state.BookedSeats, seat)
			}
		}
	}

	if m.state.Phase != PhaseFailed {
		m.state.Error = nil
	}

	m.dropBookedSelections()
	m.recomputePrice()

	return true
}

// RefreshFailed records a failed fetch of the current generation. The booked
// seats already known are kept.
func (m *Machine) RefreshFailed(generation uint64, err error) bool {
	if generation != m.generation {
		return false
	}

	m.state.Refreshing = false

	if m.state.Phase != PhaseFailed {
		m.state.Error = err
	}

	return true
}

// BeginSubmit freezes the selection for submission.
func (m *Machine) BeginSubmit() (Draft, error) {
	if err := m.checkMutable(); err != nil {
		return Draft{}, err
	}

	if len(m.state.SelectedSeats) == 0 {
		return Draft{}, domain.ErrNoSeatsSelected
	}

	if m.state.ActiveSchedule == nil {
		return Draft{}, domain.ErrNoActiveSchedule
	}

	m.state.Phase = PhaseSubmitting
	m.state.Error = nil

	return Draft{
		Schedule: *m.state.ActiveSchedule,
		Seats:    append([]domain.SeatID(nil), m.state.SelectedSeats...),
	}, nil
}

// BeginRetry freezes the state for re-sending the failed seats of the last
// partial booking.
func (m *Machine) BeginRetry() (domain.BookingResult, error) {
	if err := m.checkMutable(); err != nil {
		return domain.BookingResult{}, err
	}

	last := m.state.LastResult
	if last == nil || last.Outcome != domain.BookingPartial || len(last.Failed) == 0 {
		return domain.BookingResult{}, domain.ErrNothingToRetry
	}

	m.state.Phase = PhaseSubmitting
	m.state.Error = nil

	return *last, nil
}

// FinishSubmit records the submitter's result. Seats that received a booking
// detail become booked for the active schedule.
func (m *Machine) FinishSubmit(result domain.BookingResult) {
	if m.state.Phase != PhaseSubmitting {
		return
	}

	m.state.LastResult = &result

	if m.state.ActiveSchedule != nil && m.state.ActiveSchedule.ID == result.Request.ScheduleID {
		for _, seat := range result.Created {
			if !domain.ContainsSeat(m.state.BookedSeats, seat) {
				m.state.BookedSeats = append(m.state.BookedSeats, seat)
			}
		}
		m.dropBookedSelections()
		m.recomputePrice()
	}

	if result.Outcome == domain.BookingConfirmed {
		m.state.Phase = PhaseConfirmed
		return
	}

	m.state.Phase = PhaseFailed
	m.state.Error = result.Err
}

// Snapshot returns a copy of the current state that shares no memory with the
// machine.
func (m *Machine) Snapshot() State {
	s := m.state

	s.SelectedSeats = append([]domain.SeatID(nil), m.state.SelectedSeats...)
	s.BookedSeats = append([]domain.SeatID(nil), m.state.BookedSeats...)

	if m.state.Theater != nil {
		theater := *m.state.Theater
		s.Theater = &theater
	}

	if m.state.ActiveSchedule != nil {
		schedule := *m.state.ActiveSchedule
		s.ActiveSchedule = &schedule
	}

	if m.state.LastResult != nil {
		result := *m.state.LastResult
		s.LastResult = &result
	}

	return s
}

func (m *Machine) Generation() uint64 {
	return m.generation
}

func (m *Machine) checkMutable() error {
	switch m.state.Phase {
	case PhaseReady, PhaseFailed:
		return nil
	case PhaseConfirmed:
		return domain.ErrSessionClosed
	default:
		return domain.ErrBusy
	}
}

func (m *Machine) touch() {
	m.state.Phase = PhaseReady
	m.state.Error = nil
}

// refresh re-resolves the active schedule and starts a new generation.
func (m *Machine) refresh() Refresh {
	m.generation++

	schedule, ok := domain.FindSchedule(m.schedules, m.state.Date, m.state.Time)
	if !ok {
		m.state.ActiveSchedule = nil
		m.state.BookedSeats = nil
		m.state.Refreshing = false

		return Refresh{Generation: m.generation}
	}

	m.state.ActiveSchedule = &schedule
	m.state.Refreshing = true

	return Refresh{
		Generation: m.generation,
		ScheduleID: schedule.ID,
		Needed:     true,
	}
}

func (m *Machine) recomputePrice() {
	if m.state.ActiveSchedule == nil {
		m.state.TotalPrice = decimal.Zero
		return
	}

	count := decimal.NewFromInt(int64(len(m.state.SelectedSeats)))
	m.state.TotalPrice = m.state.ActiveSchedule.PricePerSeat.Mul(count)
}

func (m *Machine) dropBookedSelections() {
	kept := m.state.SelectedSeats[:0:0]

	for _, seat := range m.state.SelectedSeats {
		if !domain.ContainsSeat(m.state.BookedSeats, seat) {
			kept = append(kept, seat)
		}
	}

	m.state.SelectedSeats = kept
}

func indexOf(seats []domain.SeatID, seat domain.SeatID) int {
	for i, v := range seats {
		if v == seat {
			return i
		}
	}

	return -1
}
