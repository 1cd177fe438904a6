package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/metinatakli/movie-booking/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RepositoryTestSuite struct {
	BaseSuite
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) SetupTest() {
	resetState(s.T(), s.app, TestScheduleDate)
	executeSQLFile(s.T(), s.app.DB, "testdata/bookings_up.sql")
}

func (s *RepositoryTestSuite) TestGenresOfMovie() {
	repo := repository.NewPostgresGenreRepository(s.app.DB)

	genres, err := repo.GetByMovieID(context.Background(), TestMovieId)
	s.Require().NoError(err)
	s.Equal([]domain.Genre{{ID: 1, Name: "Action"}, {ID: 3, Name: "Comedy"}, {ID: 2, Name: "Drama"}}, genres)

	genres, err = repo.GetByMovieID(context.Background(), 999)
	s.Require().NoError(err)
	s.NotNil(genres)
	s.Empty(genres)
}

func (s *RepositoryTestSuite) TestTheatersShowingMovie() {
	repo := repository.NewPostgresTheaterRepository(s.app.DB)

	theaters, err := repo.GetByMovieID(context.Background(), TestMovieId)
	s.Require().NoError(err)
	s.Equal([]domain.Theater{
		{ID: 1, Name: "Test Theater 1", Sections: 2, ColumnsPerSection: 3, RowsPerSection: 4},
		{ID: 2, Name: "Test Theater 2", Sections: 1, ColumnsPerSection: 2, RowsPerSection: 2},
	}, theaters)

	theaters, err = repo.GetByMovieID(context.Background(), 2)
	s.Require().NoError(err)
	s.Empty(theaters)
}

func (s *RepositoryTestSuite) TestSchedulesOfMovie() {
	repo := repository.NewPostgresScheduleRepository(s.app.DB)

	schedules, err := repo.GetByMovieID(context.Background(), TestMovieId)
	s.Require().NoError(err)
	s.Require().Len(schedules, 3)

	s.Equal(1, schedules[0].ID)
	s.Equal(1, schedules[0].TheaterID)
	s.Equal(TestScheduleDate, schedules[0].Date)
	s.Equal("18:00", schedules[0].Time)
	s.True(decimal.RequireFromString("12.50").Equal(schedules[0].PricePerSeat))

	s.Equal("21:00", schedules[1].Time)
	s.Equal(2, schedules[2].TheaterID)
}

func (s *RepositoryTestSuite) TestBookedSeats() {
	repo := repository.NewPostgresBookingRepository(s.app.DB)

	seats, err := repo.GetBookedSeats(context.Background(), 1)
	s.Require().NoError(err)
	s.Equal([]string{"B2", "A1"}, domain.SeatStrings(seats))

	seats, err = repo.GetBookedSeats(context.Background(), 2)
	s.Require().NoError(err)
	s.NotNil(seats)
	s.Empty(seats)
}

func (s *RepositoryTestSuite) TestCreateBookingAndDetails() {
	ctx := context.Background()
	repo := repository.NewPostgresBookingRepository(s.app.DB)
	price := decimal.RequireFromString("15.00")

	id, err := repo.Create(ctx, TestUserId, 2, time.Now())
	s.Require().NoError(err)
	s.Positive(id)

	s.Require().NoError(repo.CreateDetail(ctx, id, domain.SeatID{Column: 'C', Row: 3}, price))
	s.Require().NoError(repo.CreateDetail(ctx, id, domain.SeatID{Column: 'A', Row: 1}, price))

	err = repo.CreateDetail(ctx, id, domain.SeatID{Column: 'C', Row: 3}, price)
	s.ErrorIs(err, domain.ErrDuplicateSeat)

	seats, err := repo.GetBookedSeats(ctx, 2)
	s.Require().NoError(err)
	s.Equal([]string{"C3", "A1"}, domain.SeatStrings(seats))

	var total decimal.Decimal
	err = s.app.DB.QueryRow(ctx, "SELECT SUM(price) FROM booking_details WHERE booking_id = $1", id).Scan(&total)
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("30").Equal(total))
}

func (s *RepositoryTestSuite) TestCreateBookingForUnknownSchedule() {
	repo := repository.NewPostgresBookingRepository(s.app.DB)

	_, err := repo.Create(context.Background(), TestUserId, 999, time.Now())
	s.ErrorIs(err, domain.ErrRecordNotFound)

	err = repo.CreateDetail(context.Background(), 999, domain.SeatID{Column: 'A', Row: 1}, decimal.NewFromInt(1))
	s.ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestGetUser() {
	repo := repository.NewPostgresUserRepository(s.app.DB)

	user, err := repo.GetByID(context.Background(), TestUserId)
	s.Require().NoError(err)
	s.Equal(&domain.User{ID: TestUserId, FullName: TestUserName, Email: TestUserEmail}, user)

	_, err = repo.GetByID(context.Background(), 999)
	s.ErrorIs(err, domain.ErrUserNotFound)
}
