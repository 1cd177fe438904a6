package integration_test

import "time"

const (
	TestUserId    = 1
	TestUserName  = "John Doe"
	TestUserEmail = "test@example.com"

	TestMovieId = 1
)

// TestScheduleDate keeps seeded schedules in the future so bookings are accepted.
var TestScheduleDate = time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
