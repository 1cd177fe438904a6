package validator

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type toggleInput struct {
	Seat string `validate:"required,seat"`
}

type scheduleInput struct {
	Date openapi_types.Date `validate:"required"`
	Time string             `validate:"required,showtime"`
}

func TestSeatValidation(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		seat  string
		valid bool
	}{
		{"A1", true},
		{"Z40", true},
		{"a1", false},
		{"A0", false},
		{"A", false},
		{"1A", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.seat, func(t *testing.T) {
			err := v.Struct(toggleInput{Seat: tt.seat})
			assert.Equal(t, tt.valid, err == nil, "err = %v", err)
		})
	}
}

func TestScheduleValidation(t *testing.T) {
	v := NewValidator()
	day := openapi_types.Date{Time: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)}

	tests := []struct {
		name    string
		input   scheduleInput
		wantTag string
	}{
		{name: "valid", input: scheduleInput{Date: day, Time: "18:00"}},
		{name: "missing date", input: scheduleInput{Time: "18:00"}, wantTag: "required"},
		{name: "bad time", input: scheduleInput{Date: day, Time: "6pm"}, wantTag: "showtime"},
		{name: "missing time", input: scheduleInput{Date: day}, wantTag: "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}

			var validationErrs validator.ValidationErrors
			require.True(t, errors.As(err, &validationErrs))
			require.Len(t, validationErrs, 1)
			assert.Equal(t, tt.wantTag, validationErrs[0].Tag())
			assert.NotEqual(t, "is invalid", ValidationMessage(validationErrs[0]))
		})
	}
}
