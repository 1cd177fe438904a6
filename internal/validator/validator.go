package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/movie-booking/internal/domain"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("seat", validateSeat)
	validator.RegisterValidation("showtime", validateShowtime)

	return validator
}

func validateSeat(fl validator.FieldLevel) bool {
	_, err := domain.ParseSeatID(fl.Field().String())
	return err == nil
}

func validateShowtime(fl validator.FieldLevel) bool {
	_, err := time.Parse(domain.TimeLayout, fl.Field().String())
	return err == nil
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "seat":
		return "must be a seat like A1: a column letter A-Z followed by a row number"
	case "showtime":
		return "must be a time in HH:MM format"
	default:
		return "is invalid"
	}
}
