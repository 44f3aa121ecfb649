// Package service provides the business logic for the FestQuest API.
package service

import (
	"context"
	"errors"
)

var (
	// ErrFestivalNotFound is returned when a festival does not exist
	ErrFestivalNotFound = errors.New("festival no encontrado")
	// ErrMunicipalityNotFound is returned when a municipality does not exist
	ErrMunicipalityNotFound = errors.New("municipio no encontrado")
)

// ValidationError signals malformed or contradictory request input.
// It is surfaced to the caller as a client error and never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CatalogService defines the read and analytics operations over the
// festival catalog
type CatalogService interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// ListFestivals returns festivals matching the given filters, ordered
	// and paginated
	ListFestivals(ctx context.Context, params ListFestivalsParams) (*FestivalPage, error)

	// GetFestival returns a single festival joined with its municipality
	GetFestival(ctx context.Context, id int64) (*Festival, error)

	// ListMunicipalities returns municipalities filtered by department and
	// free text, ordered by name and paginated
	ListMunicipalities(ctx context.Context, params ListMunicipalitiesParams) (*MunicipalityPage, error)

	// GetMunicipality returns a single municipality with its festival count
	GetMunicipality(ctx context.Context, id int64) (*MunicipalityDetail, error)

	// ListHolidays returns public holidays, optionally restricted by
	// country and date range
	ListHolidays(ctx context.Context, params ListHolidaysParams) (*HolidayPage, error)

	// RecordEvent stores an analytics event and returns its identifier
	RecordEvent(ctx context.Context, event AnalyticsEvent) (int64, error)

	// FestivalStats returns aggregated analytics counts for a festival
	FestivalStats(ctx context.Context, festivalID int64) (*FestivalStats, error)
}
