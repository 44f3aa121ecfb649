package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/doug-martin/goqu/v9"

	"github.com/festquest/festquest-server/internal/config"
	"github.com/festquest/festquest-server/internal/service"
)

const (
	eventView = "view_festival"
	eventSave = "save_festival"

	defaultEventSource = "unknown"
)

// RecordEvent stores an analytics event and returns its identifier. The
// referenced festival must exist.
func (s *dbService) RecordEvent(ctx context.Context, event service.AnalyticsEvent) (int64, error) {
	ctx, span := s.startSpan(ctx, "dbService.RecordEvent")
	defer span.End()

	if event.FestivalID <= 0 || event.Event == "" {
		return 0, service.NewValidationError("festivalId y event son requeridos")
	}

	span.SetAttributes(AttrFestivalID.Int64(event.FestivalID))

	if err := s.festivalExists(ctx, event.FestivalID); err != nil {
		if !errors.Is(err, service.ErrFestivalNotFound) {
			recordError(span, err)
		}
		return 0, err
	}

	source := event.Source
	if source == "" {
		source = defaultEventSource
	}

	ins := s.builder.Insert(goqu.T("analytics_events")).
		Cols("festival_id", "municipio_id", "event", "source").
		Vals(goqu.Vals{event.FestivalID, event.MunicipioID, event.Event, source})

	// Postgres returns the generated id via RETURNING; SQLite exposes it
	// through the driver's last-insert id.
	if s.backend == config.BackendPostgres {
		query, args, err := ins.Returning(goqu.C("id")).Prepared(true).ToSQL()
		if err != nil {
			recordError(span, err)
			return 0, fmt.Errorf("failed to build insert query: %w", err)
		}

		var id int64
		if err := s.db.GetContext(ctx, &id, query, args...); err != nil {
			recordError(span, err)
			return 0, fmt.Errorf("failed to record event: %w", err)
		}
		return id, nil
	}

	query, args, err := ins.Prepared(true).ToSQL()
	if err != nil {
		recordError(span, err)
		return 0, fmt.Errorf("failed to build insert query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		recordError(span, err)
		return 0, fmt.Errorf("failed to record event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		recordError(span, err)
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// FestivalStats returns aggregated analytics counts for a festival. A
// festival with no recorded events yields all zeroes.
func (s *dbService) FestivalStats(ctx context.Context, festivalID int64) (*service.FestivalStats, error) {
	ctx, span := s.startSpan(ctx, "dbService.FestivalStats")
	defer span.End()

	span.SetAttributes(AttrFestivalID.Int64(festivalID))

	query, args, err := s.builder.From(goqu.T("analytics_events")).
		Select(goqu.C("event"), goqu.COUNT(goqu.Star()).As("total")).
		Where(goqu.C("festival_id").Eq(festivalID)).
		GroupBy(goqu.C("event")).
		Prepared(true).
		ToSQL()
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []struct {
		Event string `db:"event"`
		Total int64  `db:"total"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to aggregate events: %w", err)
	}

	stats := &service.FestivalStats{
		FestivalID: festivalID,
		Eventos:    make(map[string]int64, len(rows)),
	}
	for _, row := range rows {
		stats.Eventos[row.Event] = row.Total
	}
	stats.Visitas = stats.Eventos[eventView]
	stats.Guardados = stats.Eventos[eventSave]
	if stats.Visitas > 0 {
		stats.Conversion = int64(math.Round(float64(stats.Guardados) / float64(stats.Visitas) * 100))
	}

	return stats, nil
}

// festivalExists checks that the given festival id is present
func (s *dbService) festivalExists(ctx context.Context, id int64) error {
	query, args, err := s.builder.From(goqu.T("festivals")).
		Select(goqu.C("id")).
		Where(goqu.C("id").Eq(id)).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	var found int64
	if err := s.db.GetContext(ctx, &found, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return service.ErrFestivalNotFound
		}
		return fmt.Errorf("failed to check festival: %w", err)
	}
	return nil
}
