package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/festquest/festquest-server/internal/service"
)

// ListHolidays returns public holidays ordered by date, optionally
// restricted by country and date range, paginated the same way as the
// festival listing.
func (s *dbService) ListHolidays(
	ctx context.Context,
	params service.ListHolidaysParams,
) (*service.HolidayPage, error) {
	ctx, span := s.startSpan(ctx, "dbService.ListHolidays")
	defer span.End()

	span.SetAttributes(
		AttrPage.Int(params.Page),
		AttrPageSize.Int(params.PageSize),
	)

	ds := s.builder.From(goqu.T("holidays"))

	conds := make([]goqu.Expression, 0, 2)
	if params.Country != "" {
		conds = append(conds, goqu.C("country").Eq(params.Country))
	}
	if params.From != "" {
		conds = append(conds, goqu.C("fecha").Between(goqu.Range(params.From, params.To)))
	}
	if len(conds) > 0 {
		ds = ds.Where(conds...)
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to count holidays: %w", err)
	}

	dataSQL, dataArgs, err := ds.
		Select(goqu.C("id"), goqu.C("country"), goqu.C("fecha"), goqu.C("nombre")).
		Order(goqu.C("fecha").Asc(), goqu.C("id").Asc()).
		Limit(uint(params.PageSize)).
		Offset(uint(service.Offset(params.Page, params.PageSize))).
		Prepared(true).
		ToSQL()
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to build data query: %w", err)
	}

	holidays := []service.Holiday{}
	if err := s.db.SelectContext(ctx, &holidays, dataSQL, dataArgs...); err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	span.SetAttributes(AttrResultCount.Int(len(holidays)))

	return &service.HolidayPage{
		Holidays:   holidays,
		Total:      total,
		TotalPages: service.TotalPages(total, params.PageSize),
		Params:     params,
	}, nil
}
