package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/festquest/festquest-server/internal/service"
)

// festivalColumns is the projection shared by the listing and detail
// queries: the festival row joined with its municipality's name and
// department.
var festivalColumns = []any{
	goqu.I("f.id"),
	goqu.I("f.municipio_id"),
	goqu.I("f.nombre"),
	goqu.I("f.fecha_inicio"),
	goqu.I("f.fecha_fin"),
	goqu.I("f.descripcion"),
	goqu.I("m.nombre").As("municipio_nombre"),
	goqu.I("m.departamento").As("departamento"),
}

// festivalDataset builds the filtered FROM/JOIN/WHERE shared by the count
// and data queries so both passes see the same predicate.
func (s *dbService) festivalDataset(params service.ListFestivalsParams) *goqu.SelectDataset {
	ds := s.builder.From(goqu.T("festivals").As("f")).
		Join(
			goqu.T("municipalities").As("m"),
			goqu.On(goqu.I("f.municipio_id").Eq(goqu.I("m.id"))),
		)

	conds := make([]goqu.Expression, 0, 4)

	// Range intersection: the festival overlaps [from, to] when its
	// effective end is >= from and its start is <= to.
	if params.HasRange() {
		conds = append(conds,
			goqu.L("COALESCE(f.fecha_fin, f.fecha_inicio)").Gte(params.From),
			goqu.I("f.fecha_inicio").Lte(params.To),
		)
	}

	if params.Departamento != "" {
		conds = append(conds, goqu.I("m.departamento").Eq(params.Departamento))
	}

	if params.MunicipioID != nil {
		conds = append(conds, goqu.I("f.municipio_id").Eq(*params.MunicipioID))
	}

	if params.OnlyHolidays {
		sub := s.builder.From(goqu.T("holidays").As("h")).
			Select(goqu.V(1)).
			Where(goqu.L("h.fecha BETWEEN f.fecha_inicio AND COALESCE(f.fecha_fin, f.fecha_inicio)"))
		if params.HasRange() {
			sub = sub.Where(goqu.I("h.fecha").Between(goqu.Range(params.From, params.To)))
		}
		conds = append(conds, goqu.L("EXISTS ?", sub))
	}

	if len(conds) > 0 {
		ds = ds.Where(conds...)
	}
	return ds
}

// festivalOrder returns the resolved ordering: the sortBy column followed
// by the festival id in the same direction, guaranteeing a total order so
// pagination never skips or duplicates rows.
func festivalOrder(params service.ListFestivalsParams) []exp.OrderedExpression {
	sortCol := goqu.I(params.SortColumn())
	idCol := goqu.I("f.id")

	if params.SortDir == service.SortDirDesc {
		return []exp.OrderedExpression{sortCol.Desc(), idCol.Desc()}
	}
	return []exp.OrderedExpression{sortCol.Asc(), idCol.Asc()}
}

// ListFestivals returns festivals matching the given filters, ordered and
// paginated. The total is computed over the same predicate before the
// page window is applied.
func (s *dbService) ListFestivals(
	ctx context.Context,
	params service.ListFestivalsParams,
) (*service.FestivalPage, error) {
	ctx, span := s.startSpan(ctx, "dbService.ListFestivals")
	defer span.End()

	span.SetAttributes(
		AttrPage.Int(params.Page),
		AttrPageSize.Int(params.PageSize),
	)

	slog.DebugContext(ctx, "ListFestivals query",
		"from", params.From,
		"to", params.To,
		"departamento", params.Departamento,
		"municipio_id", params.MunicipioID,
		"only_holidays", params.OnlyHolidays,
		"sort_by", params.SortBy,
		"sort_dir", params.SortDir,
		"page", params.Page,
		"page_size", params.PageSize,
		"request_id", middleware.GetReqID(ctx))

	ds := s.festivalDataset(params)

	countSQL, countArgs, err := ds.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to count festivals: %w", err)
	}

	dataSQL, dataArgs, err := ds.
		Select(festivalColumns...).
		Order(festivalOrder(params)...).
		Limit(uint(params.PageSize)).
		Offset(uint(service.Offset(params.Page, params.PageSize))).
		Prepared(true).
		ToSQL()
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to build data query: %w", err)
	}

	festivals := []service.Festival{}
	if err := s.db.SelectContext(ctx, &festivals, dataSQL, dataArgs...); err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to list festivals: %w", err)
	}

	span.SetAttributes(AttrResultCount.Int(len(festivals)))

	return &service.FestivalPage{
		Festivals:  festivals,
		Total:      total,
		TotalPages: service.TotalPages(total, params.PageSize),
		Params:     params,
	}, nil
}

// GetFestival returns a single festival joined with its municipality
func (s *dbService) GetFestival(ctx context.Context, id int64) (*service.Festival, error) {
	ctx, span := s.startSpan(ctx, "dbService.GetFestival")
	defer span.End()

	span.SetAttributes(AttrFestivalID.Int64(id))

	query, args, err := s.builder.From(goqu.T("festivals").As("f")).
		Join(
			goqu.T("municipalities").As("m"),
			goqu.On(goqu.I("f.municipio_id").Eq(goqu.I("m.id"))),
		).
		Select(festivalColumns...).
		Where(goqu.I("f.id").Eq(id)).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var festival service.Festival
	if err := s.db.GetContext(ctx, &festival, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, service.ErrFestivalNotFound
		}
		recordError(span, err)
		return nil, fmt.Errorf("failed to get festival: %w", err)
	}

	return &festival, nil
}
