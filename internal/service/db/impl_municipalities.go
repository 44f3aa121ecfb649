package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/doug-martin/goqu/v9"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/festquest/festquest-server/internal/service"
)

var municipalityColumnNames = []string{
	"id",
	"nombre",
	"departamento",
	"descripcion",
	"subregion",
	"altitud_msnm",
	"temperatura_prom",
	"area_km2",
	"habitantes",
	"fundacion",
	"bandera_url",
}

// municipalityColumns returns the municipality projection, optionally
// qualified with a table alias.
func municipalityColumns(alias string) []any {
	cols := make([]any, 0, len(municipalityColumnNames))
	for _, name := range municipalityColumnNames {
		if alias == "" {
			cols = append(cols, goqu.C(name))
		} else {
			cols = append(cols, goqu.I(alias+"."+name))
		}
	}
	return cols
}

// ListMunicipalities returns municipalities filtered by department and
// free text, ordered by name and paginated.
//
// The department filter is pushed to the database; the free-text filter
// runs in memory after normalizing both sides, because accent-insensitive
// containment is not expressible consistently across the two supported
// backends without dialect-specific collations. The candidate set stays
// small (a department's municipalities), so the scan is bounded.
func (s *dbService) ListMunicipalities(
	ctx context.Context,
	params service.ListMunicipalitiesParams,
) (*service.MunicipalityPage, error) {
	ctx, span := s.startSpan(ctx, "dbService.ListMunicipalities")
	defer span.End()

	span.SetAttributes(
		AttrPage.Int(params.Page),
		AttrPageSize.Int(params.PageSize),
	)
	if params.Departamento != "" {
		span.SetAttributes(AttrDepartamento.String(params.Departamento))
	}

	slog.DebugContext(ctx, "ListMunicipalities query",
		"departamento", params.Departamento,
		"q", params.Query,
		"page", params.Page,
		"page_size", params.PageSize,
		"request_id", middleware.GetReqID(ctx))

	ds := s.builder.From(goqu.T("municipalities")).
		Select(municipalityColumns("")...)

	if params.Departamento != "" {
		ds = ds.Where(goqu.C("departamento").Eq(params.Departamento))
	}

	// Fixed order: name ascending, id as deterministic tie-break
	ds = ds.Order(goqu.C("nombre").Asc(), goqu.C("id").Asc())

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows := []service.Municipality{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to list municipalities: %w", err)
	}

	filtered := service.FilterMunicipalities(rows, params.Query)
	pageRows, total, totalPages := service.Paginate(filtered, params.Page, params.PageSize)

	span.SetAttributes(AttrResultCount.Int(len(pageRows)))

	return &service.MunicipalityPage{
		Municipalities: pageRows,
		Total:          total,
		TotalPages:     totalPages,
		Params:         params,
	}, nil
}

// GetMunicipality returns a single municipality with its festival count
func (s *dbService) GetMunicipality(ctx context.Context, id int64) (*service.MunicipalityDetail, error) {
	ctx, span := s.startSpan(ctx, "dbService.GetMunicipality")
	defer span.End()

	span.SetAttributes(AttrMunicipioID.Int64(id))

	query, args, err := s.builder.From(goqu.T("municipalities").As("m")).
		Select(append(municipalityColumns("m"),
			goqu.L("(SELECT COUNT(*) FROM festivals f WHERE f.municipio_id = m.id)").As("festivals_count"),
		)...).
		Where(goqu.I("m.id").Eq(id)).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var detail service.MunicipalityDetail
	if err := s.db.GetContext(ctx, &detail, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, service.ErrMunicipalityNotFound
		}
		recordError(span, err)
		return nil, fmt.Errorf("failed to get municipality: %w", err)
	}

	return &detail, nil
}
