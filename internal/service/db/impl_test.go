package database

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/festquest/festquest-server/internal/config"
	"github.com/festquest/festquest-server/internal/service"
)

const testSchema = `
CREATE TABLE municipalities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    nombre TEXT NOT NULL,
    departamento TEXT NOT NULL,
    descripcion TEXT NOT NULL DEFAULT '',
    subregion TEXT,
    altitud_msnm INTEGER,
    temperatura_prom REAL,
    area_km2 REAL,
    habitantes INTEGER,
    fundacion INTEGER,
    bandera_url TEXT
);

CREATE TABLE festivals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    municipio_id INTEGER NOT NULL,
    nombre TEXT NOT NULL,
    fecha_inicio TEXT NOT NULL,
    fecha_fin TEXT,
    descripcion TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (municipio_id) REFERENCES municipalities(id) ON DELETE CASCADE
);

CREATE TABLE holidays (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    country TEXT NOT NULL DEFAULT 'CO',
    fecha TEXT NOT NULL,
    nombre TEXT NOT NULL,
    UNIQUE (country, fecha)
);

CREATE TABLE analytics_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    festival_id INTEGER NOT NULL,
    municipio_id INTEGER,
    event TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT 'unknown',
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

const testFixtures = `
INSERT INTO municipalities (id, nombre, departamento, subregion) VALUES
    (1, 'Guatapé', 'Antioquia', 'Oriente'),
    (2, 'El Peñol', 'Antioquia', 'Oriente'),
    (3, 'San Rafael', 'Antioquia', NULL),
    (4, 'Mompox', 'Bolívar', NULL);

INSERT INTO festivals (id, municipio_id, nombre, fecha_inicio, fecha_fin) VALUES
    (1, 2, 'Fiestas del Viejo Peñol', '2026-06-12', '2026-06-15'),
    (2, 3, 'Fiestas de la Panela', '2026-07-17', '2026-07-20'),
    (3, 1, 'Feria de Verano', '2026-07-02', NULL),
    (4, 1, 'Fiestas del Embalse', '2026-08-28', '2026-08-31');

INSERT INTO holidays (country, fecha, nombre) VALUES
    ('CO', '2026-07-20', 'Independencia de Colombia'),
    ('CO', '2026-12-25', 'Navidad');
`

// newTestService opens an in-memory SQLite database, loads the schema and
// fixtures, and returns a catalog service backed by it.
func newTestService(t *testing.T) service.CatalogService {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	_, err = db.Exec(testFixtures)
	require.NoError(t, err)

	svc, err := New(
		WithDB(db),
		WithBackend(config.BackendSQLite),
	)
	require.NoError(t, err)

	return svc
}

func festivalIDs(page *service.FestivalPage) []int64 {
	ids := make([]int64, 0, len(page.Festivals))
	for _, f := range page.Festivals {
		ids = append(ids, f.ID)
	}
	return ids
}

func defaultFestivalParams() service.ListFestivalsParams {
	return service.ListFestivalsParams{
		SortBy:   "fecha_inicio",
		SortDir:  service.SortDirAsc,
		Page:     1,
		PageSize: 20,
	}
}

func TestListFestivals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		params  func() service.ListFestivalsParams
		wantIDs []int64
	}{
		{
			name:    "no_filters_sorted_by_start_date",
			params:  defaultFestivalParams,
			wantIDs: []int64{1, 3, 2, 4},
		},
		{
			name: "range_keeps_overlapping_festivals_only",
			params: func() service.ListFestivalsParams {
				p := defaultFestivalParams()
				p.From = "2026-06-01"
				p.To = "2026-06-30"
				return p
			},
			wantIDs: []int64{1},
		},
		{
			name: "range_matches_single_day_festival",
			params: func() service.ListFestivalsParams {
				p := defaultFestivalParams()
				p.From = "2026-07-01"
				p.To = "2026-07-05"
				return p
			},
			wantIDs: []int64{3},
		},
		{
			name: "range_overlap_is_inclusive_at_edges",
			params: func() service.ListFestivalsParams {
				// F1 ends exactly on from; F2 starts after to.
				p := defaultFestivalParams()
				p.From = "2026-06-15"
				p.To = "2026-07-02"
				return p
			},
			wantIDs: []int64{1, 3},
		},
		{
			name: "departamento_filter",
			params: func() service.ListFestivalsParams {
				p := defaultFestivalParams()
				p.Departamento = "Antioquia"
				return p
			},
			wantIDs: []int64{1, 3, 2, 4},
		},
		{
			name: "departamento_without_festivals",
			params: func() service.ListFestivalsParams {
				p := defaultFestivalParams()
				p.Departamento = "Bolívar"
				return p
			},
			wantIDs: []int64{},
		},
		{
			name: "municipio_filter",
			params: func() service.ListFestivalsParams {
				p := defaultFestivalParams()
				id := int64(1)
				p.MunicipioID = &id
				return p
			},
			wantIDs: []int64{3, 4},
		},
		{
			name: "only_holidays_keeps_festivals_containing_a_holiday",
			params: func() service.ListFestivalsParams {
				p := defaultFestivalParams()
				p.OnlyHolidays = true
				return p
			},
			wantIDs: []int64{2},
		},
		{
			name: "only_holidays_with_range_excluding_the_holiday",
			params: func() service.ListFestivalsParams {
				p := defaultFestivalParams()
				p.OnlyHolidays = true
				p.From = "2026-06-01"
				p.To = "2026-06-30"
				return p
			},
			wantIDs: []int64{},
		},
		{
			name: "sort_descending",
			params: func() service.ListFestivalsParams {
				p := defaultFestivalParams()
				p.SortDir = service.SortDirDesc
				return p
			},
			wantIDs: []int64{4, 2, 3, 1},
		},
		{
			name: "sort_by_municipality_name",
			params: func() service.ListFestivalsParams {
				p := defaultFestivalParams()
				p.SortBy = "municipio"
				return p
			},
			// El Peñol, Guatapé x2 (tie broken by festival id), San Rafael
			wantIDs: []int64{1, 3, 4, 2},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t)

			page, err := svc.ListFestivals(ctx, tt.params())
			require.NoError(t, err)

			assert.Equal(t, tt.wantIDs, festivalIDs(page))
			assert.Equal(t, len(tt.wantIDs), page.Total)
		})
	}
}

func TestListFestivalsPagination(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	params := defaultFestivalParams()
	params.PageSize = 1
	params.Page = 2

	page, err := svc.ListFestivals(ctx, params)
	require.NoError(t, err)

	assert.Equal(t, []int64{3}, festivalIDs(page))
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 4, page.TotalPages)
}

func TestListFestivalsJoinedFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	params := defaultFestivalParams()
	params.From = "2026-06-01"
	params.To = "2026-06-30"

	page, err := svc.ListFestivals(ctx, params)
	require.NoError(t, err)
	require.Len(t, page.Festivals, 1)

	f := page.Festivals[0]
	assert.Equal(t, "Fiestas del Viejo Peñol", f.Nombre)
	assert.Equal(t, "El Peñol", f.MunicipioNombre)
	assert.Equal(t, "Antioquia", f.Departamento)
	require.NotNil(t, f.FechaFin)
	assert.Equal(t, "2026-06-15", *f.FechaFin)
}

func TestGetFestival(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	t.Run("found", func(t *testing.T) {
		festival, err := svc.GetFestival(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Feria de Verano", festival.Nombre)
		assert.Equal(t, "Guatapé", festival.MunicipioNombre)
		assert.Nil(t, festival.FechaFin)
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.GetFestival(ctx, 999)
		assert.ErrorIs(t, err, service.ErrFestivalNotFound)
	})
}

func TestListMunicipalities(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	baseParams := func() service.ListMunicipalitiesParams {
		return service.ListMunicipalitiesParams{Page: 1, PageSize: 20}
	}

	t.Run("ordered_by_name", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		page, err := svc.ListMunicipalities(ctx, baseParams())
		require.NoError(t, err)
		require.Len(t, page.Municipalities, 4)
		assert.Equal(t, "El Peñol", page.Municipalities[0].Nombre)
		assert.Equal(t, "San Rafael", page.Municipalities[3].Nombre)
	})

	t.Run("departamento_filter", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		params := baseParams()
		params.Departamento = "Bolívar"
		page, err := svc.ListMunicipalities(ctx, params)
		require.NoError(t, err)
		require.Len(t, page.Municipalities, 1)
		assert.Equal(t, "Mompox", page.Municipalities[0].Nombre)
	})

	t.Run("accent_insensitive_search", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		params := baseParams()
		params.Query = "guatape"
		page, err := svc.ListMunicipalities(ctx, params)
		require.NoError(t, err)
		require.Len(t, page.Municipalities, 1)
		assert.Equal(t, "Guatapé", page.Municipalities[0].Nombre)
		assert.Equal(t, 1, page.Total)
	})

	t.Run("subregion_search", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		params := baseParams()
		params.Query = "oriente"
		page, err := svc.ListMunicipalities(ctx, params)
		require.NoError(t, err)
		assert.Len(t, page.Municipalities, 2)
	})

	t.Run("pagination_applies_after_search", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		params := baseParams()
		params.Query = "oriente"
		params.PageSize = 1
		params.Page = 2
		page, err := svc.ListMunicipalities(ctx, params)
		require.NoError(t, err)
		require.Len(t, page.Municipalities, 1)
		assert.Equal(t, "Guatapé", page.Municipalities[0].Nombre)
		assert.Equal(t, 2, page.Total)
		assert.Equal(t, 2, page.TotalPages)
	})
}

func TestGetMunicipality(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	t.Run("found_with_festival_count", func(t *testing.T) {
		detail, err := svc.GetMunicipality(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Guatapé", detail.Nombre)
		assert.Equal(t, int64(2), detail.FestivalsCount)
	})

	t.Run("found_with_zero_festivals", func(t *testing.T) {
		detail, err := svc.GetMunicipality(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(0), detail.FestivalsCount)
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.GetMunicipality(ctx, 999)
		assert.ErrorIs(t, err, service.ErrMunicipalityNotFound)
	})
}

func TestListHolidays(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	t.Run("all", func(t *testing.T) {
		page, err := svc.ListHolidays(ctx, service.ListHolidaysParams{Page: 1, PageSize: 20})
		require.NoError(t, err)
		require.Len(t, page.Holidays, 2)
		assert.Equal(t, "2026-07-20", page.Holidays[0].Fecha)
	})

	t.Run("range_filter", func(t *testing.T) {
		page, err := svc.ListHolidays(ctx, service.ListHolidaysParams{
			Country:  "CO",
			From:     "2026-12-01",
			To:       "2026-12-31",
			Page:     1,
			PageSize: 20,
		})
		require.NoError(t, err)
		require.Len(t, page.Holidays, 1)
		assert.Equal(t, "Navidad", page.Holidays[0].Nombre)
	})

	t.Run("unknown_country_is_empty", func(t *testing.T) {
		page, err := svc.ListHolidays(ctx, service.ListHolidaysParams{
			Country:  "XX",
			Page:     1,
			PageSize: 20,
		})
		require.NoError(t, err)
		assert.Empty(t, page.Holidays)
		assert.Equal(t, 0, page.Total)
		assert.Equal(t, 1, page.TotalPages)
	})
}

func TestRecordEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores_event_and_returns_id", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		id, err := svc.RecordEvent(ctx, service.AnalyticsEvent{
			FestivalID: 1,
			Event:      "view_festival",
			Source:     "map",
		})
		require.NoError(t, err)
		assert.Positive(t, id)
	})

	t.Run("missing_fields_are_rejected", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		_, err := svc.RecordEvent(ctx, service.AnalyticsEvent{FestivalID: 1})
		require.Error(t, err)
		assert.True(t, service.IsValidationError(err))
	})

	t.Run("unknown_festival", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)

		_, err := svc.RecordEvent(ctx, service.AnalyticsEvent{
			FestivalID: 999,
			Event:      "view_festival",
		})
		assert.ErrorIs(t, err, service.ErrFestivalNotFound)
	})
}

func TestFestivalStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	record := func(event string) {
		_, err := svc.RecordEvent(ctx, service.AnalyticsEvent{
			FestivalID: 1,
			Event:      event,
		})
		require.NoError(t, err)
	}

	record("view_festival")
	record("view_festival")
	record("save_festival")
	record("share_festival")

	stats, err := svc.FestivalStats(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Visitas)
	assert.Equal(t, int64(1), stats.Guardados)
	assert.Equal(t, int64(50), stats.Conversion)
	assert.Equal(t, int64(1), stats.Eventos["share_festival"])
}

func TestFestivalStatsNoEvents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	stats, err := svc.FestivalStats(ctx, 2)
	require.NoError(t, err)

	assert.Zero(t, stats.Visitas)
	assert.Zero(t, stats.Guardados)
	assert.Zero(t, stats.Conversion)
	assert.Empty(t, stats.Eventos)
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	t.Run("missing_db", func(t *testing.T) {
		t.Parallel()
		_, err := New(WithBackend(config.BackendSQLite))
		assert.Error(t, err)
	})

	t.Run("missing_backend", func(t *testing.T) {
		t.Parallel()
		db, err := sqlx.Open("sqlite", ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		_, err = New(WithDB(db))
		assert.Error(t, err)
	})

	t.Run("unsupported_backend", func(t *testing.T) {
		t.Parallel()
		db, err := sqlx.Open("sqlite", ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		_, err = New(WithDB(db), WithBackend("oracle"))
		assert.Error(t, err)
	})
}
