package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/doug-martin/goqu/v9"
)

// MunicipalityEntry is a single municipality row in a seed file, including
// the optional profile fields.
type MunicipalityEntry struct {
	Nombre          string   `json:"nombre"`
	Departamento    string   `json:"departamento"`
	Descripcion     string   `json:"descripcion,omitempty"`
	Subregion       *string  `json:"subregion,omitempty"`
	AltitudMsnm     *int64   `json:"altitud_msnm,omitempty"`
	TemperaturaProm *float64 `json:"temperatura_prom,omitempty"`
	AreaKm2         *float64 `json:"area_km2,omitempty"`
	Habitantes      *int64   `json:"habitantes,omitempty"`
	Fundacion       *int64   `json:"fundacion,omitempty"`
	BanderaURL      *string  `json:"bandera_url,omitempty"`
}

// SeedMunicipalitiesFromFile loads municipalities from a JSON file.
// Existing rows (matched by nombre) get their profile fields updated;
// new rows are inserted. Returns inserted and updated counts.
func (s *Seeder) SeedMunicipalitiesFromFile(ctx context.Context, path string) (int, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var entries []MunicipalityEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, 0, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	return s.SeedMunicipalities(ctx, entries)
}

// SeedMunicipalities upserts the given municipality entries by name.
func (s *Seeder) SeedMunicipalities(ctx context.Context, entries []MunicipalityEntry) (int, int, error) {
	inserted, updated := 0, 0
	for _, entry := range entries {
		if entry.Nombre == "" || entry.Departamento == "" {
			return inserted, updated, fmt.Errorf("seed entry requires nombre and departamento: %+v", entry)
		}

		record := goqu.Record{
			"nombre":           entry.Nombre,
			"departamento":     entry.Departamento,
			"descripcion":      entry.Descripcion,
			"subregion":        entry.Subregion,
			"altitud_msnm":     entry.AltitudMsnm,
			"temperatura_prom": entry.TemperaturaProm,
			"area_km2":         entry.AreaKm2,
			"habitantes":       entry.Habitantes,
			"fundacion":        entry.Fundacion,
			"bandera_url":      entry.BanderaURL,
		}

		id, err := s.municipalityID(ctx, entry.Nombre)
		switch {
		case err == nil:
			query, args, buildErr := s.builder.
				Update(goqu.T("municipalities")).
				Set(record).
				Where(goqu.C("id").Eq(id)).
				Prepared(true).
				ToSQL()
			if buildErr != nil {
				return inserted, updated, fmt.Errorf("failed to build municipality update: %w", buildErr)
			}
			if _, execErr := s.db.ExecContext(ctx, query, args...); execErr != nil {
				return inserted, updated, fmt.Errorf("failed to update municipality %q: %w", entry.Nombre, execErr)
			}
			updated++
		case errors.Is(err, sql.ErrNoRows):
			query, args, buildErr := s.builder.
				Insert(goqu.T("municipalities")).
				Rows(record).
				Prepared(true).
				ToSQL()
			if buildErr != nil {
				return inserted, updated, fmt.Errorf("failed to build municipality insert: %w", buildErr)
			}
			if _, execErr := s.db.ExecContext(ctx, query, args...); execErr != nil {
				return inserted, updated, fmt.Errorf("failed to insert municipality %q: %w", entry.Nombre, execErr)
			}
			inserted++
		default:
			return inserted, updated, fmt.Errorf("failed to look up municipality %q: %w", entry.Nombre, err)
		}
	}

	return inserted, updated, nil
}
