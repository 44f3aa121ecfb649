// Package seed loads reference data into the catalog database.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
)

// holidayEntry is a single public holiday to load.
type holidayEntry struct {
	Fecha  string
	Nombre string
}

// holidaysCO2026 are the official Colombian public holidays for 2026,
// with the Emiliani-law observance dates already applied.
var holidaysCO2026 = []holidayEntry{
	{"2026-01-01", "Año Nuevo"},
	{"2026-01-12", "Reyes Magos (trasladado)"},
	{"2026-03-23", "San José (trasladado)"},
	{"2026-04-02", "Jueves Santo"},
	{"2026-04-03", "Viernes Santo"},
	{"2026-05-01", "Día del Trabajo"},
	{"2026-05-18", "Ascensión del Señor (trasladado)"},
	{"2026-06-08", "Corpus Christi (trasladado)"},
	{"2026-06-15", "Sagrado Corazón"},
	{"2026-06-29", "San Pedro y San Pablo (trasladado)"},
	{"2026-07-20", "Independencia de Colombia"},
	{"2026-08-07", "Batalla de Boyacá"},
	{"2026-08-17", "Asunción de la Virgen (trasladado)"},
	{"2026-10-12", "Día de la Raza"},
	{"2026-11-02", "Todos los Santos (trasladado)"},
	{"2026-11-16", "Independencia de Cartagena (trasladado)"},
	{"2026-12-08", "Inmaculada Concepción"},
	{"2026-12-25", "Navidad"},
}

// SeedHolidays loads the built-in CO 2026 holiday calendar. Re-running is
// safe: rows that already exist for (country, fecha) are skipped. Returns
// the number of rows inserted.
func (s *Seeder) SeedHolidays(ctx context.Context) (int, error) {
	const country = "CO"

	inserted := 0
	for _, h := range holidaysCO2026 {
		exists, err := s.rowExists(ctx, s.builder.
			From(goqu.T("holidays")).
			Select(goqu.V(1)).
			Where(
				goqu.C("country").Eq(country),
				goqu.C("fecha").Eq(h.Fecha),
			))
		if err != nil {
			return inserted, fmt.Errorf("failed to check holiday %s: %w", h.Fecha, err)
		}
		if exists {
			continue
		}

		query, args, err := s.builder.
			Insert(goqu.T("holidays")).
			Cols("country", "fecha", "nombre").
			Vals(goqu.Vals{country, h.Fecha, h.Nombre}).
			Prepared(true).
			ToSQL()
		if err != nil {
			return inserted, fmt.Errorf("failed to build holiday insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return inserted, fmt.Errorf("failed to insert holiday %s: %w", h.Fecha, err)
		}
		inserted++
	}

	return inserted, nil
}

// rowExists runs a single-row existence probe built from the given dataset.
func (s *Seeder) rowExists(ctx context.Context, ds *goqu.SelectDataset) (bool, error) {
	query, args, err := ds.Limit(1).Prepared(true).ToSQL()
	if err != nil {
		return false, err
	}

	var one int
	err = s.db.GetContext(ctx, &one, query, args...)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, err
}
