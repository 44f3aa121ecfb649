package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/doug-martin/goqu/v9"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FestivalEntry is a single festival row in a seed file.
type FestivalEntry struct {
	Municipio    string  `json:"municipio"`
	Departamento string  `json:"departamento"`
	Fiesta       string  `json:"fiesta"`
	Inicio       string  `json:"inicio"`
	Fin          *string `json:"fin,omitempty"`
	Descripcion  string  `json:"descripcion,omitempty"`
}

// SeedFestivalsFromFile loads festivals from a JSON file. Municipalities
// named in the file are created when missing; festivals already present
// for (municipio, nombre, fecha_inicio) are skipped. Returns the number
// of festivals inserted.
func (s *Seeder) SeedFestivalsFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var entries []FestivalEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	return s.SeedFestivals(ctx, entries)
}

// SeedFestivals loads the given festival entries, creating municipalities
// as needed.
func (s *Seeder) SeedFestivals(ctx context.Context, entries []FestivalEntry) (int, error) {
	inserted := 0
	for _, entry := range entries {
		if entry.Municipio == "" || entry.Fiesta == "" || entry.Inicio == "" {
			return inserted, fmt.Errorf("seed entry requires municipio, fiesta and inicio: %+v", entry)
		}

		municipioID, err := s.ensureMunicipality(ctx, entry.Municipio, entry.Departamento)
		if err != nil {
			return inserted, err
		}

		exists, err := s.rowExists(ctx, s.builder.
			From(goqu.T("festivals")).
			Select(goqu.V(1)).
			Where(
				goqu.C("municipio_id").Eq(municipioID),
				goqu.C("nombre").Eq(entry.Fiesta),
				goqu.C("fecha_inicio").Eq(entry.Inicio),
			))
		if err != nil {
			return inserted, fmt.Errorf("failed to check festival %q: %w", entry.Fiesta, err)
		}
		if exists {
			continue
		}

		record := goqu.Record{
			"municipio_id": municipioID,
			"nombre":       entry.Fiesta,
			"fecha_inicio": entry.Inicio,
			"descripcion":  entry.Descripcion,
		}
		if entry.Fin != nil {
			record["fecha_fin"] = *entry.Fin
		}

		query, args, err := s.builder.
			Insert(goqu.T("festivals")).
			Rows(record).
			Prepared(true).
			ToSQL()
		if err != nil {
			return inserted, fmt.Errorf("failed to build festival insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return inserted, fmt.Errorf("failed to insert festival %q: %w", entry.Fiesta, err)
		}
		inserted++
	}

	return inserted, nil
}

// ensureMunicipality returns the id of the named municipality, inserting
// it first when missing. An empty departamento defaults to "Antioquia".
func (s *Seeder) ensureMunicipality(ctx context.Context, nombre, departamento string) (int64, error) {
	if departamento == "" {
		departamento = "Antioquia"
	}

	id, err := s.municipalityID(ctx, nombre)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up municipality %q: %w", nombre, err)
	}

	query, args, err := s.builder.
		Insert(goqu.T("municipalities")).
		Rows(goqu.Record{
			"nombre":       nombre,
			"departamento": departamento,
			"descripcion":  "",
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("failed to build municipality insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("failed to insert municipality %q: %w", nombre, err)
	}

	id, err = s.municipalityID(ctx, nombre)
	if err != nil {
		return 0, fmt.Errorf("failed to look up municipality %q after insert: %w", nombre, err)
	}
	return id, nil
}

func (s *Seeder) municipalityID(ctx context.Context, nombre string) (int64, error) {
	query, args, err := s.builder.
		From(goqu.T("municipalities")).
		Select(goqu.C("id")).
		Where(goqu.C("nombre").Eq(nombre)).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := s.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, err
	}
	return id, nil
}
