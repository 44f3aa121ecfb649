package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/festquest/festquest-server/internal/config"
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
    descripcion TEXT NOT NULL DEFAULT ''
);

CREATE TABLE holidays (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    country TEXT NOT NULL DEFAULT 'CO',
    fecha TEXT NOT NULL,
    nombre TEXT NOT NULL,
    UNIQUE (country, fecha)
);
`

func newTestSeeder(t *testing.T) (*Seeder, *sqlx.DB) {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	seeder, err := New(db, config.BackendSQLite)
	require.NoError(t, err)

	return seeder, db
}

func TestSeedHolidays(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seeder, db := newTestSeeder(t)

	inserted, err := seeder.SeedHolidays(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(holidaysCO2026), inserted)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM holidays WHERE country = 'CO'"))
	assert.Equal(t, len(holidaysCO2026), count)

	// Re-running skips everything
	inserted, err = seeder.SeedHolidays(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM holidays"))
	assert.Equal(t, len(holidaysCO2026), count)
}

func TestSeedFestivals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seeder, db := newTestSeeder(t)

	fin := "2026-06-15"
	entries := []FestivalEntry{
		{Municipio: "El Peñol", Fiesta: "Fiestas del Viejo Peñol", Inicio: "2026-06-12", Fin: &fin},
		{Municipio: "El Peñol", Fiesta: "Feria de Verano", Inicio: "2026-07-02"},
		{Municipio: "Mompox", Departamento: "Bolívar", Fiesta: "Festival de Jazz", Inicio: "2026-10-01"},
	}

	inserted, err := seeder.SeedFestivals(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	// Shared municipality is created once; explicit departamento is kept
	var municipalities int
	require.NoError(t, db.Get(&municipalities, "SELECT COUNT(*) FROM municipalities"))
	assert.Equal(t, 2, municipalities)

	var departamento string
	require.NoError(t, db.Get(&departamento,
		"SELECT departamento FROM municipalities WHERE nombre = 'Mompox'"))
	assert.Equal(t, "Bolívar", departamento)

	var defaulted string
	require.NoError(t, db.Get(&defaulted,
		"SELECT departamento FROM municipalities WHERE nombre = 'El Peñol'"))
	assert.Equal(t, "Antioquia", defaulted)

	// Single-day festival has no end date
	var finCount int
	require.NoError(t, db.Get(&finCount,
		"SELECT COUNT(*) FROM festivals WHERE nombre = 'Feria de Verano' AND fecha_fin IS NULL"))
	assert.Equal(t, 1, finCount)

	// Re-running skips existing rows
	inserted, err = seeder.SeedFestivals(ctx, entries)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	var festivals int
	require.NoError(t, db.Get(&festivals, "SELECT COUNT(*) FROM festivals"))
	assert.Equal(t, 3, festivals)
}

func TestSeedFestivalsRejectsIncompleteEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seeder, _ := newTestSeeder(t)

	_, err := seeder.SeedFestivals(ctx, []FestivalEntry{
		{Municipio: "El Peñol", Inicio: "2026-06-12"},
	})
	assert.Error(t, err)
}

func TestSeedFestivalsFromFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seeder, db := newTestSeeder(t)

	path := filepath.Join(t.TempDir(), "festivals.json")
	content := `[
  {"municipio": "Guatapé", "fiesta": "Fiestas del Embalse", "inicio": "2026-06-26", "fin": "2026-06-29"}
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	inserted, err := seeder.SeedFestivalsFromFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	var nombre string
	require.NoError(t, db.Get(&nombre, "SELECT nombre FROM festivals"))
	assert.Equal(t, "Fiestas del Embalse", nombre)
}

func TestSeedFestivalsFromFileMissing(t *testing.T) {
	t.Parallel()
	seeder, _ := newTestSeeder(t)

	_, err := seeder.SeedFestivalsFromFile(context.Background(), "/does/not/exist.json")
	assert.Error(t, err)
}

func TestSeedMunicipalities(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seeder, db := newTestSeeder(t)

	_, err := db.Exec(
		"INSERT INTO municipalities (nombre, departamento) VALUES ('Guatapé', 'Antioquia')")
	require.NoError(t, err)

	subregion := "Oriente"
	altitud := int64(1925)
	habitantes := int64(7684)
	entries := []MunicipalityEntry{
		{Nombre: "Guatapé", Departamento: "Antioquia", Subregion: &subregion, AltitudMsnm: &altitud, Habitantes: &habitantes},
		{Nombre: "Jardín", Departamento: "Antioquia", Subregion: &subregion},
	}

	inserted, updated, err := seeder.SeedMunicipalities(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 1, updated)

	// Existing row is updated in place, not duplicated
	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM municipalities"))
	assert.Equal(t, 2, count)

	var loadedAltitud int64
	require.NoError(t, db.Get(&loadedAltitud,
		"SELECT altitud_msnm FROM municipalities WHERE nombre = 'Guatapé'"))
	assert.Equal(t, altitud, loadedAltitud)

	// Re-running is a pure update pass
	inserted, updated, err = seeder.SeedMunicipalities(ctx, entries)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Equal(t, 2, updated)
}

func TestSeedMunicipalitiesFromFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seeder, db := newTestSeeder(t)

	path := filepath.Join(t.TempDir(), "municipalities.json")
	content := `[
  {"nombre": "Santa Fe de Antioquia", "departamento": "Antioquia", "subregion": "Occidente", "fundacion": 1541}
]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	inserted, updated, err := seeder.SeedMunicipalitiesFromFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Zero(t, updated)

	var fundacion int64
	require.NoError(t, db.Get(&fundacion,
		"SELECT fundacion FROM municipalities WHERE nombre = 'Santa Fe de Antioquia'"))
	assert.Equal(t, int64(1541), fundacion)
}

func TestSeedMunicipalitiesRejectsIncompleteEntries(t *testing.T) {
	t.Parallel()
	seeder, _ := newTestSeeder(t)

	_, _, err := seeder.SeedMunicipalities(context.Background(), []MunicipalityEntry{
		{Nombre: "Guatapé"},
	})
	assert.Error(t, err)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	t.Parallel()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = New(db, "mongodb")
	assert.Error(t, err)
}
