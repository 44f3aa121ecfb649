package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/festquest/festquest-server/internal/config"
	"github.com/festquest/festquest-server/internal/db"
	"github.com/festquest/festquest-server/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load reference data into the database",
	Long:  `Load reference data into the database. Use with 'holidays', 'festivals' or 'municipalities' subcommands.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Usage()
	},
}

var seedHolidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "Load the built-in Colombian 2026 holiday calendar",
	Long: `Load the official Colombian public holidays for 2026 into the holidays
table. Safe to re-run: existing rows are skipped.`,
	RunE: runSeedHolidays,
}

var seedFestivalsCmd = &cobra.Command{
	Use:   "festivals",
	Short: "Load festivals from a JSON file",
	Long: `Load festivals from a JSON file. Each entry names a municipality,
festival and date range; missing municipalities are created. Safe to
re-run: existing rows are skipped.

Example entry:
  {"municipio": "El Peñol", "departamento": "Antioquia",
   "fiesta": "Fiestas del Viejo Peñol y del Embalse",
   "inicio": "2026-06-12", "fin": "2026-06-15"}`,
	RunE: runSeedFestivals,
}

var seedMunicipalitiesCmd = &cobra.Command{
	Use:   "municipalities",
	Short: "Load municipality profiles from a JSON file",
	Long: `Load municipalities from a JSON file, including the optional profile
fields (subregion, altitude, temperature, area, population, founding
year, flag URL). Existing municipalities are matched by name and their
profiles updated; new ones are inserted.`,
	RunE: runSeedMunicipalities,
}

func init() {
	seedCmd.PersistentFlags().String("config", "", "Path to configuration file (YAML format, required)")
	if err := seedCmd.MarkPersistentFlagRequired("config"); err != nil {
		panic(err)
	}

	seedFestivalsCmd.Flags().String("file", "", "Path to the festivals JSON file (required)")
	if err := seedFestivalsCmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}

	seedMunicipalitiesCmd.Flags().String("file", "", "Path to the municipalities JSON file (required)")
	if err := seedMunicipalitiesCmd.MarkFlagRequired("file"); err != nil {
		panic(err)
	}

	seedCmd.AddCommand(seedHolidaysCmd)
	seedCmd.AddCommand(seedFestivalsCmd)
	seedCmd.AddCommand(seedMunicipalitiesCmd)
}

// newSeeder loads the config named by the command's --config flag and
// opens a database connection for seeding.
func newSeeder(cmd *cobra.Command) (*seed.Seeder, *db.Connection, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	conn, err := db.NewConnection(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	seeder, err := seed.New(conn.DB, conn.Backend)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	return seeder, conn, nil
}

func runSeedHolidays(cmd *cobra.Command, _ []string) error {
	seeder, conn, err := newSeeder(cmd)
	if err != nil {
		return err
	}
	defer closeConnection(conn)

	inserted, err := seeder.SeedHolidays(context.Background())
	if err != nil {
		return fmt.Errorf("failed to seed holidays: %w", err)
	}

	slog.Info("Holiday calendar loaded", "inserted", inserted)
	return nil
}

func runSeedFestivals(cmd *cobra.Command, _ []string) error {
	seeder, conn, err := newSeeder(cmd)
	if err != nil {
		return err
	}
	defer closeConnection(conn)

	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return fmt.Errorf("failed to get file flag: %w", err)
	}

	inserted, err := seeder.SeedFestivalsFromFile(context.Background(), file)
	if err != nil {
		return fmt.Errorf("failed to seed festivals: %w", err)
	}

	slog.Info("Festivals loaded", "inserted", inserted)
	return nil
}

func runSeedMunicipalities(cmd *cobra.Command, _ []string) error {
	seeder, conn, err := newSeeder(cmd)
	if err != nil {
		return err
	}
	defer closeConnection(conn)

	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return fmt.Errorf("failed to get file flag: %w", err)
	}

	inserted, updated, err := seeder.SeedMunicipalitiesFromFile(context.Background(), file)
	if err != nil {
		return fmt.Errorf("failed to seed municipalities: %w", err)
	}

	slog.Info("Municipalities loaded", "inserted", inserted, "updated", updated)
	return nil
}

func closeConnection(conn *db.Connection) {
	if err := conn.Close(); err != nil {
		slog.Error("Error closing database connection", "error", err)
	}
}
