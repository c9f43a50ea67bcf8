package main

import (
	"context"
	"crypto/sha256"
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
)

//go:embed sql/*.sql
var embedded embed.FS

// migrationPattern matches migration files: 0001_name.sql
var migrationPattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

// Migration represents a single migration file
type Migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

// AppliedMigration represents a migration that has already been applied
type AppliedMigration struct {
	Version   int
	Name      string
	AppliedAt time.Time
	Checksum  string
	AppliedBy string
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.NewWithLevel(cfg.LogLevel)

	var (
		projectID     = flag.String("project", cfg.BigQueryProject, "GCP project ID (or set BIGQUERY_PROJECT)")
		datasetID     = flag.String("dataset", cfg.BigQueryDataset, "BigQuery dataset ID (or set BIGQUERY_DATASET)")
		appliedBy     = flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
		migrationsDir = flag.String("migrations", "", "Directory of migrations to apply instead of the built-in set")
	)
	flag.Parse()

	if *projectID == "" {
		log.Fatal().Msg("Error: -project flag is required. Please specify your GCP project ID.")
	}

	var source fs.FS
	if *migrationsDir != "" {
		source = os.DirFS(*migrationsDir)
	} else if source, err = fsSubSQL(); err != nil {
		log.Fatal().Err(err).Msg("Failed to open built-in migrations")
	}

	ctx := logger.WithContext(context.Background(), log)

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer client.Close()

	m := &migrator{client: client, projectID: *projectID, datasetID: *datasetID, appliedBy: *appliedBy, log: log}
	if err := m.run(ctx, source); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}

// fsSubSQL returns the built-in migrations.
func fsSubSQL() (fs.FS, error) {
	return fs.Sub(embedded, "sql")
}

type migrator struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	appliedBy string
	log       zerolog.Logger
}

func (m *migrator) run(ctx context.Context, source fs.FS) error {
	m.log.Info().Str("project", m.projectID).Str("dataset", m.datasetID).Msg("Connected to BigQuery")

	if err := m.ensureSchemaMigrationsTable(ctx); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	migrations, err := readMigrations(source, m.projectID, m.datasetID)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	m.log.Info().Int("count", len(migrations)).Msg("Found migration files")

	applied, err := m.appliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("get applied migrations: %w", err)
	}

	pending, err := pendingMigrations(migrations, applied)
	if err != nil {
		return err
	}

	for _, migration := range pending {
		log := m.log.With().Int("version", migration.Version).Str("name", migration.Name).Logger()
		log.Info().Msg("Applying migration")

		if err := m.exec(ctx, migration.SQL, nil); err != nil {
			return fmt.Errorf("execute migration %04d_%s: %w", migration.Version, migration.Name, err)
		}
		if err := m.recordMigration(ctx, migration); err != nil {
			return fmt.Errorf("record migration %04d_%s: %w", migration.Version, migration.Name, err)
		}

		log.Info().Msg("Migration applied")
	}

	if len(pending) == 0 {
		m.log.Info().Msg("No new migrations to apply. Database is up to date.")
	} else {
		m.log.Info().Int("applied", len(pending)).Msg("Migrations applied")
	}
	return nil
}

// readMigrations reads all migration files at the root of source, in
// version order. Placeholders are substituted after the checksum is taken
// so the same file has the same checksum in every project.
func readMigrations(source fs.FS, projectID, datasetID string) ([]Migration, error) {
	entries, err := fs.ReadDir(source, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []Migration
	seen := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matches := migrationPattern.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}

		version, _ := strconv.Atoi(matches[1])
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %04d: %s and %s", version, prev, entry.Name())
		}
		seen[version] = entry.Name()

		content, err := fs.ReadFile(source, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", entry.Name(), err)
		}

		sql := strings.ReplaceAll(string(content), "{{PROJECT_ID}}", projectID)
		sql = strings.ReplaceAll(sql, "{{DATASET_ID}}", datasetID)

		migrations = append(migrations, Migration{
			Version:  version,
			Name:     matches[2],
			Filename: entry.Name(),
			SQL:      sql,
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// pendingMigrations returns the migrations not yet applied. An applied
// migration whose file has since changed is an error.
func pendingMigrations(migrations []Migration, applied []AppliedMigration) ([]Migration, error) {
	checksums := make(map[int]string, len(applied))
	for _, am := range applied {
		checksums[am.Version] = am.Checksum
	}

	var pending []Migration
	for _, migration := range migrations {
		checksum, done := checksums[migration.Version]
		if !done {
			pending = append(pending, migration)
			continue
		}
		if checksum != "" && checksum != migration.Checksum {
			return nil, fmt.Errorf("migration %04d_%s was modified after it was applied", migration.Version, migration.Name)
		}
	}
	return pending, nil
}

func (m *migrator) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", m.projectID, m.datasetID, name)
}

// ensureSchemaMigrationsTable creates the schema_migrations table if it doesn't exist
func (m *migrator) ensureSchemaMigrationsTable(ctx context.Context) error {
	return m.exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+m.table("schema_migrations")+` (
			version       INT64 NOT NULL,
			name          STRING NOT NULL,
			applied_at    TIMESTAMP NOT NULL,
			checksum      STRING,
			applied_by    STRING
		)
	`, nil)
}

// appliedMigrations retrieves the list of already applied migrations
func (m *migrator) appliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	q := m.client.Query(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM ` + m.table("schema_migrations") + `
		ORDER BY version ASC
	`)
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	var applied []AppliedMigration
	for {
		var row struct {
			Version   int64
			Name      string
			AppliedAt time.Time
			Checksum  bigquery.NullString
			AppliedBy bigquery.NullString
		}

		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating results: %w", err)
		}

		applied = append(applied, AppliedMigration{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
			Checksum:  row.Checksum.StringVal,
			AppliedBy: row.AppliedBy.StringVal,
		})
	}

	return applied, nil
}

// recordMigration records a successfully applied migration in schema_migrations
func (m *migrator) recordMigration(ctx context.Context, migration Migration) error {
	return m.exec(ctx, `
		INSERT INTO `+m.table("schema_migrations")+`
		(version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`, []bigquery.QueryParameter{
		{Name: "version", Value: migration.Version},
		{Name: "name", Value: migration.Name},
		{Name: "checksum", Value: migration.Checksum},
		{Name: "applied_by", Value: m.appliedBy},
	})
}

// exec runs a statement and waits for it to finish.
func (m *migrator) exec(ctx context.Context, sql string, params []bigquery.QueryParameter) error {
	q := m.client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}
