package migrations

import (
	"context"
	_ "embed"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_questions.sql
var createQuestionsSQL string

//go:embed 0002_create_results.sql
var createResultsSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.Add(migrate.Migration{
		Name:    "20241122010000",
		Comment: "create_questions",
		Up:      execStatements(createQuestionsSQL),
		Down:    execStatements(`DROP TABLE IF EXISTS questions`),
	})
	Migrations.Add(migrate.Migration{
		Name:    "20241122020000",
		Comment: "create_results",
		Up:      execStatements(createResultsSQL),
		Down:    execStatements(`DROP TABLE IF EXISTS feedback; DROP TABLE IF EXISTS teams`),
	})
}

// execStatements runs each ";"-separated statement of script in order.
func execStatements(script string) migrate.MigrationFunc {
	return func(ctx context.Context, db *bun.DB) error {
		for _, stmt := range strings.Split(script, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}
}
