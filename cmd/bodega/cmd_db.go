package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bodega/app/reports"
	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/database/seeders"
	"github.com/shashiranjanraj/bodega/pkg/database"
	"github.com/shashiranjanraj/bodega/pkg/migration"

	_ "github.com/shashiranjanraj/bodega/database/migrations"
)

// bootDB loads config and opens the database; nothing else is connected.
func bootDB() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return database.Connect()
}

// bodega migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		title("Running migrations on %s", database.Dialect(database.DB))
		n, err := migration.New(database.DB).WithOutput(cmd.OutOrStdout()).Run()
		if err != nil {
			return err
		}
		ok("%d migration(s) ran", n)
		return nil
	},
}

// bodega migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		n, err := migration.New(database.DB).WithOutput(cmd.OutOrStdout()).Rollback()
		if err != nil {
			return err
		}
		ok("%d migration(s) rolled back", n)
		return nil
	},
}

// bodega migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show which migrations have run",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		status, err := migration.New(database.DB).Status()
		if err != nil {
			return err
		}
		rows := [][]string{{"MIGRATION", "STATUS", "BATCH"}}
		for _, s := range status {
			state, batch := warnStyle.Render("pending"), "-"
			if s.Ran {
				state, batch = okStyle.Render("ran"), strconv.Itoa(s.Batch)
			}
			rows = append(rows, []string{s.Name, state, batch})
		}
		table(rows)
		return nil
	},
}

var (
	seedClear bool
	seedOnly  []string
)

// bodega seed [--clear]
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		ctx := cmd.Context()
		if seedClear {
			warn("Deleting existing inventory data")
			if err := seeders.Clear(ctx, database.DB); err != nil {
				return err
			}
		}
		ran, err := seeders.Run(ctx, database.DB, seedOnly...)
		if err != nil {
			return err
		}
		for _, name := range ran {
			ok("seeder %s", name)
		}

		counts, err := seeders.Counts(ctx, database.DB)
		if err != nil {
			return err
		}
		rows := [][]string{{"TABLE", "ROWS"}}
		for _, c := range counts {
			rows = append(rows, []string{c.Table, strconv.FormatInt(c.Rows, 10)})
		}
		table(rows)
		muted("operator login: %s / ADMIN_PASSWORD", seeders.AdminEmail)
		return nil
	},
}

var (
	sqlFunctionsAction string
	sqlFunctionsTest   bool
)

// bodega sql:functions --action create|drop|recreate [--test]
var sqlFunctionsCmd = &cobra.Command{
	Use:   "sql:functions",
	Short: "Manage the postgres report functions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		if d := database.Dialect(database.DB); d != "postgres" {
			return fmt.Errorf("report functions need postgres, DB_DRIVER is %s", d)
		}

		db := database.DB
		switch sqlFunctionsAction {
		case "create":
			if err := reports.InstallFunctions(db); err != nil {
				return err
			}
			ok("created %d functions", len(reports.Functions))
		case "drop":
			if err := reports.DropFunctions(db); err != nil {
				return err
			}
			ok("dropped %d functions", len(reports.Functions))
		case "recreate":
			if err := reports.DropFunctions(db); err != nil {
				return err
			}
			if err := reports.InstallFunctions(db); err != nil {
				return err
			}
			ok("recreated %d functions", len(reports.Functions))
		default:
			return fmt.Errorf("unknown --action %q (create, drop, recreate)", sqlFunctionsAction)
		}

		if sqlFunctionsTest {
			return testFunctions(cmd.Context())
		}
		return nil
	},
}

func testFunctions(ctx context.Context) error {
	title("Testing functions with sample arguments")
	for _, fn := range reports.Functions {
		var rows []map[string]any
		if err := database.DB.WithContext(ctx).Raw(fn.Sample).Scan(&rows).Error; err != nil {
			fmt.Println(failStyle.Render("✘ ") + fn.Name + ": " + err.Error())
			continue
		}
		ok("%s: %d row(s)", fn.Name, len(rows))
	}
	return nil
}

func init() {
	seedCmd.Flags().BoolVar(&seedClear, "clear", false, "delete existing inventory data first")
	seedCmd.Flags().StringSliceVar(&seedOnly, "only", nil, "run only these seeders")

	sqlFunctionsCmd.Flags().StringVar(&sqlFunctionsAction, "action", "create", "create, drop or recreate")
	sqlFunctionsCmd.Flags().BoolVar(&sqlFunctionsTest, "test", false, "run each function with sample arguments")
}
