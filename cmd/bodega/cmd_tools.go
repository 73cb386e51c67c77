package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/app/reports"
	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/internal/kernel"
	"github.com/shashiranjanraj/bodega/pkg/database"
	"github.com/shashiranjanraj/bodega/pkg/storage"
)

var tokenEmail string

// bodega token:issue --email admin@example.com
var tokenIssueCmd = &cobra.Command{
	Use:   "token:issue",
	Short: "Mint an access and refresh token for an operator",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenEmail == "" {
			return fmt.Errorf("--email is required")
		}
		if err := bootDB(); err != nil {
			return err
		}
		pair, err := services.NewAuthService().IssueFor(cmd.Context(), tokenEmail)
		if err != nil {
			return err
		}
		ok("tokens for %s (expires in %ds)", tokenEmail, pair.ExpiresIn)
		fmt.Println("access:  " + pair.AccessToken)
		fmt.Println("refresh: " + pair.RefreshToken)
		return nil
	},
}

var userInput struct {
	name, email, password, role string
}

// bodega user:create --email ops@example.com --password secret
var userCreateCmd = &cobra.Command{
	Use:   "user:create",
	Short: "Create an operator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userInput.email == "" || userInput.password == "" {
			return fmt.Errorf("--email and --password are required")
		}
		if err := bootDB(); err != nil {
			return err
		}
		name := userInput.name
		if name == "" {
			name = userInput.email
		}
		u, err := services.NewAuthService().CreateUser(cmd.Context(), name, userInput.email, userInput.password, userInput.role)
		if err != nil {
			return err
		}
		ok("created %s (%s) with role %s", u.Email, u.ID, u.Role)
		return nil
	},
}

var (
	reportSource string
	reportParams []string
	reportDisk   string
)

// reportArgs turns --param key=value flags into query values.
func reportArgs() (url.Values, error) {
	q := url.Values{}
	for _, kv := range reportParams {
		k, v, found := strings.Cut(kv, "=")
		if !found || k == "" {
			return nil, fmt.Errorf("--param %q is not key=value", kv)
		}
		q.Add(k, v)
	}
	return q, nil
}

// bodega report:export stock-analysis --param min_stock=50 --disk s3
var reportExportCmd = &cobra.Command{
	Use:       "report:export <name>",
	Short:     "Run a report and store it as JSON on a storage disk",
	Args:      cobra.ExactArgs(1),
	ValidArgs: reports.Names,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		q, err := reportArgs()
		if err != nil {
			return err
		}
		p, err := reports.ParseParams(name, q)
		if err != nil {
			return err
		}
		source, err := reports.ParseSource(reportSource)
		if err != nil {
			return err
		}

		k, err := kernel.Boot()
		if err != nil {
			return err
		}
		defer k.Close()

		disk, err := storage.Default()
		if reportDisk != "" {
			disk, err = storage.Use(reportDisk)
		}
		if err != nil {
			return err
		}

		exp, err := reports.NewService(database.DB).Export(cmd.Context(), disk, name, source, p)
		if err != nil {
			return err
		}
		ok("%s: %d row(s)", name, exp.Rows)
		fmt.Println("path: " + exp.Path)
		fmt.Println("url:  " + exp.URL)
		return nil
	},
}

// bodega report:compare top-selling --param limit=5
var reportCompareCmd = &cobra.Command{
	Use:       "report:compare <name>",
	Short:     "Run a report from both sources and compare rows, timing and SQL",
	Args:      cobra.ExactArgs(1),
	ValidArgs: reports.Names,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		q, err := reportArgs()
		if err != nil {
			return err
		}
		p, err := reports.ParseParams(name, q)
		if err != nil {
			return err
		}
		if err := bootDB(); err != nil {
			return err
		}

		svc := reports.NewService(database.DB)
		counts := map[reports.Source]int{}
		for _, source := range []reports.Source{reports.SourceORM, reports.SourceSQL} {
			start := time.Now()
			res, err := svc.Run(cmd.Context(), name, source, p)
			if err != nil {
				warn("%s: %v", source, err)
				continue
			}
			counts[source] = res.Count
			title("%s: %d row(s) in %s", source, res.Count, time.Since(start).Round(time.Microsecond))
			muted("%s", res.SQLQuery)
		}
		if len(counts) < 2 {
			return fmt.Errorf("report %s: a source failed", name)
		}
		if counts[reports.SourceORM] != counts[reports.SourceSQL] {
			return fmt.Errorf("report %s: row counts differ: orm=%d sql=%d", name, counts[reports.SourceORM], counts[reports.SourceSQL])
		}
		ok("row counts match")
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenEmail, "email", "", "operator email")

	f := userCreateCmd.Flags()
	f.StringVar(&userInput.name, "name", "", "display name (defaults to the email)")
	f.StringVar(&userInput.email, "email", "", "login email")
	f.StringVar(&userInput.password, "password", "", "login password")
	f.StringVar(&userInput.role, "role", models.RoleOperator, "operator or admin")

	for _, c := range []*cobra.Command{reportExportCmd, reportCompareCmd} {
		c.Flags().StringArrayVarP(&reportParams, "param", "p", nil, "report argument as key=value, repeatable")
	}
	reportExportCmd.Flags().StringVar(&reportSource, "source", "orm", "orm or sql")
	reportExportCmd.Flags().StringVar(&reportDisk, "disk", "", "storage disk (defaults to STORAGE_DISK)")
}
