package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/posrecon/internal/app"
	"github.com/MrJamesThe3rd/posrecon/internal/importer"
	"github.com/MrJamesThe3rd/posrecon/internal/importer/record"
	"github.com/MrJamesThe3rd/posrecon/internal/redisconn"
	stagingStore "github.com/MrJamesThe3rd/posrecon/internal/staging/store"
	"github.com/MrJamesThe3rd/posrecon/internal/upload"
)

func (c *cli) newIngestCmd() *cobra.Command {
	var (
		stage     bool
		printRows bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Validate a POS export, optionally staging its accepted rows",
		Long: `Ingest parses a delimited or xlsx POS export and prints the accepted and
rejected row counts with a reason for every rejected line.

Without --stage nothing is written anywhere.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			imp, _, err := app.NewImporter(c.cfg.Ingest.MappingFile, c.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if stage {
				return c.stage(cmd, imp, filepath.Base(args[0]), content)
			}

			report, err := imp.Ingest(content)
			if err != nil && !errors.Is(err, importer.ErrNoRowsAccepted) {
				return err
			}

			writeReport(out, report)

			if printRows {
				for _, row := range report.Accepted {
					fmt.Fprintln(out, record.FormatLine(row.Transaction, '|'))
				}
			}

			return err
		},
	}

	cmd.Flags().BoolVar(&stage, "stage", false, "write accepted rows to the staging store")
	cmd.Flags().BoolVar(&printRows, "print", false, "print accepted rows in the canonical pipe-delimited layout")

	return cmd
}

func (c *cli) stage(cmd *cobra.Command, imp *importer.Service, filename string, content []byte) error {
	conn, err := redisconn.New(redisconn.Options{
		URL:         c.cfg.Redis.URL,
		Addr:        c.cfg.Redis.Addr,
		Password:    c.cfg.Redis.Password,
		DB:          c.cfg.Redis.DB,
		DialTimeout: c.cfg.Redis.DialTimeout,
	}, c.logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	svc := upload.NewService(imp, stagingStore.New(conn, c.logger), nil, nil, c.logger)

	res, err := svc.Upload(cmd.Context(), filename, content)
	if res != nil {
		writeReport(cmd.OutOrStdout(), res.Report)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", res.Status, res.Message)

		for _, f := range res.StageFailures {
			fmt.Fprintf(cmd.OutOrStdout(), "  stage failed line %d: %v\n", f.Line, f.Err)
		}
	}

	return err
}

func writeReport(w io.Writer, r *importer.Report) {
	fmt.Fprintf(w, "format: %s  encoding: %s  delimiter: %q  header: %t\n", r.Format, r.Encoding, r.Delimiter, r.HasHeader)
	fmt.Fprintf(w, "accepted: %d  rejected: %d\n", len(r.Accepted), len(r.Rejected))

	for _, re := range r.Rejected {
		fmt.Fprintf(w, "  line %d: %s\n", re.Line, re.Reason)
	}
}
