package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/skill-scout/internal/models"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest status spreadsheets and statements of work",
	Long:  "Parses each file (.xlsx, .doc, .docx or .pdf), upserts the extracted records and prints a per-file report.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	container, log, cleanup, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	var reports []*models.IngestionReport
	failed := 0
	for _, path := range args {
		report, err := ingestFile(cmd, container.Ingestion.Ingest, path)
		if err != nil {
			log.Error("ingestion failed", zap.String("file", path), zap.Error(err))
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: upload unsuccessful: %v\n", filepath.Base(path), err)
			failed++
			continue
		}
		reports = append(reports, report)
	}

	if jsonOutput {
		if err := printJSON(cmd, reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): total=%d created=%d updated=%d unchanged=%d incomplete=%d missing_descriptions=%d failed=%d\n",
				r.OriginalName, r.Kind, r.Total, r.Created, r.Updated, r.Unchanged, r.Incomplete, r.MissingDescriptions, r.Failed)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to ingest", failed, len(args))
	}
	return nil
}

type ingestFunc func(ctx context.Context, filename string, r io.Reader) (*models.IngestionReport, error)

func ingestFile(cmd *cobra.Command, ingest ingestFunc, path string) (*models.IngestionReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ingest(cmd.Context(), filepath.Base(path), f)
}
