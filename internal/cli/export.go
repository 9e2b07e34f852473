package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"prodexport/internal/secret"
	"prodexport/internal/service"
)

var (
	exportTestMode bool
	exportOffset   int64
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Generate the product id export file and stage it",
	Long: `Generates the product id export file from the configured product pool.

Unless --test-mode is set, the file is gzipped, both artifacts are staged
into the object store and the local files are removed afterwards. In test
mode nothing is staged and the generated file is left on disk.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportTestMode, "test-mode", false, "skip staging and keep the local export file")
	exportCmd.Flags().Int64Var(&exportOffset, "offset", 0, "start offset in the product pool (overrides export.offset)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	offset := cfg.Export.Offset
	if cmd.Flags().Changed("offset") {
		offset = exportOffset
	}

	ctx := cmd.Context()
	rt, err := service.Build(ctx, cfg, secret.NewEnvStore(), service.BuildOptions{SkipStaging: exportTestMode})
	if err != nil {
		return reportFailure(err)
	}
	defer rt.Close(ctx)

	res, err := rt.Service.Run(ctx, service.RunInput{Offset: offset, TestMode: exportTestMode})
	if err != nil {
		return reportFailure(err)
	}

	if exportTestMode {
		cmd.Printf("Export file kept at %s\n", res.FilePath)
	}
	cmd.Println("Generated export file successfully Done.")
	return nil
}

// reportFailure logs the failure with its stack trace.
func reportFailure(err error) error {
	slog.Error("Failed to generate csv export file.",
		"error", err.Error(),
		"trace", fmt.Sprintf("%+v", err),
	)
	return errReported
}
