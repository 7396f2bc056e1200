package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/NeoKiring/Ichimoku/internal/importer"
	"github.com/NeoKiring/Ichimoku/internal/parser"
)

type bulkOptions struct {
	format string
	marker string
	save   bool
	report string
}

func newBulkCmd(a *app) *cobra.Command {
	var opts bulkOptions

	cmd := &cobra.Command{
		Use:   "bulk <dir>",
		Short: "Import every marked workbook found one level below dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(cmd.Context(), cmd.OutOrStdout(), a, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "", "布局 auto|standard|ms_project|simple (默认取配置)")
	cmd.Flags().StringVar(&opts.marker, "marker", "", "文件名前缀 (默认取配置)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "保存到数据库")
	cmd.Flags().StringVar(&opts.report, "report", "", "报告输出文件 (.json/.yaml)")
	return cmd
}

func runBulk(ctx context.Context, out io.Writer, a *app, root string, opts bulkOptions) error {
	variant, err := parser.ParseFormatSelector(firstNonEmpty(opts.format, a.cfg.Import.Format))
	if err != nil {
		return err
	}

	st, err := a.openStore(opts.save)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	coord := importer.NewCoordinator(importer.NewPipeline(a.logger), st, a.logger)
	var report *importer.BatchReport
	for evt := range coord.Run(ctx, importer.BulkOptions{
		RootDir:    root,
		Format:     variant,
		Marker:     firstNonEmpty(opts.marker, a.cfg.Import.BulkMarker),
		Extensions: a.cfg.Import.Extensions,
		Save:       opts.save,
	}) {
		switch evt.Type {
		case importer.EventDone:
			report, _ = evt.Data.(*importer.BatchReport)
		case importer.EventFileDone, importer.EventWarning, importer.EventError:
			fmt.Fprintln(out, evt.Message)
		}
	}
	if report == nil {
		return fmt.Errorf("bulk import interrupted: %w", ctx.Err())
	}

	fmt.Fprintf(out, "共 %d 个文件: 成功 %d, 失败 %d (%s)\n",
		report.TotalFiles, report.ImportedFiles, report.FailedFiles, report.Duration.Round(1e6))

	if opts.report != "" {
		if err := report.WriteFile(opts.report); err != nil {
			return err
		}
		fmt.Fprintf(out, "报告已写入: %s\n", opts.report)
	}
	if report.Error != "" {
		return fmt.Errorf("bulk import: %s", report.Error)
	}
	return nil
}
