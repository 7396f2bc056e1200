package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/NeoKiring/Ichimoku/internal/config"
	"github.com/NeoKiring/Ichimoku/internal/importer"
	"github.com/NeoKiring/Ichimoku/internal/model"
	"github.com/NeoKiring/Ichimoku/internal/parser"
	"github.com/NeoKiring/Ichimoku/internal/store"
	"github.com/NeoKiring/Ichimoku/internal/util"
)

type importOptions struct {
	format string
	save   bool
	json   bool
}

func newImportCmd(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a single schedule workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.OutOrStdout(), a, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "", "布局 auto|standard|ms_project|simple (默认取配置)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "保存到数据库")
	cmd.Flags().BoolVar(&opts.json, "json", false, "以 JSON 输出完整项目树")
	return cmd
}

func runImport(out io.Writer, a *app, path string, opts importOptions) error {
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
	res, err := coord.ImportOne(path, variant, opts.save)
	if res == nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(res); encErr != nil {
			return encErr
		}
	} else {
		printResult(out, res)
	}
	// 导入成功但保存失败
	return err
}

// openStore enabled 为 false 时返回 nil
func (a *app) openStore(enabled bool) (*store.Store, error) {
	if !enabled {
		return nil, nil
	}
	dir, err := a.dataDir()
	if err != nil {
		return nil, err
	}
	st, err := store.New(config.DatabasePath(dir))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

func printResult(out io.Writer, res *importer.Result) {
	sum := res.Project.Summary()
	fmt.Fprintf(out, "项目: %s\n", sum.Name)
	fmt.Fprintf(out, "布局: %s (sheet %q, 表头行 %d, 方式 %s)\n", res.Format, res.SheetName, res.HeaderRow, res.Strategy)
	fmt.Fprintf(out, "阶段 %d / 工序 %d / 任务 %d, 进度 %s, 状态 %s\n",
		sum.PhaseCount, sum.ProcessCount, sum.TaskCount, util.FormatProgress(sum.Progress), sum.Status)

	for _, ph := range res.Project.Phases {
		fmt.Fprintf(out, "  %s (%s)\n", ph.Name, util.FormatProgress(ph.Progress()))
		for _, proc := range ph.Processes {
			fmt.Fprintf(out, "    - %s%s\n", proc.Name, processDetail(proc))
		}
	}

	if len(res.Diagnostics) > 0 {
		fmt.Fprintf(out, "诊断 %d 条:\n", len(res.Diagnostics))
		for _, d := range res.Diagnostics {
			fmt.Fprintf(out, "  %s\n", d)
		}
	}
}

func processDetail(p *model.Process) string {
	detail := ""
	if p.Assignee != "" {
		detail += " @" + p.Assignee
	}
	if p.StartDate != nil || p.EndDate != nil {
		detail += fmt.Sprintf(" [%s ~ %s]", dateOrDash(p.StartDate), dateOrDash(p.EndDate))
	}
	if len(p.Tasks) > 0 {
		detail += " " + util.FormatProgress(p.Progress())
	}
	return detail
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return parser.FormatDate(*t)
}
