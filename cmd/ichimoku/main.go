package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NeoKiring/Ichimoku/internal/config"
	"github.com/NeoKiring/Ichimoku/internal/logging"
)

type rootOptions struct {
	configPath string
	dataDir    string
	logLevel   string
}

// app 各子命令共享的运行环境
type app struct {
	cfg    *config.AppConfig
	info   config.LoadConfigInfo
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	a := &app{}

	cmd := &cobra.Command{
		Use:           "ichimoku",
		Short:         "Import project schedule spreadsheets into a phase/process/task tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "配置文件路径 (默认: 可执行文件同目录 config.toml)")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "dataDir", "", "数据目录 (覆盖配置文件)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "日志级别 debug|info|warn|error")

	cmd.AddCommand(newImportCmd(a), newBulkCmd(a), newServeCmd(a))
	return cmd
}

func (a *app) load(opts rootOptions) error {
	var err error
	if opts.configPath != "" {
		a.cfg, a.info, err = config.LoadConfigFrom(opts.configPath)
	} else {
		a.cfg, a.info, err = config.LoadConfigWithInfo()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if opts.dataDir != "" {
		a.cfg.Data.DataDir = opts.dataDir
	}
	if opts.logLevel != "" {
		a.cfg.Log.Level = opts.logLevel
	}
	a.logger = logging.Setup(a.cfg.Log.Level, a.cfg.Log.Format)
	a.logger.Debug("config loaded", "path", a.info.Path, "found", a.info.FileFound)
	return nil
}

// dataDir 确保数据目录存在并返回绝对路径
func (a *app) dataDir() (string, error) {
	dir, err := config.EnsureDataDir(a.cfg)
	if err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}
