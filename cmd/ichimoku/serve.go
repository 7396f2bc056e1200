package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/NeoKiring/Ichimoku/internal/server"
	"github.com/NeoKiring/Ichimoku/internal/util"
)

type serveOptions struct {
	port int
	dev  bool
	open bool
}

func newServeCmd(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP import service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().IntVar(&opts.port, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "开发模式")
	cmd.Flags().BoolVar(&opts.open, "open", false, "启动后打开浏览器")
	return cmd
}

func runServe(ctx context.Context, a *app, opts serveOptions) error {
	cfg := a.cfg
	// 命令行参数覆盖配置
	if opts.port > 0 && !a.info.PortSpecified {
		cfg.Server.Port = opts.port
	}
	if opts.dev {
		cfg.Server.DevMode = true
	}

	dataDir, err := a.dataDir()
	if err != nil {
		return err
	}
	a.logger.Info("data directory ready", "path", dataDir)

	srv, err := server.NewServer(cfg, dataDir, a.logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "port", cfg.Server.Port, "dev", cfg.Server.DevMode)
		errCh <- httpSrv.ListenAndServe()
	}()

	url := util.ServerURL(cfg.Server.Port) + "/api/status"
	if opts.open {
		if err := util.OpenBrowserWithFallback(url); err != nil {
			a.logger.Warn("open browser failed", "url", url, "error", err)
		}
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
