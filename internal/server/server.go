package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NeoKiring/Ichimoku/internal/api"
	"github.com/NeoKiring/Ichimoku/internal/config"
	"github.com/NeoKiring/Ichimoku/internal/store"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
	logger *slog.Logger
}

// NewServer 创建服务器，dataDir 下存放数据库与上传临时文件
func NewServer(cfg *config.AppConfig, dataDir string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	sqliteStore, err := store.New(config.DatabasePath(dataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return newServer(cfg, sqliteStore, filepath.Join(dataDir, "uploads"), logger), nil
}

// NewWithStore 使用已有 store 创建服务器（测试用）
func NewWithStore(cfg *config.AppConfig, st *store.Store, uploadDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return newServer(cfg, st, uploadDir, logger)
}

func newServer(cfg *config.AppConfig, st *store.Store, uploadDir string, logger *slog.Logger) *Server {
	s := &Server{
		router: gin.New(),
		store:  st,
		api:    api.NewHandler(st, cfg, uploadDir, logger),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), s.requestLogger())

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// requestLogger 使用 slog 记录请求
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Handler 返回 http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close 关闭存储
func (s *Server) Close() error {
	return s.store.Close()
}
