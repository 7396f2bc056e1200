package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NeoKiring/Ichimoku/internal/config"
	"github.com/NeoKiring/Ichimoku/internal/importer"
	"github.com/NeoKiring/Ichimoku/internal/store"
)

// Handler API 处理器
type Handler struct {
	store       *store.Store
	cfg         *config.AppConfig
	coordinator *importer.Coordinator
	uploadDir   string
	logger      *slog.Logger
	startedAt   time.Time
}

// NewHandler 创建 API 处理器，uploadDir 为空时使用系统临时目录
func NewHandler(st *store.Store, cfg *config.AppConfig, uploadDir string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:       st,
		cfg:         cfg,
		coordinator: importer.NewCoordinator(importer.NewPipeline(logger), st, logger),
		uploadDir:   uploadDir,
		logger:      logger,
		startedAt:   time.Now(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 导入
	router.POST("/import", h.Import)
	router.POST("/import/bulk", h.BulkImport)
	router.GET("/imports", h.ListImports)
	router.GET("/imports/stats", h.ImportStats)

	// 项目
	router.GET("/projects", h.ListProjects)
	router.GET("/projects/:id", h.GetProject)
	router.DELETE("/projects/:id", h.DeleteProject)
}
