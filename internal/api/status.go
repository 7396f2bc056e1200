package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NeoKiring/Ichimoku/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Status         string    `json:"status"`
	StartedAt      time.Time `json:"startedAt"`
	ProjectCount   int       `json:"projectCount"`
	LastImportTime string    `json:"lastImportTime"` // 最后导入时间
	DefaultFormat  string    `json:"defaultFormat"`

	LastBulkRun *store.BulkRun `json:"lastBulkRun,omitempty"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		Status:        "ok",
		StartedAt:     h.startedAt,
		DefaultFormat: h.cfg.Import.Format,
	}

	if projects, err := h.store.ListProjects(); err == nil {
		resp.ProjectCount = len(projects)
	}
	if logs, err := h.store.ListImportLogs(1); err == nil && len(logs) > 0 {
		resp.LastImportTime = logs[0].StartedAt.Format(time.RFC3339)
	}
	if run, err := h.store.GetLastBulkRun(); err == nil {
		resp.LastBulkRun = run
	}

	c.JSON(http.StatusOK, resp)
}
