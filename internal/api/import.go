package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/NeoKiring/Ichimoku/internal/importer"
	"github.com/NeoKiring/Ichimoku/internal/logging"
	"github.com/NeoKiring/Ichimoku/internal/model"
	"github.com/NeoKiring/Ichimoku/internal/parser"
)

// ImportResponse 单文件导入响应
type ImportResponse struct {
	Summary model.ProjectSummary `json:"summary"`
	Result  *importer.Result     `json:"result"`
	Saved   bool                 `json:"saved"`
}

// BulkImportRequest 批量导入请求
type BulkImportRequest struct {
	Directory string `json:"directory" binding:"required"`
	Format    string `json:"format"`
	Marker    string `json:"marker"`
	Save      *bool  `json:"save"`
}

// Import 导入单个 Excel 文件
// POST /api/import (multipart: file, format, save)
func (h *Handler) Import(c *gin.Context) {
	uploadedFile, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return
	}

	variant, err := parser.ParseFormatSelector(c.DefaultPostForm("format", h.cfg.Import.Format))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	save := c.DefaultPostForm("save", "true") == "true"

	// 保存到临时目录，保留原文件名
	if h.uploadDir != "" {
		if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "创建上传目录失败"})
			return
		}
	}
	tempDir, err := os.MkdirTemp(h.uploadDir, "upload-")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建临时目录失败"})
		return
	}
	defer os.RemoveAll(tempDir)

	tempFilePath := filepath.Join(tempDir, filepath.Base(uploadedFile.Filename))
	if err := c.SaveUploadedFile(uploadedFile, tempFilePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return
	}

	logger := logging.WithFields(h.logger, "file", uploadedFile.Filename, "format", variant)
	res, err := h.coordinator.ImportOne(tempFilePath, variant, save)
	switch {
	case err != nil && res == nil:
		logger.Warn("import rejected", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, importer.ErrWorkbookLoad) || errors.Is(err, importer.ErrNoUsableData) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	case err != nil:
		// 导入成功但保存失败
		logger.Error("save imported project failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": res})
		return
	}

	c.JSON(http.StatusOK, ImportResponse{
		Summary: res.Project.Summary(),
		Result:  res,
		Saved:   save,
	})
}

// BulkImport 批量导入目录 (SSE 流式响应)
// POST /api/import/bulk
func (h *Handler) BulkImport(c *gin.Context) {
	var req BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求参数"})
		return
	}

	variant, err := parser.ParseFormatSelector(firstNonEmpty(req.Format, h.cfg.Import.Format))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if info, err := os.Stat(req.Directory); err != nil || !info.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("目录不存在: %s", req.Directory)})
		return
	}

	save := true
	if req.Save != nil {
		save = *req.Save
	}

	// 流式发送进度事件
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	progressChan := h.coordinator.Run(c.Request.Context(), importer.BulkOptions{
		RootDir:    req.Directory,
		Format:     variant,
		Marker:     firstNonEmpty(req.Marker, h.cfg.Import.BulkMarker),
		Extensions: h.cfg.Import.Extensions,
		Save:       save,
	})

	for event := range progressChan {
		// 序列化事件为 JSON
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// ListImports 导入日志
// GET /api/imports
func (h *Handler) ListImports(c *gin.Context) {
	logs, err := h.store.ListImportLogs(100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}

// ImportStats 按月导入统计
// GET /api/imports/stats
func (h *Handler) ImportStats(c *gin.Context) {
	stats, err := h.store.ListImportMonths()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": stats})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
