package api

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"dqdash/internal/service"
	"dqdash/internal/storage"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) publicURL(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	base := h.storagePublicBase
	if base == "" {
		base = "/files"
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), strings.TrimLeft(trimmed, "/"))
}

// DownloadExport 下载本地存储的快照；需要对应数据集的访问权限
func (h *HTTPHandler) DownloadExport(c *gin.Context) {
	provider, ok := h.storage.(storage.LocalBaseDirProvider)
	if !ok {
		ErrorResponse(c, http.StatusNotFound, ErrCodeNotFound, "file not found")
		return
	}

	key := strings.TrimPrefix(path.Clean("/"+c.Param("filepath")), "/")
	datasetID := service.ExportDatasetID(key)
	if datasetID == 0 {
		ErrorResponse(c, http.StatusNotFound, ErrCodeNotFound, "file not found")
		return
	}
	if err := service.RequireDatasetAccess(c.Request.Context(), h.repo, datasetID, CurrentUser(c)); err != nil {
		respondError(c, err)
		return
	}

	fullPath := filepath.Join(provider.LocalBaseDir(), filepath.FromSlash(key))
	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		ErrorResponse(c, http.StatusNotFound, ErrCodeNotFound, "file not found")
		return
	}
	c.Header("Content-Type", "application/json")
	c.FileAttachment(fullPath, path.Base(key))
}
