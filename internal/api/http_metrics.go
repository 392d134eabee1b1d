package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"dqdash/internal/entity"
	"dqdash/internal/entity/common"
	"dqdash/internal/entity/converter"
	"dqdash/internal/entity/dto"

	"github.com/gin-gonic/gin"
)

// 查询参数接受的时间格式；不带时区的按 UTC 处理
var queryTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseQueryTime(value string) (time.Time, bool) {
	for _, layout := range queryTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// queryDatasetID 读取必填的 dataset_id 查询参数，失败时已写出 422
func queryDatasetID(c *gin.Context) (uint, bool) {
	raw := strings.TrimSpace(c.Query("dataset_id"))
	if raw == "" {
		ValidationFailed(c, "dataset_id is required")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		ValidationFailed(c, "invalid dataset_id")
		return 0, false
	}
	return uint(id), true
}

func (h *HTTPHandler) IngestMetrics(c *gin.Context) {
	var items []dto.MetricRecordCreate
	if err := c.ShouldBindJSON(&items); err != nil {
		bindError(c, err)
		return
	}

	records, err := h.metricSvc.Ingest(c.Request.Context(), CurrentUser(c), items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, converter.MetricsToOut(records))
}

func (h *HTTPHandler) LatestSummary(c *gin.Context) {
	datasetID, ok := queryDatasetID(c)
	if !ok {
		return
	}
	summary, err := h.metricSvc.LatestSummary(c.Request.Context(), CurrentUser(c), datasetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *HTTPHandler) Timeseries(c *gin.Context) {
	datasetID, ok := queryDatasetID(c)
	if !ok {
		return
	}
	filter := entity.MetricFilter{DatasetID: datasetID}

	if raw, ok := c.GetQuery("dimension"); ok {
		dim, err := common.ParseDimension(raw)
		if err != nil {
			ValidationFailed(c, err.Error())
			return
		}
		filter.Dimension = &dim
	}
	if raw, ok := c.GetQuery("metric_name"); ok {
		name := strings.TrimSpace(raw)
		filter.MetricName = &name
	}
	for _, bound := range []struct {
		param  string
		target **time.Time
	}{
		{param: "start", target: &filter.Start},
		{param: "end", target: &filter.End},
	} {
		raw := strings.TrimSpace(c.Query(bound.param))
		if raw == "" {
			continue
		}
		t, ok := parseQueryTime(raw)
		if !ok {
			ValidationFailed(c, "invalid "+bound.param+" timestamp")
			return
		}
		*bound.target = &t
	}

	series, err := h.metricSvc.Timeseries(c.Request.Context(), CurrentUser(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *HTTPHandler) ExportSnapshot(c *gin.Context) {
	datasetID, ok := queryDatasetID(c)
	if !ok {
		return
	}
	out, err := h.exports.ExportSnapshot(c.Request.Context(), CurrentUser(c), datasetID)
	if err != nil {
		respondError(c, err)
		return
	}
	out.URL = h.publicURL(out.Key)
	c.JSON(http.StatusCreated, out)
}
