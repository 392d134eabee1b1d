package api

import (
	"net/http"

	"dqdash/internal/entity/dto"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListDatasets(c *gin.Context) {
	datasets, err := h.directory.ListDatasets(c.Request.Context(), CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, datasets)
}

func (h *HTTPHandler) CreateDataset(c *gin.Context) {
	var req dto.DatasetCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.directory.CreateDataset(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) GetDataset(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.directory.GetDataset(c.Request.Context(), CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *HTTPHandler) DeleteDataset(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.directory.DeleteDataset(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) ListRules(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rules, err := h.rules.ListRules(c.Request.Context(), CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (h *HTTPHandler) CreateRule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RuleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.rules.CreateRule(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}
