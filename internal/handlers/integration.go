package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planora/event-sync-service/internal/auth"
	"github.com/planora/event-sync-service/internal/models"
	"github.com/planora/event-sync-service/internal/store"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// PageMeta computes pagination metadata for one page of the integration
// queue. returned is the number of rows actually on the page.
func PageMeta(page, pageSize, totalItems, returned int) models.Pagination {
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}
	offset := (page - 1) * pageSize
	return models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasMore:    offset+returned < totalItems,
	}
}

// pageParams reads page/pageSize query params, clamping out-of-range values
// to the documented bounds rather than rejecting them.
func pageParams(c *gin.Context) (page, pageSize int) {
	page = 1
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v > 1 {
		page = v
	}
	pageSize = defaultPageSize
	if v, err := strconv.Atoi(c.DefaultQuery("pageSize", "100")); err == nil && v > 0 {
		pageSize = v
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// RegisterIntegrationRoutes registers the export-queue endpoints consumed by
// the downstream integration pipeline.
//
// GET  /integration/events: paginated rows whose integration marker is null
// POST /integration/mark:   idempotently stamp (or clear) the marker
func RegisterIntegrationRoutes(r gin.IRoutes, st *store.PostgresStore) {
	r.GET("/integration/events", func(c *gin.Context) {
		tenantID := auth.TenantID(c)
		if tenantID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		page, pageSize := pageParams(c)
		offset := (page - 1) * pageSize
		ctx := c.Request.Context()

		total, err := st.CountPending(ctx, tenantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "integration_list_failed"})
			return
		}

		events, err := st.ListPending(ctx, tenantID, pageSize, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "integration_list_failed"})
			return
		}

		c.JSON(http.StatusOK, models.IntegrationListResponse{
			Events:     events,
			Pagination: PageMeta(page, pageSize, total, len(events)),
		})
	})

	r.POST("/integration/mark", func(c *gin.Context) {
		tenantID := auth.TenantID(c)
		if tenantID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req models.IntegrationMarkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_ids"})
			return
		}

		ids := make([]string, 0, len(req.IDs))
		for _, id := range req.IDs {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_ids"})
			return
		}

		// Three-state marker input: omitted stamps "now", explicit null
		// clears (un-marks), a dated string stamps that instant. Unlike the
		// lenient push path, a malformed string here is rejected: the caller
		// is the export pipeline and a typo must not re-stamp everything.
		var markDate *time.Time
		switch {
		case len(req.IntegrationDate) == 0:
			now := time.Now().UTC().Truncate(time.Millisecond)
			markDate = &now
		case string(req.IntegrationDate) == "null":
			markDate = nil
		default:
			var s string
			if err := json.Unmarshal(req.IntegrationDate, &s); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_integration_date"})
				return
			}
			t, err := models.ParseInstant(s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_integration_date"})
				return
			}
			markDate = &t
		}

		updated, err := st.MarkConsumed(c.Request.Context(), tenantID, ids, markDate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "integration_mark_failed"})
			return
		}

		c.JSON(http.StatusOK, models.IntegrationMarkResponse{
			Updated:         int(updated),
			IntegrationDate: markDate,
		})
	})
}
