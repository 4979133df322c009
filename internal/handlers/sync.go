package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planora/event-sync-service/internal/auth"
	"github.com/planora/event-sync-service/internal/models"
	"github.com/planora/event-sync-service/internal/store"
)

// RegisterSyncRoutes registers the push+pull synchronization endpoint.
//
// POST /sync
//   - Requires X-API-Key (tenant context)
//   - Accepts an optional batch of local mutations and an optional cursor
//   - Applies the batch, then answers with the pull delta and a serverTime
//     the client must use as its next cursor
//
// Push and pull happen in the same request so a client's own writes are
// neither echoed back nor silently omitted from the response.
func RegisterSyncRoutes(r gin.IRoutes, st *store.PostgresStore) {
	r.POST("/sync", func(c *gin.Context) {
		tenantID := auth.TenantID(c)
		if tenantID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req models.SyncRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
			return
		}

		// The cursor is optional, but when present it must parse. A client
		// that sends garbage here would otherwise silently re-pull the world.
		var since *time.Time
		if s := strings.TrimSpace(req.Since); s != "" {
			t, err := models.ParseInstant(s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_since"})
				return
			}
			since = &t
		}

		now := time.Now().UTC()
		batch := models.NormalizeBatch(req.Events, now)

		ctx := c.Request.Context()
		if err := st.ApplyBatch(ctx, tenantID, batch); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sync_failed"})
			return
		}

		// Cursor for the NEXT request, read after the merge commits so the
		// client cannot miss rows written during its own request. Truncated
		// to a printable instant clients can echo back verbatim.
		serverTime := time.Now().UTC().Truncate(time.Millisecond)

		rows, err := st.ChangesSince(ctx, tenantID, since)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sync_failed"})
			return
		}

		// Batches may repeat an id; suppression compares against the newest
		// timestamp the caller pushed for it.
		pushed := make(map[string]time.Time, len(batch))
		for _, e := range batch {
			if cur, ok := pushed[e.ID]; !ok || e.UpdatedAt.After(cur) {
				pushed[e.ID] = e.UpdatedAt
			}
		}

		c.JSON(http.StatusOK, models.SyncResponse{
			Events:     store.FilterEcho(rows, pushed),
			ServerTime: serverTime.Format(time.RFC3339Nano),
		})
	})
}
