package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iacastillo90/petcare-booking/internal/audit"
	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/httperr"
	"github.com/iacastillo90/petcare-booking/internal/middleware"
	"github.com/iacastillo90/petcare-booking/internal/models"
)

type AuditReader interface {
	List(ctx context.Context, q audit.Query) ([]models.AuditLog, int64, error)
}

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	reader AuditReader
	perms  domain.Permissions
}

func NewAuditLogsHandler(reader AuditReader, perms domain.Permissions) *AuditLogsHandler {
	return &AuditLogsHandler{reader: reader, perms: perms}
}

// List pages through the audit trail. Administrators only.
func (h *AuditLogsHandler) List(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	admin, err := h.perms.IsAdmin(c.Request.Context(), actor)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	if !admin {
		httperr.Respond(c, &domain.PermissionDeniedError{ActorID: actor.ID, Action: "read audit logs"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := audit.Query{
		Action: c.Query("action"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if raw := c.Query("booking_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_booking_id", "booking_id must be a UUID")
			return
		}
		q.EntityID = &id
	}
	if raw := c.Query("from"); raw != "" {
		if from, err := parseInstant(raw); err == nil {
			q.From = from
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err := parseInstant(raw); err == nil {
			if len(raw) == len(dateLayout) {
				to = to.Add(24 * time.Hour)
			}
			q.To = to
		}
	}

	logs, total, err := h.reader.List(c.Request.Context(), q)
	if err != nil {
		httperr.Internal(c, "audit_list_failed", "Failed to list audit logs.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  logs,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}
