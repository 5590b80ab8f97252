package registrationapi

import (
	"context"
	"encoding/json"
	"net"
	"strings"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/reservation"
)

const (
	actionCommitted    = "registration.committed"
	actionLockAttached = "registration.lock_attached"
	actionTeamUpdated  = "registration.team_updated"
	actionWithdrawn    = "registration.withdrawn"
)

// auditEntry is the request context recorded with every audit row.
type auditEntry struct {
	requestID string
	ip        net.IP
	ua        string
}

func (h *Handler) auditCommitted(ctx context.Context, e auditEntry, rec reservation.Record) {
	h.insertAudit(ctx, actionCommitted, rec.HolderID, rec.ResourceID(), e, map[string]any{
		"registration_id":   rec.ID,
		"capacity_snapshot": lockSnapshot(rec),
	})
}

func (h *Handler) auditLockAttached(ctx context.Context, e auditEntry, rec reservation.Record) {
	h.insertAudit(ctx, actionLockAttached, rec.HolderID, rec.ResourceID(), e, map[string]any{
		"registration_id":   rec.ID,
		"capacity_snapshot": lockSnapshot(rec),
	})
}

func (h *Handler) auditTeamUpdated(ctx context.Context, e auditEntry, rec reservation.Record) {
	h.insertAudit(ctx, actionTeamUpdated, rec.HolderID, rec.ResourceID(), e, map[string]any{
		"registration_id": rec.ID,
	})
}

func (h *Handler) auditWithdrawn(ctx context.Context, e auditEntry, rec reservation.Record) {
	h.insertAudit(ctx, actionWithdrawn, rec.HolderID, rec.ResourceID(), e, map[string]any{
		"registration_id": rec.ID,
		"team_name":       rec.Team.Name,
	})
}

func (h *Handler) insertAudit(ctx context.Context, action, holderID, resourceID string, e auditEntry, meta map[string]any) {
	if h == nil || h.pool == nil {
		return
	}

	action = strings.TrimSpace(action)
	if action == "" {
		return
	}

	var ipVal any
	if e.ip != nil {
		ipVal = e.ip.String()
	}

	var metaVal *string
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			s := string(b)
			metaVal = &s
		}
	}

	_, err := h.pool.Exec(ctx, `
		INSERT INTO foundathon.audit_log (
			action, holder_id, problem_statement_id, request_id, ip, user_agent, meta, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7::jsonb, '{}'::jsonb), now())
	`, action, trimOrNil(holderID), trimOrNil(resourceID), trimOrNil(e.requestID), ipVal, trimOrNil(e.ua), metaVal)
	if err != nil {
		h.log.Error("registration.audit.insert.fail", "err", err, "action", action)
	}
}

func lockSnapshot(rec reservation.Record) any {
	if rec.Lock == nil {
		return nil
	}
	return rec.Lock.CapacitySnapshot
}

func trimOrNil(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return v
}
