// Package registrationapi exposes the lock and registration operations as
// JSON over HTTP.
package registrationapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/auth/holder"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/notify"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/reservation"
)

// Feed receives a nudge after every change to availability.
// *realtime.Publisher implements it.
type Feed interface {
	Publish(ctx context.Context) error
}

// Handler wires HTTP endpoints to the reservation service.
type Handler struct {
	log *slog.Logger
	cfg Config

	svc     *reservation.Service
	holders holder.Resolver

	sender  notify.Sender
	feed    Feed
	metrics *Metrics
	pool    *pgxpool.Pool

	now func() time.Time
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handler)

// WithSender overrides the default no-op email sender.
func WithSender(sender notify.Sender) HandlerOption {
	return func(h *Handler) {
		if h == nil || sender == nil {
			return
		}
		h.sender = sender
	}
}

// WithFeed publishes availability after successful writes.
func WithFeed(feed Feed) HandlerOption {
	return func(h *Handler) {
		if h == nil || feed == nil {
			return
		}
		h.feed = feed
	}
}

// WithMetrics records outcome counters.
func WithMetrics(m *Metrics) HandlerOption {
	return func(h *Handler) {
		if h == nil || m == nil {
			return
		}
		h.metrics = m
	}
}

// WithAuditPool enables audit rows in foundathon.audit_log.
func WithAuditPool(pool *pgxpool.Pool) HandlerOption {
	return func(h *Handler) {
		if h == nil || pool == nil {
			return
		}
		h.pool = pool
	}
}

// WithClock overrides the wall clock used for identity checks and expiry hints.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if h == nil || now == nil {
			return
		}
		h.now = now
	}
}

// NewHandler constructs a Handler.
func NewHandler(log *slog.Logger, svc *reservation.Service, holders holder.Resolver, cfg Config, opts ...HandlerOption) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("registration api: nil reservation service")
	}
	if holders == nil {
		return nil, errors.New("registration api: nil holder resolver")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 10
	}

	h := &Handler{
		log:     log,
		cfg:     cfg,
		svc:     svc,
		holders: holders,
		sender:  notify.NoopSender{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Register wires registration routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/problem-statements", h.handleProblemStatements)
	mux.HandleFunc("/problem-statements/lock", h.handleLock)
	mux.HandleFunc("/registrations", h.handleCommit)
	mux.HandleFunc("/registrations/me", h.handleMe)
	mux.HandleFunc("/registrations/me/lock", h.handleAttachLock)
}

// ---- handlers ----

func (h *Handler) handleProblemStatements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	view, err := h.svc.Availability(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "registration.availability.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, toAvailabilityResponse(h.svc.Capacity(), view))
}

func (h *Handler) handleLock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	holderID, ok := h.requireHolder(w, r)
	if !ok {
		return
	}

	var req lockRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	resourceID := strings.TrimSpace(req.ProblemStatementID)
	if resourceID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "problem_statement_id is required")
		return
	}

	grant, err := h.svc.RequestLock(r.Context(), resourceID, holderID)
	h.metrics.observeLock(err)
	if err != nil {
		h.writeServiceError(w, r, "registration.lock.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, toLockResponse(grant, h.now()))
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	holderID, ok := h.requireHolder(w, r)
	if !ok {
		return
	}

	var req commitRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.ProblemStatementID) == "" || strings.TrimSpace(req.LockToken) == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "problem_statement_id and lock_token are required")
		return
	}

	ctx := r.Context()
	rec, err := h.svc.Commit(ctx, reservation.CommitInput{
		Token:      strings.TrimSpace(req.LockToken),
		ResourceID: strings.TrimSpace(req.ProblemStatementID),
		HolderID:   holderID,
		Team:       toTeam(req.Team),
		Now:        h.now(),
	})
	h.metrics.observeCommit(err)
	if err != nil {
		h.writeServiceError(w, r, "registration.commit.fail", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRegistrationResponse(rec))
	flushResponse(w)

	after := context.WithoutCancel(ctx)
	h.sendRegistration(after, rec)
	h.auditCommitted(after, h.auditEntry(r), rec)
	h.publish(after)
}

func (h *Handler) handleAttachLock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	holderID, ok := h.requireHolder(w, r)
	if !ok {
		return
	}

	var req attachRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.ProblemStatementID) == "" || strings.TrimSpace(req.LockToken) == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "problem_statement_id and lock_token are required")
		return
	}

	ctx := r.Context()
	rec, err := h.svc.AttachLock(ctx, reservation.AttachInput{
		Token:      strings.TrimSpace(req.LockToken),
		ResourceID: strings.TrimSpace(req.ProblemStatementID),
		HolderID:   holderID,
		Now:        h.now(),
	})
	h.metrics.observeAttach(err)
	if err != nil {
		h.writeServiceError(w, r, "registration.attach.fail", err)
		return
	}

	writeJSON(w, http.StatusOK, toRegistrationResponse(rec))
	flushResponse(w)

	after := context.WithoutCancel(ctx)
	h.auditLockAttached(after, h.auditEntry(r), rec)
	h.publish(after)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPatch:
		h.handleUpdateTeam(w, r)
	case http.MethodDelete:
		h.handleWithdraw(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	holderID, ok := h.requireHolder(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Get(r.Context(), holderID)
	if err != nil {
		h.writeServiceError(w, r, "registration.get.fail", err)
		return
	}
	writeJSON(w, http.StatusOK, toRegistrationResponse(rec))
}

func (h *Handler) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	holderID, ok := h.requireHolder(w, r)
	if !ok {
		return
	}

	var req teamPatchRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	ctx := r.Context()
	rec, err := h.svc.UpdateTeam(ctx, holderID, toTeamUpdate(req))
	if err != nil {
		h.writeServiceError(w, r, "registration.team_update.fail", err)
		return
	}

	writeJSON(w, http.StatusOK, toRegistrationResponse(rec))
	flushResponse(w)
	h.auditTeamUpdated(context.WithoutCancel(ctx), h.auditEntry(r), rec)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	holderID, ok := h.requireHolder(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	rec, err := h.svc.Withdraw(ctx, holderID)
	if err != nil {
		h.writeServiceError(w, r, "registration.withdraw.fail", err)
		return
	}
	h.metrics.observeWithdrawal()
	w.WriteHeader(http.StatusNoContent)
	flushResponse(w)

	after := context.WithoutCancel(ctx)
	h.sendWithdrawal(after, rec)
	h.auditWithdrawn(after, h.auditEntry(r), rec)
	h.publish(after)
}

// ---- helpers ----

// flushResponse pushes the written response to the client before side
// effects run. Writers without flush support are left as they are.
func flushResponse(w http.ResponseWriter) {
	_ = http.NewResponseController(w).Flush()
}

// requireHolder resolves the caller's holder id or writes 401.
func (h *Handler) requireHolder(w http.ResponseWriter, r *http.Request) (string, bool) {
	holderID, err := holder.FromRequest(r, h.holders, h.now())
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return "", false
	}
	return holderID, true
}

func (h *Handler) sendRegistration(ctx context.Context, rec reservation.Record) {
	msg := notify.RegistrationMessage{
		RegistrationID: rec.ID,
		HolderID:       rec.HolderID,
		Email:          rec.Team.LeadEmail,
		TeamName:       rec.Team.Name,
	}
	if rec.Lock != nil {
		msg.ProblemStatement = rec.Lock.Title
		msg.LockedAt = rec.Lock.LockedAt
	}
	if err := h.sender.SendRegistration(ctx, msg); err != nil {
		h.log.Error("registration.notify.fail", "err", err, "holder", rec.HolderID, "kind", "registration")
	}
}

func (h *Handler) sendWithdrawal(ctx context.Context, rec reservation.Record) {
	msg := notify.WithdrawalMessage{
		RegistrationID: rec.ID,
		HolderID:       rec.HolderID,
		Email:          rec.Team.LeadEmail,
		TeamName:       rec.Team.Name,
	}
	if err := h.sender.SendWithdrawal(ctx, msg); err != nil {
		h.log.Error("registration.notify.fail", "err", err, "holder", rec.HolderID, "kind", "withdrawal")
	}
}

func (h *Handler) publish(ctx context.Context) {
	if h.feed == nil {
		return
	}
	// The feed logs its own failures.
	_ = h.feed.Publish(ctx)
}

func (h *Handler) auditEntry(r *http.Request) auditEntry {
	return auditEntry{
		requestID: r.Header.Get("X-Request-ID"),
		ip:        clientIP(r, h.cfg.TrustProxy),
		ua:        strings.TrimSpace(r.UserAgent()),
	}
}

func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != nil {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}

func parseForwardedIP(raw string) net.IP {
	if raw == "" {
		return nil
	}
	for _, p := range strings.Split(raw, ",") {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip
		}
	}
	return nil
}
