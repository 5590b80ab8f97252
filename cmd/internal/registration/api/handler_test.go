package registrationapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/auth/holder"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/catalog"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/locktoken"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/notify"
	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/reservation"
)

var apiTestSecret = []byte("api-test-secret-api-test-secret-api-test")

type recordingSender struct {
	mu          sync.Mutex
	registered  []notify.RegistrationMessage
	withdrawn   []notify.WithdrawalMessage
	failWithErr error

	// beforeSend runs at the start of every send.
	beforeSend func()
}

func (s *recordingSender) SendRegistration(_ context.Context, msg notify.RegistrationMessage) error {
	if s.beforeSend != nil {
		s.beforeSend()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered = append(s.registered, msg)
	return s.failWithErr
}

func (s *recordingSender) SendWithdrawal(_ context.Context, msg notify.WithdrawalMessage) error {
	if s.beforeSend != nil {
		s.beforeSend()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.withdrawn = append(s.withdrawn, msg)
	return s.failWithErr
}

type countingFeed struct {
	mu    sync.Mutex
	calls int
}

func (f *countingFeed) Publish(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

func (f *countingFeed) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type apiFixture struct {
	h       *Handler
	mux     *http.ServeMux
	store   *reservation.MemoryStore
	sender  *recordingSender
	feed    *countingFeed
	metrics *Metrics
	now     time.Time
}

func newAPIFixture(t *testing.T, capacity int) *apiFixture {
	t.Helper()

	f := &apiFixture{
		store:  reservation.NewMemoryStore(),
		sender: &recordingSender{},
		feed:   &countingFeed{},
		now:    time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	codec, err := locktoken.NewCodec(apiTestSecret, locktoken.WithClock(clock))
	require.NoError(t, err)
	svc, err := reservation.NewService(codec, f.store, catalog.Default(),
		reservation.WithCapacity(capacity),
		reservation.WithClock(clock),
	)
	require.NoError(t, err)

	f.metrics, err = NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	holders := holder.Static{
		"tok-alice": "user-alice",
		"tok-bob":   "user-bob",
		"tok-carol": "user-carol",
	}
	f.h, err = NewHandler(nil, svc, holders, Config{MaxBodyBytes: 16 << 10},
		WithSender(f.sender),
		WithFeed(f.feed),
		WithMetrics(f.metrics),
		WithClock(clock),
	)
	require.NoError(t, err)

	f.mux = http.NewServeMux()
	f.h.Register(f.mux)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch v := body.(type) {
		case string:
			buf.WriteString(v)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(v))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	f.mux.ServeHTTP(rr, req)
	return rr
}

func (f *apiFixture) lock(t *testing.T, bearer, resourceID string) lockResponse {
	t.Helper()
	rr := f.do(t, http.MethodPost, "/problem-statements/lock", bearer, map[string]string{"problem_statement_id": resourceID})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out lockResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func commitBody(resourceID, token string) map[string]any {
	return map[string]any{
		"problem_statement_id": resourceID,
		"lock_token":           token,
		"team": map[string]any{
			"name":       "Null Pointers",
			"lead_name":  "Ada",
			"lead_email": "ada@example.com",
			"members":    []map[string]string{{"name": "Grace", "email": "grace@example.com"}},
		},
	}
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var out errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out.Error.Code
}

func TestNewHandler_RequiresDependencies(t *testing.T) {
	t.Parallel()

	svc, err := reservation.NewService(nil, reservation.NewMemoryStore(), catalog.Default())
	require.NoError(t, err)

	_, err = NewHandler(nil, nil, holder.Static{}, Config{})
	assert.Error(t, err)
	_, err = NewHandler(nil, svc, nil, Config{})
	assert.Error(t, err)

	h, err := NewHandler(nil, svc, holder.Static{}, Config{})
	require.NoError(t, err)
	assert.Equal(t, int64(64<<10), h.cfg.MaxBodyBytes)
}

func TestProblemStatements_Public(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, 2)

	rr := f.do(t, http.MethodGet, "/problem-statements", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	var out availabilityResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, 2, out.Capacity)
	require.Len(t, out.ProblemStatements, catalog.Default().Len())
	assert.Equal(t, "ps-01", out.ProblemStatements[0].ID)
	assert.Equal(t, 2, out.ProblemStatements[0].Remaining)
	assert.False(t, out.ProblemStatements[0].Full)

	rr = f.do(t, http.MethodPost, "/problem-statements", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestLock_RequiresAuth(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, 2)

	rr := f.do(t, http.MethodPost, "/problem-statements/lock", "", map[string]string{"problem_statement_id": "ps-01"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, codeUnauthorized, errorCode(t, rr))

	rr = f.do(t, http.MethodPost, "/problem-statements/lock", "tok-unknown", map[string]string{"problem_statement_id": "ps-01"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLock_Success(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, 2)

	out := f.lock(t, "tok-alice", "ps-03")
	assert.NotEmpty(t, out.LockToken)
	assert.Equal(t, "ps-03", out.ProblemStatement.ID)
	assert.Equal(t, f.now.Add(locktoken.DefaultTTL), out.ExpiresAt)
	assert.Equal(t, "30 minutes from now", out.ExpiresIn)
	assert.Equal(t, 0, out.Taken)
	assert.Equal(t, 2, out.Capacity)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.locks.WithLabelValues("ok")), 0)
}

func TestLock_Rejections(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, 1)

	rr := f.do(t, http.MethodPost, "/problem-statements/lock", "tok-alice", map[string]string{"problem_statement_id": "ps-99"})
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, codeNotFound, errorCode(t, rr))

	rr = f.do(t, http.MethodPost, "/problem-statements/lock", "tok-alice", map[string]string{"problem_statement_id": " "})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, codeInvalidRequest, errorCode(t, rr))

	rr = f.do(t, http.MethodPost, "/problem-statements/lock", "tok-alice", `{"problem_statement_id":"ps-01","extra":1}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_json", errorCode(t, rr))

	alice := f.lock(t, "tok-alice", "ps-01")
	rr = f.do(t, http.MethodPost, "/registrations", "tok-alice", commitBody("ps-01", alice.LockToken))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = f.do(t, http.MethodPost, "/problem-statements/lock", "tok-bob", map[string]string{"problem_statement_id": "ps-01"})
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, codeFull, errorCode(t, rr))
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.locks.WithLabelValues(codeFull)), 0)
}

func TestCommit_SuccessSideEffects(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, 2)

	grant := f.lock(t, "tok-alice", "ps-02")
	f.now = f.now.Add(5 * time.Minute)

	rr := f.do(t, http.MethodPost, "/registrations", "tok-alice", commitBody("ps-02", grant.LockToken))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var out registrationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "Null Pointers", out.Team.Name)
	require.NotNil(t, out.ProblemStatement)
	assert.Equal(t, "ps-02", out.ProblemStatement.ID)
	assert.Equal(t, grant.IssuedAt, out.ProblemStatement.LockedAt)
	assert.Equal(t, 2, out.ProblemStatement.CapacitySnapshot)

	require.Len(t, f.sender.registered, 1)
	assert.Equal(t, "ada@example.com", f.sender.registered[0].Email)
	assert.Equal(t, out.ProblemStatement.Title, f.sender.registered[0].ProblemStatement)
	assert.Equal(t, 1, f.feed.Calls())
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.commits.WithLabelValues("ok")), 0)
}

func TestCommit_NotifyFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, 2)
	f.sender.failWithErr = errors.New("smtp down")

	grant := f.lock(t, "tok-alice", "ps-02")
	rr := f.do(t, http.MethodPost, "/registrations", "tok-alice", commitBody("ps-02", grant.LockToken))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Len(t, f.sender.registered, 1)
}

func TestSideEffects_RunAfterResponseIsFlushed(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, 2)
	grant := f.lock(t, "tok-alice", "ps-02")

	serve := func(method, path string, body any) (*httptest.ResponseRecorder, *bool) {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer tok-alice")

		rr := httptest.NewRecorder()
		flushed := new(bool)
		f.sender.beforeSend = func() { *flushed = rr.Flushed }
		f.mux.ServeHTTP(rr, req)
		return rr, flushed
	}

	rr, flushed := serve(http.MethodPost, "/registrations", commitBody("ps-02", grant.LockToken))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.True(t, *flushed, "commit response must be flushed before the email is sent")

	rr, flushed = serve(http.MethodDelete, "/registrations/me", nil)
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())
	assert.True(t, *flushed, "withdraw response must be flushed before the email is sent")
}

func TestCommit_TokenFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		setup  func(f *apiFixture, grant lockResponse) (bearer, resourceID, token string)
		status int
		code   string
	}{
		{
			name: "garbage token",
			setup: func(_ *apiFixture, _ lockResponse) (string, string, string) {
				return "tok-alice", "ps-01", "not-a-token"
			},
			status: http.StatusBadRequest,
			code:   codeLockInvalid,
		},
		{
			name: "tampered signature",
			setup: func(_ *apiFixture, g lockResponse) (string, string, string) {
				tok := g.LockToken
				last := tok[len(tok)-1]
				repl := byte('A')
				if last == 'A' {
					repl = 'B'
				}
				return "tok-alice", "ps-01", tok[:len(tok)-1] + string(repl)
			},
			status: http.StatusBadRequest,
			code:   codeLockInvalid,
		},
		{
			name: "other holder",
			setup: func(_ *apiFixture, g lockResponse) (string, string, string) {
				return "tok-bob", "ps-01", g.LockToken
			},
			status: http.StatusForbidden,
			code:   codeLockNotApplies,
		},
		{
			name: "other resource",
			setup: func(_ *apiFixture, g lockResponse) (string, string, string) {
				return "tok-alice", "ps-02", g.LockToken
			},
			status: http.StatusForbidden,
			code:   codeLockNotApplies,
		},
		{
			name: "expired",
			setup: func(f *apiFixture, g lockResponse) (string, string, string) {
				f.now = g.ExpiresAt
				return "tok-alice", "ps-01", g.LockToken
			},
			status: http.StatusGone,
			code:   codeLockExpired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newAPIFixture(t, 2)
			grant := f.lock(t, "tok-alice", "ps-01")

			bearer, resourceID, token := tc.setup(f, grant)
			rr := f.do(t, http.MethodPost, "/registrations", bearer, commitBody(resourceID, token))
			require.Equal(t, tc.status, rr.Code, rr.Body.String())
			assert.Equal(t, tc.code, errorCode(t, rr))

			counts, err := f.store.CountAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, counts)
			assert.Empty(t, f.sender.registered)
			assert.Equal(t, 0, f.feed.Calls())
		})
	}
}

func TestCommit_CapacityRecheck(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, 1)

	alice := f.lock(t, "tok-alice", "ps-04")
	bob := f.lock(t, "tok-bob", "ps-04")

	rr := f.do(t, http.MethodPost, "/registrations", "tok-alice", commitBody("ps-04", alice.LockToken))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = f.do(t, http.MethodPost, "/registrations", "tok-bob", commitBody("ps-04", bob.LockToken))
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, codeFull, errorCode(t, rr))
}

func TestCommit_AlreadyRegistered(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, 3)

	first := f.lock(t, "tok-alice", "ps-01")
	rr := f.do(t, http.MethodPost, "/registrations", "tok-alice", commitBody("ps-01", first.LockToken))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	second := f.lock(t, "tok-alice", "ps-02")
	rr = f.do(t, http.MethodPost, "/registrations", "tok-alice", commitBody("ps-02", second.LockToken))
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, codeAlreadyRegistered, errorCode(t, rr))
}

func TestCommit_InvalidTeam(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, 2)

	grant := f.lock(t, "tok-alice", "ps-01")
	body := commitBody("ps-01", grant.LockToken)
	body["team"] = map[string]any{"name": "", "lead_name": "Ada", "lead_email": "ada@example.com"}

	rr := f.do(t, http.MethodPost, "/registrations", "tok-alice", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, codeInvalidRequest, errorCode(t, rr))

	rr = f.do(t, http.MethodPost, "/registrations", "tok-alice", map[string]any{"problem_statement_id": "ps-01"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, codeInvalidRequest, errorCode(t, rr))
}

func TestCommit_BodyTooLarge(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, 2)

	huge := fmt.Sprintf(`{"problem_statement_id":"ps-01","lock_token":"%s"}`, strings.Repeat("x", 32<<10))
	rr := f.do(t, http.MethodPost, "/registrations", "tok-alice", huge)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_json", errorCode(t, rr))
}

func TestMe_GetUpdateWithdraw(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, 2)

	rr := f.do(t, http.MethodGet, "/registrations/me", "tok-alice", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, codeNotRegistered, errorCode(t, rr))

	grant := f.lock(t, "tok-alice", "ps-05")
	rr = f.do(t, http.MethodPost, "/registrations", "tok-alice", commitBody("ps-05", grant.LockToken))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = f.do(t, http.MethodPatch, "/registrations/me", "tok-alice", map[string]any{"name": "Segfaults", "institution": "IIT"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated registrationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "Segfaults", updated.Team.Name)
	assert.Equal(t, "IIT", updated.Team.Institution)
	require.NotNil(t, updated.ProblemStatement)
	assert.Equal(t, "ps-05", updated.ProblemStatement.ID)

	rr = f.do(t, http.MethodPatch, "/registrations/me", "tok-alice", map[string]any{"problem_statement_id": "ps-06"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodGet, "/registrations/me", "tok-alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, http.MethodDelete, "/registrations/me", "tok-alice", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Len(t, f.sender.withdrawn, 1)
	assert.Equal(t, "Segfaults", f.sender.withdrawn[0].TeamName)
	assert.Equal(t, 2, f.feed.Calls())
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.withdrawals), 0)

	rr = f.do(t, http.MethodDelete, "/registrations/me", "tok-alice", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodPut, "/registrations/me", "tok-alice", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestAttachLock(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, 2)

	_, err := f.store.Insert(context.Background(), reservation.Record{
		ID:        "01HZZZZZZZZZZZZZZZZZZZZZZZ",
		HolderID:  "user-carol",
		Team:      reservation.Team{Name: "Legacy", LeadName: "Carol", LeadEmail: "carol@example.com"},
		CreatedAt: f.now.Add(-24 * time.Hour),
		UpdatedAt: f.now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	grant := f.lock(t, "tok-carol", "ps-07")
	rr := f.do(t, http.MethodPost, "/registrations/me/lock", "tok-carol", map[string]string{
		"problem_statement_id": "ps-07",
		"lock_token":           grant.LockToken,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var out registrationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.NotNil(t, out.ProblemStatement)
	assert.Equal(t, "ps-07", out.ProblemStatement.ID)
	assert.Equal(t, "Legacy", out.Team.Name)
	assert.Equal(t, 1, f.feed.Calls())

	again := f.lock(t, "tok-carol", "ps-08")
	rr = f.do(t, http.MethodPost, "/registrations/me/lock", "tok-carol", map[string]string{
		"problem_statement_id": "ps-08",
		"lock_token":           again.LockToken,
	})
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, codeAlreadyLocked, errorCode(t, rr))
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.attaches.WithLabelValues(codeAlreadyLocked)), 0)
}

func TestLock_ConfigurationError(t *testing.T) {
	t.Parallel()

	svc, err := reservation.NewService(nil, reservation.NewMemoryStore(), catalog.Default())
	require.NoError(t, err)
	h, err := NewHandler(nil, svc, holder.Static{"tok": "user-1"}, Config{})
	require.NoError(t, err)
	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(http.MethodPost, "/problem-statements/lock", strings.NewReader(`{"problem_statement_id":"ps-01"}`))
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, codeLockUnavailable, errorCode(t, rr))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{locktoken.ErrConfiguration, http.StatusInternalServerError, codeLockUnavailable},
		{locktoken.ErrMalformed, http.StatusBadRequest, codeLockInvalid},
		{locktoken.ErrSignatureMismatch, http.StatusBadRequest, codeLockInvalid},
		{locktoken.ErrPayloadCorrupt, http.StatusBadRequest, codeLockInvalid},
		{locktoken.ErrUnsupportedVersion, http.StatusBadRequest, codeLockInvalid},
		{locktoken.ErrIdentityMismatch, http.StatusForbidden, codeLockNotApplies},
		{locktoken.ErrResourceMismatch, http.StatusForbidden, codeLockNotApplies},
		{locktoken.ErrExpired, http.StatusGone, codeLockExpired},
		{reservation.OpError{Op: "x", Kind: reservation.ErrResourceNotFound}, http.StatusNotFound, codeNotFound},
		{reservation.OpError{Op: "x", Kind: reservation.ErrCapacityExceeded}, http.StatusConflict, codeFull},
		{reservation.OpError{Op: "x", Kind: reservation.ErrAlreadyRegistered}, http.StatusConflict, codeAlreadyRegistered},
		{reservation.OpError{Op: "x", Kind: reservation.ErrAlreadyLocked}, http.StatusConflict, codeAlreadyLocked},
		{reservation.OpError{Op: "x", Kind: reservation.ErrNotRegistered}, http.StatusNotFound, codeNotRegistered},
		{reservation.OpError{Op: "x", Kind: reservation.ErrInvalidInput, Msg: "team name is required"}, http.StatusBadRequest, codeInvalidRequest},
		{holder.ErrUnauthenticated, http.StatusUnauthorized, codeUnauthorized},
	}
	for _, tc := range cases {
		f, ok := classify(fmt.Errorf("wrapped: %w", tc.err))
		require.True(t, ok, tc.err.Error())
		assert.Equal(t, tc.status, f.status, tc.err.Error())
		assert.Equal(t, tc.code, f.code, tc.err.Error())
	}

	_, ok := classify(errors.New("boom"))
	assert.False(t, ok)
	assert.Equal(t, codeServerError, outcome(errors.New("boom")))
	assert.Equal(t, "ok", outcome(nil))
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "10.0.0.1", clientIP(r, false).String())
	assert.Equal(t, "203.0.113.7", clientIP(r, true).String())
}
