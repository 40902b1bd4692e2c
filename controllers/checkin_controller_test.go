package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daybreakhq/wakeup/journal"
	"github.com/daybreakhq/wakeup/middleware"
	"github.com/daybreakhq/wakeup/models"
	"github.com/daybreakhq/wakeup/roles"
	"github.com/daybreakhq/wakeup/store"
	"github.com/daybreakhq/wakeup/utils"
)

const testGatewaySecret = "gateway-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	// Config is a load-once singleton; seed the environment before any
	// handler touches it.
	os.Setenv("JWT_SECRET", "test-signing-key")
	if hash, err := utils.HashSecret(testGatewaySecret); err == nil {
		os.Setenv("GATEWAY_SECRET_HASH", hash)
	}
	os.Exit(m.Run())
}

type chanSink struct {
	mu   sync.Mutex
	rows []*models.CheckInLog
	ch   chan *models.CheckInLog
}

func newChanSink() *chanSink {
	return &chanSink{ch: make(chan *models.CheckInLog, 8)}
}

func (s *chanSink) Append(_ context.Context, row *models.CheckInLog) error {
	s.mu.Lock()
	s.rows = append(s.rows, row)
	s.mu.Unlock()
	s.ch <- row
	return nil
}

type fakeRoleClient struct {
	mu      sync.Mutex
	granted []string
	done    chan struct{}
}

func newFakeRoleClient() *fakeRoleClient {
	return &fakeRoleClient{done: make(chan struct{}, 8)}
}

func (f *fakeRoleClient) RemoveRoles(context.Context, string, []string) error { return nil }

func (f *fakeRoleClient) GrantRole(_ context.Context, _ string, roleName string) error {
	f.mu.Lock()
	f.granted = append(f.granted, roleName)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

type fixture struct {
	ctl    *CheckInController
	store  *store.Store
	sink   *chanSink
	client *fakeRoleClient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "userData.json"))
	t.Cleanup(st.Close)

	sink := newChanSink()
	client := newFakeRoleClient()
	ctl := NewCheckInController(
		st,
		journal.NewAppender(sink, 5, time.Millisecond),
		roles.NewProjector(client, nil),
	)
	return &fixture{ctl: ctl, store: st, sink: sink, client: client}
}

func invoke(handler gin.HandlerFunc, method, body, userID, displayName string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(method, "/", strings.NewReader(body))
	ctx.Request.Header.Set("Content-Type", "application/json")
	if userID != "" {
		ctx.Set(middleware.ContextUserIDKey, userID)
		ctx.Set(middleware.ContextDisplayNameKey, displayName)
	}
	handler(ctx)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, _ := resp.Data.(map[string]interface{})
	return data
}

func TestRegister_NewUser(t *testing.T) {
	f := newFixture(t)

	w := invoke(f.ctl.Register, http.MethodPost,
		`{"wake":"07:00","sleep":"23:00","timezone":"UTC"}`, "u1", "alice")

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "registered", data["message"])

	rec, ok := f.store.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "alice", rec.DisplayName)
	assert.Equal(t, 0, rec.Streak)
}

func TestRegister_ExistingUserKeepsStreakAndLogs(t *testing.T) {
	f := newFixture(t)
	f.store.Put("u1", &models.UserRecord{
		Wake: "07:00", Sleep: "23:00", Timezone: "UTC",
		Streak:          4,
		LastSuccessDate: "2025-03-09",
		LogHistory:      []string{"2025-03-09 – 07:00 – On Time"},
	})

	w := invoke(f.ctl.Register, http.MethodPost,
		`{"wake":"06:30","sleep":"22:00","timezone":"Asia/Ho_Chi_Minh"}`, "u1", "alice")

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "schedule updated", data["message"])

	rec, _ := f.store.Get("u1")
	assert.Equal(t, "06:30", rec.Wake)
	assert.Equal(t, "22:00", rec.Sleep)
	assert.Equal(t, "Asia/Ho_Chi_Minh", rec.Timezone)
	assert.Equal(t, 4, rec.Streak, "streak survives re-registration")
	assert.Len(t, rec.LogHistory, 1, "history survives re-registration")
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		body string
	}{
		{"missing fields", `{"wake":"07:00"}`},
		{"bad wake", `{"wake":"25:00","sleep":"23:00","timezone":"UTC"}`},
		{"bad sleep", `{"wake":"07:00","sleep":"23:61","timezone":"UTC"}`},
		{"bad timezone", `{"wake":"07:00","sleep":"23:00","timezone":"Mars/Olympus"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := invoke(f.ctl.Register, http.MethodPost, tc.body, "u1", "alice")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			_, ok := f.store.Get("u1")
			assert.False(t, ok, "no state mutated on validation failure")
		})
	}
}

func TestCheckIn_Unregistered(t *testing.T) {
	f := newFixture(t)
	w := invoke(f.ctl.CheckIn, http.MethodPost, `{}`, "ghost", "casper")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckIn_OnTimeFlow(t *testing.T) {
	f := newFixture(t)
	invoke(f.ctl.Register, http.MethodPost,
		`{"wake":"07:00","sleep":"23:00","timezone":"UTC"}`, "u1", "alice")
	f.ctl.now = func() time.Time {
		return time.Date(2025, time.March, 10, 6, 45, 0, 0, time.UTC)
	}

	w := invoke(f.ctl.CheckIn, http.MethodPost, `{}`, "u1", "alice")

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "On Time", data["status"])
	assert.Equal(t, float64(1), data["streak"])
	assert.Equal(t, "06:45", data["logged_at"])

	// journal mirror arrives asynchronously
	select {
	case row := <-f.sink.ch:
		assert.Equal(t, "u1", row.UserID)
		assert.Equal(t, "On Time", row.Status)
		assert.Equal(t, "10/03/2025", row.Date)
	case <-time.After(2 * time.Second):
		t.Fatal("journal row never appended")
	}

	// role grant follows an on-time success
	select {
	case <-f.client.done:
		f.client.mu.Lock()
		granted := append([]string(nil), f.client.granted...)
		f.client.mu.Unlock()
		assert.Equal(t, []string{"Riser LV1"}, granted)
	case <-time.After(2 * time.Second):
		t.Fatal("role never granted")
	}
}

func TestCheckIn_SecondCallSameDay(t *testing.T) {
	f := newFixture(t)
	invoke(f.ctl.Register, http.MethodPost,
		`{"wake":"07:00","sleep":"23:00","timezone":"UTC"}`, "u1", "alice")
	f.ctl.now = func() time.Time {
		return time.Date(2025, time.March, 10, 7, 0, 0, 0, time.UTC)
	}

	invoke(f.ctl.CheckIn, http.MethodPost, `{}`, "u1", "alice")
	<-f.sink.ch

	w := invoke(f.ctl.CheckIn, http.MethodPost, `{}`, "u1", "alice")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, true, data["already_checked_in"])
	assert.Equal(t, float64(1), data["streak"])

	// no second journal row for the repeat
	select {
	case <-f.sink.ch:
		t.Fatal("repeat check-in must not be journaled")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCheckIn_LateDoesNotGrantRole(t *testing.T) {
	f := newFixture(t)
	invoke(f.ctl.Register, http.MethodPost,
		`{"wake":"07:00","sleep":"23:00","timezone":"UTC"}`, "u1", "alice")
	f.ctl.now = func() time.Time {
		return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	}

	w := invoke(f.ctl.CheckIn, http.MethodPost, `{}`, "u1", "alice")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "Late", data["status"])

	// late check-ins still hit the journal
	select {
	case row := <-f.sink.ch:
		assert.Equal(t, "Late", row.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("journal row never appended")
	}

	select {
	case <-f.client.done:
		t.Fatal("late check-in must not touch roles")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestProfile(t *testing.T) {
	f := newFixture(t)

	w := invoke(f.ctl.Profile, http.MethodGet, "", "u1", "alice")
	assert.Equal(t, http.StatusNotFound, w.Code)

	invoke(f.ctl.Register, http.MethodPost,
		`{"wake":"07:00","sleep":"23:00","timezone":"UTC"}`, "u1", "alice")
	f.ctl.now = func() time.Time {
		return time.Date(2025, time.March, 10, 6, 45, 0, 0, time.UTC)
	}
	invoke(f.ctl.CheckIn, http.MethodPost, `{}`, "u1", "alice")
	<-f.sink.ch

	w = invoke(f.ctl.Profile, http.MethodGet, "", "u1", "alice")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "07:00", data["wake"])
	assert.Equal(t, float64(1), data["streak"])
	assert.Equal(t, "2025-03-10", data["last_success_date"])
	logs, _ := data["logs"].([]interface{})
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0], "On Time")
}

func TestLeaderboard(t *testing.T) {
	f := newFixture(t)
	for _, tc := range []struct {
		id     string
		streak int
	}{
		{"a", 2}, {"b", 9}, {"c", 0},
	} {
		f.store.Put(tc.id, &models.UserRecord{
			DisplayName: tc.id, Wake: "07:00", Sleep: "23:00", Timezone: "UTC",
			Streak: tc.streak,
		})
	}

	w := invoke(f.ctl.Leaderboard, http.MethodGet, "", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rows, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, rows, 2)
	first, _ := rows[0].(map[string]interface{})
	assert.Equal(t, "b", first["user_id"])
	assert.Equal(t, float64(1), first["rank"])
	assert.Equal(t, float64(9), first["streak"])
}
