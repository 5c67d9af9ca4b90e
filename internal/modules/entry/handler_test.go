package entry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gratitree/core/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	NewHandler(svc).Register(api)
	return r
}

func authHeader(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.Sign(userID, false, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestListDaysReturnsPicker(t *testing.T) {
	r := newTestRouter(openDayService(&fakeStore{}, "2024-06-15"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/days", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []struct {
			Key     string `json:"key"`
			Label   string `json:"label"`
			IsToday bool   `json:"is_today"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, DayPickerSize)
	assert.True(t, body.Data[0].IsToday)
	assert.Equal(t, "Today", body.Data[0].Label)
}

func TestGetDayRejectsMalformedID(t *testing.T) {
	r := newTestRouter(openDayService(&fakeStore{}, "2024-06-15"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/days/june-15", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitRequiresAuth(t *testing.T) {
	r := newTestRouter(openDayService(&fakeStore{}, "2024-06-15"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/days/2024-06-15/entries",
		strings.NewReader(`{"text":"thanks"}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitValidationFailureIs422(t *testing.T) {
	r := newTestRouter(openDayService(&fakeStore{}, "2024-06-15"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/days/2024-06-15/entries",
		strings.NewReader(`{"text":"   "}`))
	req.Header.Set("Authorization", authHeader(t, "alice"))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "required")
}

func TestSubmitLockedDayIs422(t *testing.T) {
	r := newTestRouter(openDayService(&fakeStore{}, "2024-06-15"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/days/2024-06-14/entries",
		strings.NewReader(`{"text":"too late"}`))
	req.Header.Set("Authorization", authHeader(t, "alice"))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "locked")
}

func TestSubmitSuccessReturnsEntryAndCount(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(openDayService(store, "2024-06-15"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/days/2024-06-15/entries",
		strings.NewReader(`{"text":"grateful for go","display_name":"Alice"}`))
	req.Header.Set("Authorization", authHeader(t, "alice"))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		Entry EntryView `json:"entry"`
		Used  int64     `json:"used"`
		Max   int64     `json:"max"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "grateful for go", body.Entry.Text)
	assert.Equal(t, "Alice", body.Entry.Author)
	assert.EqualValues(t, 1, body.Used)
	assert.EqualValues(t, MaxEntriesPerDay, body.Max)
	assert.Len(t, store.entries, 1)
}

func TestQuotaEndpoint(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(openDayService(store, "2024-06-15"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/days/2024-06-15/quota", nil)
	req.Header.Set("Authorization", authHeader(t, "alice"))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var q QuotaInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.EqualValues(t, 0, q.Used)
	assert.True(t, q.DayOpen)
}

func TestSnapshotEndpoint(t *testing.T) {
	store := &fakeStore{}
	svc := openDayService(store, "2024-06-15")
	r := newTestRouter(svc)

	_, _, err := svc.Submit(context.Background(), "2024-06-15", "alice", SubmitDTO{Text: "root"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/days/2024-06-15/entries", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var snap DaySnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.True(t, snap.Open)
	assert.Len(t, snap.Forest, 1)
	assert.Len(t, snap.ReplyOptions, 1)
}
