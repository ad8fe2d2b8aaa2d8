package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/duesignal/duesignal/internal/app/service/reminder"
)

type stubRunner struct {
	lastDate string
	err      error
}

func (s *stubRunner) Run(_ context.Context, date string) (*reminder.Result, error) {
	s.lastDate = date
	if s.err != nil {
		return nil, s.err
	}
	return &reminder.Result{Date: date, Matched: 2, Recorded: 2, Advanced: 2, EmailsSent: 1}, nil
}

func newRemindersRouter(r *stubRunner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.POST("/api/v1/admin/reminders/run", ApiRunReminders(r))
	return e
}

func TestApiRunReminders_ExplicitDate(t *testing.T) {
	runner := &stubRunner{}
	e := newRemindersRouter(runner)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reminders/run?date=2030-01-01", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2030-01-01", runner.lastDate)

	var resp RunRemindersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.Equal(t, "2030-01-01", resp.Date)
	require.Equal(t, "Reminder job executed for date 2030-01-01", resp.Message)
	require.NotNil(t, resp.Result)
	require.Equal(t, 2, resp.Result.Matched)
}

func TestApiRunReminders_DefaultsToToday(t *testing.T) {
	runner := &stubRunner{}
	e := newRemindersRouter(runner)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reminders/run", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, runner.lastDate)
}

func TestApiRunReminders_MalformedDate(t *testing.T) {
	runner := &stubRunner{}
	e := newRemindersRouter(runner)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reminders/run?date=01-31-2030", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, runner.lastDate)
}

func TestApiRunReminders_RunnerFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("db unavailable")}
	e := newRemindersRouter(runner)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reminders/run?date=2030-01-01", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp RunRemindersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.OK)
	require.NotEmpty(t, resp.Error)
}
