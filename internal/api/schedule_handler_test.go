package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fitcoach/backend/internal/domain"
	"fitcoach/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubScheduleService records which resolution mode the handler invoked.
type stubScheduleService struct {
	rangeDays   []service.ResolvedDay
	single      *service.DaySchedule
	rangeCalls  int
	singleCalls int
	lastStart   time.Time
	lastEnd     time.Time
	lastDate    time.Time
}

func (s *stubScheduleService) AssignSingle(_ context.Context, _ service.AssignScheduleInput) (*domain.Schedule, error) {
	return nil, nil
}

func (s *stubScheduleService) SyncGlobal(_ context.Context, _ service.SyncGlobalInput) (*service.SyncResult, error) {
	return &service.SyncResult{}, nil
}

func (s *stubScheduleService) DeleteAssignment(_ context.Context, _ primitive.ObjectID) error {
	return nil
}

func (s *stubScheduleService) DeletePlanAssignments(_ context.Context, _ domain.PlanSlot, _ primitive.ObjectID) error {
	return nil
}

func (s *stubScheduleService) GetMyScheduleRange(_ context.Context, _ primitive.ObjectID, start, end time.Time) ([]service.ResolvedDay, error) {
	s.rangeCalls++
	s.lastStart, s.lastEnd = start, end
	return s.rangeDays, nil
}

func (s *stubScheduleService) GetMyScheduleSingle(_ context.Context, _ primitive.ObjectID, date time.Time) (*service.DaySchedule, error) {
	s.singleCalls++
	s.lastDate = date
	return s.single, nil
}

func (s *stubScheduleService) ResolveForUser(_ context.Context, _ *domain.User, _ time.Time, _ bool) (*service.DaySchedule, error) {
	return s.single, nil
}

func (s *stubScheduleService) GetAdminDaily(_ context.Context, _ time.Time) (*service.AdminDaySchedule, error) {
	return &service.AdminDaySchedule{}, nil
}

func newMyScheduleRouter(stub *stubScheduleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewScheduleHandler(stub)
	router.GET("/api/schedule/my", func(c *gin.Context) {
		c.Set(ContextUserIDKey, primitive.NewObjectID().Hex())
		c.Set(ContextUserRoleKey, domain.RoleUser)
	}, handler.GetMySchedule)
	return router
}

func TestGetMyScheduleRangeParams(t *testing.T) {
	stub := &stubScheduleService{
		rangeDays: []service.ResolvedDay{
			{DaySchedule: service.DaySchedule{Date: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)}, Locked: false},
			{DaySchedule: service.DaySchedule{Date: time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC)}, Locked: true},
		},
	}
	router := newMyScheduleRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/schedule/my?startDate=2024-06-01&endDate=2024-06-03", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, stub.rangeCalls, "startDate/endDate selects the range mode")
	assert.Equal(t, 0, stub.singleCalls)
	assert.Equal(t, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), stub.lastStart)
	assert.Equal(t, time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC), stub.lastEnd)

	var body struct {
		Days []map[string]any `json:"days"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Days, 2)
	assert.Contains(t, body.Days[1], "locked")
	assert.Equal(t, true, body.Days[1]["locked"])
}

func TestGetMyScheduleRangeRejectsReversedWindow(t *testing.T) {
	stub := &stubScheduleService{}
	router := newMyScheduleRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/schedule/my?startDate=2024-06-03&endDate=2024-06-01", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, stub.rangeCalls)
}

func TestGetMyScheduleSingleShapeOmitsLockFlag(t *testing.T) {
	stub := &stubScheduleService{
		single: &service.DaySchedule{
			Date:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			Workout: &domain.Workout{ID: primitive.NewObjectID(), Title: "Full Body"},
		},
	}
	router := newMyScheduleRouter(stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/schedule/my?date=2024-06-01", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, stub.singleCalls)
	assert.Equal(t, 0, stub.rangeCalls)

	var body struct {
		Schedule map[string]any `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Schedule)
	assert.Contains(t, body.Schedule, "workout")
	assert.NotContains(t, body.Schedule, "locked", "single-date shape carries no lock flag")
}
