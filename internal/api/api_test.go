package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/limaJavier/examtabling/internal/service"
	"github.com/limaJavier/examtabling/internal/store"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleConstraints = `{"startDate": "2025-05-10", "endDate": "2025-05-24", "dailySlots": 2, "slotDuration": 3,
	"excludedDates": ["2025-05-15", "2025-05-20"]}`

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	repository, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })

	input, err := model.InputFromFile("../../pkg/model/testdata/sample.json")
	require.NoError(t, err)
	require.NoError(t, repository.ReplaceCourses(ctx, input.Courses))
	require.NoError(t, repository.ReplaceRooms(ctx, input.Rooms))

	scheduler := model.NewScheduler(nil, model.DefaultSearchOptions(), nil)
	handler := NewHandler(service.NewScheduleService(repository, scheduler, model.GraphColoring, nil))
	return NewRouter(handler, zap.NewNop())
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) (Response, T) {
	t.Helper()
	var envelope struct {
		Response
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Response, envelope.Data
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	recorder := serve(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestCoursesEndpoints(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		//** Arrange
		router := newTestRouter(t)

		//** Act
		recorder := serve(router, http.MethodGet, "/api/v1/courses", "")

		//** Assert
		require.Equal(t, http.StatusOK, recorder.Code)
		envelope, data := decode[struct{ List []model.Course }](t, recorder)
		assert.Equal(t, 0, envelope.Code)
		assert.Len(t, data.List, 5)
		assert.Equal(t, "CS101", data.List[0].Id)
	})

	t.Run("Replace", func(t *testing.T) {
		//** Arrange
		router := newTestRouter(t)
		body := `[{"id": "BIO101", "name": "Biology I", "department": "Biology", "year": 1, "students": 90, "difficulty": "Medium"}]`

		//** Act
		recorder := serve(router, http.MethodPut, "/api/v1/courses", body)

		//** Assert
		require.Equal(t, http.StatusOK, recorder.Code)
		_, data := decode[struct{ List []model.Course }](t, serve(router, http.MethodGet, "/api/v1/courses", ""))
		require.Len(t, data.List, 1)
		assert.Equal(t, model.Medium, data.List[0].Difficulty)
	})

	t.Run("Replace with invalid course", func(t *testing.T) {
		//** Arrange
		router := newTestRouter(t)

		//** Act
		recorder := serve(router, http.MethodPut, "/api/v1/courses", `[{"id": "BIO101", "year": 0, "difficulty": "Easy"}]`)

		//** Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		envelope, _ := decode[any](t, recorder)
		assert.Equal(t, codeValidation, envelope.Code)
	})

	t.Run("Malformed body", func(t *testing.T) {
		router := newTestRouter(t)
		recorder := serve(router, http.MethodPut, "/api/v1/courses", `{"id":`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestRoomsEndpoints(t *testing.T) {
	t.Run("Toggle availability", func(t *testing.T) {
		//** Arrange
		router := newTestRouter(t)

		//** Act
		recorder := serve(router, http.MethodPatch, "/api/v1/rooms/HALL-A/availability", `{"available": false}`)

		//** Assert
		require.Equal(t, http.StatusOK, recorder.Code)
		_, data := decode[struct{ List []model.Room }](t, serve(router, http.MethodGet, "/api/v1/rooms", ""))
		assert.False(t, data.List[0].Available)
		assert.True(t, data.List[1].Available)
	})

	t.Run("Unknown room", func(t *testing.T) {
		router := newTestRouter(t)
		recorder := serve(router, http.MethodPatch, "/api/v1/rooms/NOPE/availability", `{"available": true}`)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("Missing availability", func(t *testing.T) {
		router := newTestRouter(t)
		recorder := serve(router, http.MethodPatch, "/api/v1/rooms/HALL-A/availability", `{}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestSchedulesEndpoints(t *testing.T) {
	t.Run("Generate, get and export", func(t *testing.T) {
		//** Arrange
		router := newTestRouter(t)

		//** Act
		recorder := serve(router, http.MethodPost, "/api/v1/schedules", `{"algorithm": "csp", "constraints": `+sampleConstraints+`}`)

		//** Assert
		require.Equal(t, http.StatusCreated, recorder.Code)
		_, archived := decode[store.ArchivedSchedule](t, recorder)
		assert.Equal(t, model.ConstraintSatisfaction, archived.Schedule.Algorithm)
		assert.Len(t, archived.Schedule.Exams, 5)

		recorder = serve(router, http.MethodGet, "/api/v1/schedules/"+archived.Id, "")
		require.Equal(t, http.StatusOK, recorder.Code)
		_, fetched := decode[store.ArchivedSchedule](t, recorder)
		assert.Equal(t, archived.Schedule, fetched.Schedule)

		recorder = serve(router, http.MethodGet, "/api/v1/schedules/"+archived.Id+"/export?format=csv&department=Physics", "")
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "text/csv", recorder.Header().Get("Content-Type"))
		lines := strings.Split(strings.TrimSpace(recorder.Body.String()), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[1], "PHYS101,"))
	})

	t.Run("Xlsx export", func(t *testing.T) {
		//** Arrange
		router := newTestRouter(t)
		_, archived := decode[store.ArchivedSchedule](t, serve(router, http.MethodPost, "/api/v1/schedules", `{"constraints": `+sampleConstraints+`}`))

		//** Act
		recorder := serve(router, http.MethodGet, "/api/v1/schedules/"+archived.Id+"/export?format=xlsx", "")

		//** Assert
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, bytes.HasPrefix(recorder.Body.Bytes(), []byte("PK")))
	})

	t.Run("Invalid constraints", func(t *testing.T) {
		//** Arrange
		router := newTestRouter(t)
		body := `{"constraints": {"startDate": "2025-05-24", "endDate": "2025-05-10", "dailySlots": 2, "slotDuration": 3}}`

		//** Act
		recorder := serve(router, http.MethodPost, "/api/v1/schedules", body)

		//** Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		envelope, _ := decode[any](t, recorder)
		assert.Contains(t, envelope.Details, "endDate")
	})

	t.Run("Unknown schedule", func(t *testing.T) {
		router := newTestRouter(t)
		recorder := serve(router, http.MethodGet, "/api/v1/schedules/missing", "")
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("Compare", func(t *testing.T) {
		//** Arrange
		router := newTestRouter(t)

		//** Act
		recorder := serve(router, http.MethodPost, "/api/v1/schedules/compare", `{"algorithms": ["graph-coloring", "genetic"], "constraints": `+sampleConstraints+`}`)

		//** Assert
		require.Equal(t, http.StatusOK, recorder.Code)
		_, data := decode[struct{ List []service.Comparison }](t, recorder)
		require.Len(t, data.List, 2)
		assert.Equal(t, model.Genetic, data.List[1].Algorithm)
	})
}
