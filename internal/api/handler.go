package api

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/limaJavier/examtabling/internal/service"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/samber/lo"
)

type Handler struct {
	service service.ScheduleService
}

func NewHandler(service service.ScheduleService) *Handler {
	return &Handler{service: service}
}

// GET /api/v1/courses
func (handler *Handler) ListCourses(c *gin.Context) {
	courses, err := handler.service.ListCourses(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"list": courses})
}

// PUT /api/v1/courses
func (handler *Handler) ReplaceCourses(c *gin.Context) {
	var courses []model.Course
	if err := c.ShouldBindJSON(&courses); err != nil {
		badRequest(c, "malformed course list", err.Error())
		return
	}
	if err := handler.service.ReplaceCourses(c.Request.Context(), courses); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"list": courses})
}

// GET /api/v1/rooms
func (handler *Handler) ListRooms(c *gin.Context) {
	rooms, err := handler.service.ListRooms(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"list": rooms})
}

// PUT /api/v1/rooms
func (handler *Handler) ReplaceRooms(c *gin.Context) {
	var rooms []model.Room
	if err := c.ShouldBindJSON(&rooms); err != nil {
		badRequest(c, "malformed room list", err.Error())
		return
	}
	if err := handler.service.ReplaceRooms(c.Request.Context(), rooms); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"list": rooms})
}

type availabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// PATCH /api/v1/rooms/:id/availability
func (handler *Handler) SetRoomAvailability(c *gin.Context) {
	var request availabilityRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "malformed availability", err.Error())
		return
	}
	id := c.Param("id")
	if err := handler.service.SetRoomAvailability(c.Request.Context(), id, *request.Available); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"id": id, "available": *request.Available})
}

// POST /api/v1/schedules
func (handler *Handler) GenerateSchedule(c *gin.Context) {
	var request service.GenerateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "malformed schedule request", err.Error())
		return
	}
	archived, err := handler.service.Generate(c.Request.Context(), request)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, archived)
}

type compareRequest struct {
	Algorithms  []string             `json:"algorithms"`
	Constraints model.RawConstraints `json:"constraints"`
}

// POST /api/v1/schedules/compare
func (handler *Handler) CompareAlgorithms(c *gin.Context) {
	var request compareRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "malformed comparison request", err.Error())
		return
	}
	algorithms := lo.Map(request.Algorithms, func(name string, _ int) model.Algorithm { return model.ParseAlgorithm(name) })
	comparisons, err := handler.service.Compare(c.Request.Context(), request.Constraints, algorithms)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"list": comparisons})
}

// GET /api/v1/schedules/:id
func (handler *Handler) GetSchedule(c *gin.Context) {
	archived, err := handler.service.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, archived)
}

// GET /api/v1/schedules/:id/export?format=csv|xlsx&department=
func (handler *Handler) ExportSchedule(c *gin.Context) {
	file, err := handler.service.Export(c.Request.Context(), c.Param("id"), c.Query("format"), c.Query("department"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
