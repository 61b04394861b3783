package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(handler *Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(Logger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		courses := v1.Group("/courses")
		{
			courses.GET("", handler.ListCourses)
			courses.PUT("", handler.ReplaceCourses)
		}

		rooms := v1.Group("/rooms")
		{
			rooms.GET("", handler.ListRooms)
			rooms.PUT("", handler.ReplaceRooms)
			rooms.PATCH("/:id/availability", handler.SetRoomAvailability)
		}

		schedules := v1.Group("/schedules")
		{
			schedules.POST("", handler.GenerateSchedule)
			schedules.POST("/compare", handler.CompareAlgorithms)
			schedules.GET("/:id", handler.GetSchedule)
			schedules.GET("/:id/export", handler.ExportSchedule)
		}
	}

	return router
}
