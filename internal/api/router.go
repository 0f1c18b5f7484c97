package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/faceattend/internal/api/handlers"
	"github.com/your-org/faceattend/internal/api/ws"
	"github.com/your-org/faceattend/internal/auth"
	"github.com/your-org/faceattend/internal/queue"
	"github.com/your-org/faceattend/internal/recognition"
	"github.com/your-org/faceattend/internal/storage"
)

type RouterConfig struct {
	APIKey   string
	DB       *storage.PostgresStore
	MinIO    *storage.MinIOStore
	Producer *queue.Producer
	Hub      *ws.Hub
	Engine   *recognition.Engine
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// WebSocket live feed
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Attendance
	attH := handlers.NewAttendanceHandler(cfg.DB, cfg.MinIO, cfg.Engine)
	v1.POST("/attendance/recognize", attH.Recognize)
	v1.GET("/attendance/today", attH.Today)
	v1.GET("/attendance/stats", attH.Stats)
	v1.GET("/attendance/weekly", attH.WeeklyOverview)
	v1.GET("/attendance/calendar", attH.Calendar)
	v1.GET("/attendance/:id/image", attH.Image)

	// Employees & face enrollment
	empH := handlers.NewEmployeeHandler(cfg.DB, cfg.MinIO, cfg.Engine)
	v1.POST("/employees", empH.Create)
	v1.GET("/employees", empH.List)
	v1.GET("/employees/:id", empH.Get)
	v1.PATCH("/employees/:id", empH.Update)
	v1.DELETE("/employees/:id", empH.Deactivate)
	v1.POST("/employees/:id/face", empH.RegisterFace)
	v1.GET("/employees/:id/face", empH.GetFaceData)
	v1.DELETE("/employees/:id/face", empH.DeleteFaceData)
	v1.GET("/employees/:id/attendance", attH.Report)
	v1.GET("/employees/:id/attendance/weekly", attH.Weekly)

	// Departments & shifts
	hrH := handlers.NewHRHandler(cfg.DB)
	v1.POST("/departments", hrH.CreateDepartment)
	v1.GET("/departments", hrH.ListDepartments)
	v1.DELETE("/departments/:id", hrH.DeleteDepartment)
	v1.POST("/shifts", hrH.CreateShift)
	v1.GET("/shifts", hrH.ListShifts)
	v1.DELETE("/shifts/:id", hrH.DeleteShift)

	// Notifications feed
	notifH := handlers.NewNotificationHandler(cfg.DB)
	v1.GET("/notifications", notifH.List)

	return r
}
