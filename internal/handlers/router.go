package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/ndt-worklog/internal/constants"
	"github.com/yukikurage/ndt-worklog/internal/logger"
	"github.com/yukikurage/ndt-worklog/internal/metrics"
	"github.com/yukikurage/ndt-worklog/internal/middleware"
	"github.com/yukikurage/ndt-worklog/internal/repository"
	"github.com/yukikurage/ndt-worklog/internal/services"
	"github.com/yukikurage/ndt-worklog/internal/storage"
	"gorm.io/gorm"
)

// RouterDeps holds everything the HTTP surface needs.
type RouterDeps struct {
	DB           *gorm.DB
	SessionStore sessions.Store
	Logger       zerolog.Logger
	Metrics      *metrics.Metrics
	Files        *storage.FileStore

	UserRepo       repository.UserRepository
	Auth           *services.AuthService
	Users          *services.UserService
	WorkHours      *services.WorkHoursService
	JobOrders      *services.JobOrderService
	Equipment      *services.EquipmentService
	Procedures     *services.ProcedureService
	Qualifications *services.QualificationService
	Settings       *services.SettingsService
}

// NewRouter builds the gin engine with every API route registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(deps.Logger))
	r.Use(deps.Metrics.InFlight(), deps.Metrics.ResponseTime())
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))

	authHandler := NewAuthHandler(deps.Auth, deps.Metrics)
	userHandler := NewUserHandler(deps.Users)
	hoursHandler := NewWorkHoursHandler(deps.WorkHours)
	jobOrderHandler := NewJobOrderHandler(deps.JobOrders)
	equipmentHandler := NewEquipmentHandler(deps.Equipment)
	procedureHandler := NewProcedureHandler(deps.Procedures)
	qualificationHandler := NewQualificationHandler(deps.Qualifications)
	settingsHandler := NewSettingsHandler(deps.Settings)
	fileHandler := NewFileHandler(deps.Files)

	r.GET("/health", healthCheck(deps.DB))
	r.GET("/metrics", deps.Metrics.Handler())

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(deps.UserRepo), authHandler.GetCurrentUser)
			auth.GET("/external/:provider", authHandler.ExternalLogin)
			auth.GET("/external/:provider/callback", authHandler.ExternalCallback)
		}

		protected := api.Group("")
		protected.Use(middleware.RequireAuth(deps.UserRepo))

		hours := protected.Group("/work-hours")
		{
			hours.GET("", hoursHandler.ListWorkHours)
			hours.POST("", hoursHandler.CreateWorkHours)
			hours.GET("/summary", hoursHandler.Summary)
			hours.POST("/draft", hoursHandler.Draft)
			hours.GET("/:id", middleware.RequireEntryAccess(deps.WorkHours), hoursHandler.GetWorkHours)
			hours.PUT("/:id", middleware.RequireEntryAccess(deps.WorkHours), hoursHandler.UpdateWorkHours)
			hours.DELETE("/:id", middleware.RequireEntryAccess(deps.WorkHours), hoursHandler.DeleteWorkHours)
		}
		protected.GET("/export/csv", hoursHandler.ExportCSV)
		protected.GET("/stats/user", hoursHandler.UserStats)
		protected.GET("/stats/team", hoursHandler.TeamStats)

		jobOrders := protected.Group("/job-orders")
		{
			jobOrders.GET("", jobOrderHandler.ListJobOrders)
			jobOrders.POST("", jobOrderHandler.CreateJobOrder)
			jobOrders.PUT("/:id", jobOrderHandler.UpdateJobOrder)
		}

		users := protected.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.PUT("/:id/role", userHandler.UpdateRole)
			users.PUT("/:id/status", userHandler.UpdateStatus)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		equipment := protected.Group("/equipment")
		{
			equipment.GET("", equipmentHandler.ListEquipment)
			equipment.POST("", equipmentHandler.CreateEquipment)
			equipment.GET("/:id", equipmentHandler.GetEquipment)
			equipment.PUT("/:id", equipmentHandler.UpdateEquipment)
			equipment.DELETE("/:id", equipmentHandler.DeleteEquipment)
			equipment.POST("/:id/files", limitBody(), equipmentHandler.UploadFiles)
		}

		procedures := protected.Group("/procedures")
		{
			procedures.GET("", procedureHandler.ListProcedures)
			procedures.POST("", procedureHandler.CreateProcedure)
			procedures.GET("/:id", procedureHandler.GetProcedure)
			procedures.PUT("/:id", procedureHandler.UpdateProcedure)
			procedures.DELETE("/:id", procedureHandler.DeleteProcedure)
			procedures.POST("/:id/approve", procedureHandler.ApproveProcedure)
			procedures.POST("/:id/document", limitBody(), procedureHandler.UploadDocument)
		}

		qualifications := protected.Group("/qualifications")
		{
			qualifications.GET("", qualificationHandler.ListQualifications)
			qualifications.POST("", qualificationHandler.CreateQualification)
			qualifications.GET("/:id", qualificationHandler.GetQualification)
			qualifications.PUT("/:id", qualificationHandler.UpdateQualification)
			qualifications.DELETE("/:id", qualificationHandler.DeleteQualification)
			qualifications.POST("/:id/document", limitBody(), qualificationHandler.UploadDocument)
		}

		protected.GET("/files/:name", fileHandler.GetFile)
		protected.GET("/settings", settingsHandler.GetSettings)
		protected.PUT("/settings", settingsHandler.UpdateSettings)
	}

	return r
}

// limitBody caps multipart bodies at two files of the upload limit plus form
// overhead. Per-file limits are enforced by the file store.
func limitBody() gin.HandlerFunc {
	const maxBody = 2*constants.MaxUploadSize + 1<<20
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
		c.Next()
	}
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "unavailable"
		}
		c.JSON(status, gin.H{
			"status":   dbStatus,
			"database": dbStatus,
			"message":  "NDT Worklog API is running",
		})
	}
}
