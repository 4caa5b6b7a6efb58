package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/profmatch-api/internal/auth"
	"github.com/ajharbinger/profmatch-api/internal/logger"
	"github.com/ajharbinger/profmatch-api/internal/models"
	"github.com/ajharbinger/profmatch-api/internal/services"
	"github.com/ajharbinger/profmatch-api/pkg/config"
)

// RouteDeps are the collaborators the HTTP surface is built from
type RouteDeps struct {
	Services *services.Services
	Keys     *auth.Keyring
	DB       HealthChecker
	Config   *config.Config
	Logger   logger.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, deps RouteDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}

	var tokenTTL = auth.DefaultTokenTTL
	if deps.Config != nil && deps.Config.TokenTTL > 0 {
		tokenTTL = deps.Config.TokenTTL
	}

	authHandler := NewAuthHandler(deps.Services.Auth, tokenTTL, log)
	secretaryHandler := NewSecretaryHandler(deps.Services, log)
	studentHandler := NewStudentHandler(deps.Services.Students, log)
	healthHandler := NewHealthHandler(deps.DB, log)

	r.GET("/health", healthHandler.GetHealth)

	// Public routes
	public := r.Group("/auth")
	{
		public.POST("/login", authHandler.Login)
		public.POST("/forgot-password", auth.OptionalAuth(deps.Keys), authHandler.ForgotPassword)
		public.POST("/reset-password", authHandler.ResetPassword)
	}

	// Secretariat routes
	secretary := r.Group("/secretary")
	secretary.Use(auth.RequireRole(deps.Keys, models.RoleSecretary))
	{
		secretary.POST("/search", secretaryHandler.Search)
		secretary.GET("/table", secretaryHandler.GetInitialTable)

		secretary.GET("/students", secretaryHandler.GetStudents)
		secretary.GET("/students/:studentId", secretaryHandler.GetStudent)
		secretary.POST("/students", secretaryHandler.CreateStudent)

		secretary.PATCH("/subjects", secretaryHandler.RenameSubjects)
		secretary.PATCH("/subjects/:id", secretaryHandler.RenameSubject)
		secretary.PATCH("/factors/:id", secretaryHandler.RenameFactor)

		secretary.GET("/specialities", secretaryHandler.GetSpecialities)
	}

	// Student routes
	student := r.Group("/student")
	student.Use(auth.RequireRole(deps.Keys, models.RoleStudent))
	{
		student.GET("/profile", studentHandler.GetProfile)
	}
}
