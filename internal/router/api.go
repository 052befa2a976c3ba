package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/portfolio-api/internal/handler"
	"github.com/deppfellow/portfolio-api/internal/middleware"
)

// registerAPIRoutes registers the /api routes. Middleware is attached per
// route rather than on the group: group middleware would also run for
// unmatched paths under /api.
func registerAPIRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	api := r.Group("/api")

	db := m.Database.EnsureDatabase
	auth := m.Auth.RequireAuth

	authRoutes := api.Group("/auth")
	authRoutes.POST("/login", handler.Handle(h.Auth.Login, http.StatusOK), m.RateLimit.LoginLimiter(), db)
	authRoutes.POST("/register", h.Auth.Register, db)
	authRoutes.GET("/init", handler.Handle(h.Auth.InitAdmin, http.StatusOK), db)
	authRoutes.POST("/init", handler.Handle(h.Auth.InitAdmin, http.StatusOK), db)

	projects := api.Group("/projects")
	projects.GET("", handler.HandleList(h.Project.List, "projects"), db)
	projects.GET("/:id", handler.Handle(h.Project.Get, http.StatusOK), db)
	projects.POST("", handler.Handle(h.Project.Create, http.StatusCreated), auth, db)
	projects.PUT("/:id", handler.Handle(h.Project.Update, http.StatusOK), auth, db)
	projects.DELETE("/:id", handler.Handle(h.Project.Delete, http.StatusOK), auth, db)

	skills := api.Group("/skills")
	skills.GET("", handler.HandleList(h.Skill.List, "skills"), db)
	skills.GET("/:id", handler.Handle(h.Skill.Get, http.StatusOK), db)
	skills.POST("", handler.Handle(h.Skill.Create, http.StatusCreated), auth, db)
	skills.PUT("/:id", handler.Handle(h.Skill.Update, http.StatusOK), auth, db)
	skills.DELETE("/:id", handler.Handle(h.Skill.Delete, http.StatusOK), auth, db)

	contacts := api.Group("/contacts")
	contacts.GET("", handler.HandleList(h.Contact.List, "contacts"), db)
	contacts.GET("/:id", handler.Handle(h.Contact.Get, http.StatusOK), db)
	contacts.POST("", handler.Handle(h.Contact.Create, http.StatusCreated), auth, db)
	contacts.PUT("/:id", handler.Handle(h.Contact.Update, http.StatusOK), auth, db)
	contacts.DELETE("/:id", handler.Handle(h.Contact.Delete, http.StatusOK), auth, db)

	api.GET("/profile", handler.Handle(h.Profile.Get, http.StatusOK), db)
	api.PUT("/profile", handler.Handle(h.Profile.Update, http.StatusOK), auth, db)

	api.GET("/resume", handler.Handle(h.Resume.Get, http.StatusOK), db)
	api.PUT("/resume", handler.Handle(h.Resume.Update, http.StatusOK), auth, db)

	translations := api.Group("/translations")
	translations.GET("", handler.HandleList(h.Translation.List, "translations"), db)
	translations.GET("/:language", handler.Handle(h.Translation.Get, http.StatusOK), db)
	translations.POST("", handler.Handle(h.Translation.Save, http.StatusOK), auth, db)
	translations.POST("/import", handler.Handle(h.Translation.Import, http.StatusOK), auth, db)
	translations.POST("/:language", handler.Handle(h.Translation.Save, http.StatusOK), auth, db)
	translations.PUT("/:language", handler.Handle(h.Translation.Save, http.StatusOK), auth, db)
	translations.DELETE("/:language", handler.Handle(h.Translation.Delete, http.StatusOK), auth, db)

	api.POST("/upload", handler.Handle(h.Upload.UploadImage, http.StatusOK), auth, db)
	api.DELETE("/upload/:filename", handler.Handle(h.Upload.Delete, http.StatusOK), auth, db)
	api.POST("/upload-document", handler.Handle(h.Upload.UploadDocument, http.StatusOK), auth, db)
}
