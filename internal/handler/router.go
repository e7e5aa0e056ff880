package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kkampardi/educa-coursware/internal/middleware"
	"github.com/kkampardi/educa-coursware/internal/models"
	"github.com/kkampardi/educa-coursware/internal/service"
)

// Handlers bundles all route handlers for registration.
type Handlers struct {
	Auth       *AuthHandler
	Catalog    *CatalogHandler
	Subject    *SubjectHandler
	Course     *CourseHandler
	Module     *ModuleHandler
	Content    *ContentHandler
	Enrollment *EnrollmentHandler
	Export     *ExportHandler
	Media      *MediaHandler
}

// RegisterRoutes mounts every API route under the given prefix.
func RegisterRoutes(r *gin.Engine, prefix string, authService *service.AuthService, h Handlers) {
	authed := middleware.JWT(authService)
	admin := middleware.RequireRoles(models.RoleAdmin)
	instructor := middleware.RequireRoles(models.RoleInstructor)
	student := middleware.RequireRoles(models.RoleStudent)

	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", authed, h.Auth.Logout)
		auth.GET("/me", authed, h.Auth.Me)
	}

	catalog := api.Group("/catalog")
	{
		catalog.GET("/subjects", h.Catalog.ListSubjects)
		catalog.GET("/courses", h.Catalog.ListCourses)
		catalog.GET("/courses/:slug", h.Catalog.GetCourse)
		catalog.GET("/courses/:slug/syllabus", authed, h.Export.Syllabus)
		catalog.DELETE("/cache", authed, admin, h.Catalog.FlushCache)
	}

	subjects := api.Group("/subjects")
	{
		subjects.GET("/:slug", h.Subject.Get)
		subjects.POST("", authed, instructor, h.Subject.Create)
	}

	courses := api.Group("/courses", authed)
	{
		courses.GET("/mine", instructor, h.Course.ListMine)
		courses.POST("", instructor, h.Course.Create)
		courses.PUT("/:id", instructor, h.Course.Update)
		courses.DELETE("/:id", instructor, h.Course.Delete)

		courses.GET("/:id/modules", h.Module.ListByCourse)
		courses.POST("/:id/modules", instructor, h.Module.Create)

		courses.POST("/:id/enroll", student, h.Enrollment.Enroll)
	}

	modules := api.Group("/modules", authed)
	{
		modules.POST("/order", instructor, h.Module.Reorder)
		modules.PUT("/:id", instructor, h.Module.Update)
		modules.DELETE("/:id", instructor, h.Module.Delete)

		modules.GET("/:id/contents", h.Content.ListByModule)
		modules.POST("/:id/contents/:model_name", instructor, h.Content.Create)
	}

	contents := api.Group("/contents", authed, instructor)
	{
		contents.POST("/order", h.Content.Reorder)
		contents.PUT("/:id", h.Content.Update)
		contents.DELETE("/:id", h.Content.Delete)
	}

	api.GET("/enrollments/mine", authed, student, h.Enrollment.ListMine)

	media := api.Group("/media")
	{
		media.POST("", authed, instructor, h.Media.Upload)
		// download auth is carried by the signed token itself
		media.GET("/:token", h.Media.Download)
	}
}
