package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/classroom-chat/internal/api/http/handlers"
	"github.com/spec-kit/classroom-chat/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Roster *handlers.RosterHandler
	Chat   *handlers.ChatHandler
	Export *handlers.ExportHandler
	Gate   *auth.Gate
}

// RegisterRoutes wires HTTP routes. Everything under the user and admin
// groups passes the access-control gate before any handler runs.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.UserLogin)
	authGroup.Post("/logout", cfg.Auth.UserLogout)
	authGroup.Get("/verify", cfg.Auth.UserSession)
	authGroup.Post("/admin/login", cfg.Auth.AdminLogin)
	authGroup.Post("/admin/logout", cfg.Auth.AdminLogout)
	authGroup.Get("/admin/session", cfg.Auth.AdminSession)

	// User routes share no path prefix, so the gate is attached per route
	// rather than as a group middleware (a bare "/api" Use would also
	// intercept the admin group below).
	requireUser := cfg.Gate.RequireUser()
	api.Post("/chat-history", requireUser, cfg.Chat.SaveMessage)
	api.Get("/chat-history", requireUser, cfg.Chat.History)
	api.Post("/chat", requireUser, cfg.Chat.SendMessage)
	api.Get("/conversations", requireUser, cfg.Chat.Conversations)
	api.Get("/parameters", requireUser, cfg.Chat.Parameters)

	admin := api.Group("/admin", cfg.Gate.RequireAdmin())
	admin.Get("/users", cfg.Roster.ListUsers)
	admin.Post("/users", cfg.Roster.CreateUser)
	admin.Post("/users/import", cfg.Roster.ImportUsers)
	admin.Post("/users/batch-delete", cfg.Roster.BatchDeleteUsers)
	admin.Put("/users/:studentId", cfg.Roster.UpdateUser)
	admin.Delete("/users/:studentId", cfg.Roster.DeleteUser)

	admin.Get("/courses", cfg.Roster.ListCourses)
	admin.Post("/courses", cfg.Roster.CreateCourse)
	admin.Post("/courses/import", cfg.Roster.ImportCourses)
	admin.Post("/courses/batch-delete", cfg.Roster.BatchDeleteCourses)
	admin.Put("/courses/:courseId", cfg.Roster.UpdateCourse)
	admin.Delete("/courses/:courseId", cfg.Roster.DeleteCourse)

	admin.Get("/export-chats", cfg.Export.ExportChats)
}
