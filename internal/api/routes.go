package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)

	goal := api.Group("/goal", handler.AuthRequired)
	goal.Get("/today", handler.GetGoalForToday)
	goal.Put("/today", handler.SetGoalForToday)

	api.Get("/progress/today", handler.AuthRequired, handler.GetProgressForToday)
	api.Post("/intakes", handler.AuthRequired, handler.RecordIntake)
	api.Get("/recommendation", handler.AuthRequired, handler.GetRecommendation)
	api.Get("/health/status", handler.AuthRequired, handler.GetHealthStatus)
}
