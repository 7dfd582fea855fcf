package api

import (
	"github.com/clearbrook/driplog/internal/i18n"
	"github.com/clearbrook/driplog/internal/measure"
	"github.com/clearbrook/driplog/internal/services"
	"github.com/gofiber/fiber/v2"
)

type volumePayload struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func parseVolumePayload(c *fiber.Ctx) (measure.Volume, string) {
	payload := volumePayload{}
	if err := c.BodyParser(&payload); err != nil {
		return measure.Volume{}, "invalid input"
	}
	unit, ok := measure.ParseUnit(payload.Unit)
	if !ok {
		return measure.Volume{}, "unknown unit"
	}
	if payload.Value < 0 {
		return measure.Volume{}, "quantity must not be negative"
	}
	return measure.Volume{Value: payload.Value, Unit: unit}, ""
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) GetGoalForToday(c *fiber.Ctx) error {
	goal, found, err := handler.tracking.GoalForToday()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load goal")
	}
	if !found {
		return c.JSON(fiber.Map{"goal": nil})
	}
	return c.JSON(fiber.Map{
		"goal":  goal,
		"label": i18n.FormatVolume(goal, requestLanguage(c)),
	})
}

func (handler *Handler) SetGoalForToday(c *fiber.Ctx) error {
	volume, problem := parseVolumePayload(c)
	if problem != "" {
		return apiError(c, fiber.StatusBadRequest, problem)
	}
	if volume.FluidOunces() > services.MaximumDailyIntakeOz {
		return apiError(c, fiber.StatusBadRequest, "goal exceeds maximum daily intake")
	}

	if err := handler.tracking.SetGoalForToday(volume); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to save goal")
	}
	return c.JSON(fiber.Map{"goal": measure.FluidOuncesOf(volume.FluidOunces())})
}

func (handler *Handler) GetProgressForToday(c *fiber.Ctx) error {
	totals, found, err := handler.tracking.ProgressForToday()
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to load progress")
	}
	if !found {
		return c.JSON(fiber.Map{"progress": nil})
	}

	language := requestLanguage(c)
	return c.JSON(fiber.Map{
		"progress": fiber.Map{
			"ratio":    totals.Progress,
			"goal":     totals.Goal,
			"consumed": totals.ProgressMeasurement,
			"label":    i18n.FormatProgressLabel(totals.ProgressMeasurement, totals.Goal, language),
		},
	})
}

func (handler *Handler) RecordIntake(c *fiber.Ctx) error {
	volume, problem := parseVolumePayload(c)
	if problem != "" {
		return apiError(c, fiber.StatusBadRequest, problem)
	}

	intake, err := handler.tracking.RecordIntake(c.UserContext(), volume)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to save intake")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"intake": intake})
}

func (handler *Handler) GetRecommendation(c *fiber.Ctx) error {
	var mass *measure.Mass
	if latest, found, err := handler.vault.ReadLatestBodyMass(c.UserContext()); err == nil && found {
		mass = &latest
	}

	recommendation := services.RecommendedDailyIntake(mass)
	return c.JSON(fiber.Map{
		"recommendation":     recommendation,
		"based_on_body_mass": mass != nil,
		"label":              i18n.FormatVolume(recommendation, requestLanguage(c)),
	})
}

func (handler *Handler) GetHealthStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"available":              handler.vault.Available(),
		"status":                 handler.vault.Status(),
		"authorized":             handler.vault.IsAuthorized(),
		"can_request_permission": handler.vault.CanRequestPermission(),
	})
}
