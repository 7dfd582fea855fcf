package api

import (
	"github.com/clearbrook/driplog/internal/i18n"
	"github.com/gofiber/fiber/v2"
)

const (
	languageCookieName = "driplog_lang"
	contextLanguageKey = "language"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	if err := handler.parseSessionToken(c.Cookies(sessionCookieName)); err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.Next()
}

// LanguageMiddleware resolves the request language from the language
// cookie, then Accept-Language, then the default.
func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	language := i18n.DefaultLanguage
	if cookie := c.Cookies(languageCookieName); cookie != "" {
		language = i18n.NormalizeLanguage(cookie)
	} else if accept := c.Get(fiber.HeaderAcceptLanguage); accept != "" {
		language = i18n.DetectFromAcceptLanguage(accept)
	}
	c.Locals(contextLanguageKey, language)
	return c.Next()
}

func requestLanguage(c *fiber.Ctx) string {
	if language, ok := c.Locals(contextLanguageKey).(string); ok && language != "" {
		return language
	}
	return i18n.DefaultLanguage
}
