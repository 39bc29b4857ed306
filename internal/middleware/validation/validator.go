package validation

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	// MaxFieldLength bounds each checked field, counted in runes.
	MaxFieldLength      int
	AllowedContentTypes []string
	Logger              *zap.Logger
}

func (cfg *Config) setDefaults() {
	if cfg.MaxFieldLength == 0 {
		cfg.MaxFieldLength = 5000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{fiber.MIMEApplicationJSON}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

// ContentType rejects POST and PUT bodies with a content type outside the
// allowed list.
func ContentType(cfg Config) fiber.Handler {
	cfg.setDefaults()

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		contentType := c.Get(fiber.HeaderContentType)
		if contentType == "" {
			return c.Next()
		}
		for _, allowed := range cfg.AllowedContentTypes {
			if strings.HasPrefix(contentType, allowed) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
			"error": "unsupported content type",
		})
	}
}

// Fields checks that the JSON body carries each named field as a string
// no longer than the configured limit. NUL bytes are stripped and the
// sanitized body replaces the original for downstream handlers. Blank
// values pass through so the domain layer can report them.
func Fields(cfg Config, names ...string) fiber.Handler {
	cfg.setDefaults()

	return func(c *fiber.Ctx) error {
		var body map[string]interface{}
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON body",
			})
		}

		for _, name := range names {
			raw, present := body[name]
			value, ok := raw.(string)
			if !present || !ok {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": name + " is required and must be a string",
				})
			}

			value = sanitizeString(value)
			if utf8.RuneCountInString(value) > cfg.MaxFieldLength {
				cfg.Logger.Warn("Field exceeds maximum length",
					zap.String("field", name),
					zap.String("ip", c.IP()),
					zap.Int("length", utf8.RuneCountInString(value)),
				)
				return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
					"error": name + " exceeds maximum length",
				})
			}
			body[name] = value
		}

		sanitized, err := json.Marshal(body)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON body",
			})
		}
		c.Request().SetBody(sanitized)

		return c.Next()
	}
}

func sanitizeString(input string) string {
	return strings.ReplaceAll(input, "\x00", "")
}
