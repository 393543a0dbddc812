package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"alfredoptarigan/cv-project/internal/models"
	"alfredoptarigan/cv-project/internal/repositories"
)

const (
	SessionUserKey = "user_id"
	localsUser     = "current_user"
)

// InjectUser resolves the session user, if any, and stores it in Locals.
func InjectUser(store *session.Store, users repositories.UserRepository, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			log.Debug("failed to load session", zap.Error(err))
			return c.Next()
		}

		if raw := sess.Get(SessionUserKey); raw != nil {
			if uid, ok := raw.(uint); ok && uid > 0 {
				if user, err := users.FindByID(uid); err == nil {
					c.Locals(localsUser, user)
				}
			}
		}

		return c.Next()
	}
}

func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsUser).(*models.User)
	return user
}

func CurrentUserID(c *fiber.Ctx) *uint {
	user := CurrentUser(c)
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}

func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication credentials were not provided.",
			})
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication credentials were not provided.",
			})
		}
		if !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You do not have permission to perform this action.",
			})
		}
		return c.Next()
	}
}
