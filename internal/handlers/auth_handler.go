package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"alfredoptarigan/cv-project/internal/middleware"
	"alfredoptarigan/cv-project/internal/models"
	"alfredoptarigan/cv-project/internal/repositories"
)

type AuthHandler struct {
	userRepo repositories.UserRepository
	store    *session.Store
	log      *zap.Logger
}

func NewAuthHandler(userRepo repositories.UserRepository, store *session.Store, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		store:    store,
		log:      log,
	}
}

// HandleLogin handles POST /auth/login
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username and password are required",
		})
	}

	user, err := h.userRepo.FindByUsername(req.Username)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to start session")
	}
	if err := sess.Regenerate(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to start session")
	}
	sess.Set(middleware.SessionUserKey, user.ID)
	if err := sess.Save(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save session")
	}

	h.log.Info("user logged in", zap.String("username", user.Username))
	return c.JSON(user)
}

// HandleLogout handles POST /auth/logout
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err := sess.Destroy(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to end session")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleMe handles GET /auth/me
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

// HandleDeleteUser handles DELETE /auth/users/:id. The user's request logs are
// kept and detached.
func (h *AuthHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return notFoundJSON(c)
	}
	if current := middleware.CurrentUser(c); current != nil && current.ID == id {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "You cannot delete your own account",
		})
	}

	if err := h.userRepo.Delete(id); err != nil {
		if isNotFound(err) {
			return notFoundJSON(c)
		}
		h.log.Error("failed to delete user", zap.Uint("user_id", id), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete user")
	}

	h.log.Info("user deleted", zap.Uint("user_id", id))
	return c.SendStatus(fiber.StatusNoContent)
}
