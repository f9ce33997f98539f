package middleware

import (
	"context"
	"strings"

	"bot_admin/internal/botconfig"
	"bot_admin/internal/common"
	"bot_admin/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// LocalActor là key trong c.Locals chứa *botconfig.Actor của người gọi
const LocalActor = "actor"

// Authenticator xác thực bearer token và trả về người gọi
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*botconfig.Actor, error)
}

// bearerToken tách token từ header "Authorization: Bearer <token>"
func bearerToken(c fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", common.ErrTokenMissing
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", common.ErrTokenInvalid
	}
	return strings.TrimSpace(parts[1]), nil
}

func setActor(c fiber.Ctx, actor *botconfig.Actor) {
	c.Locals(LocalActor, actor)
	c.Locals(logger.LocalActorID, actor.ID)
}

// AuthMiddleware bắt buộc có token hợp lệ, ghi actor vào Locals
func AuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			logger.WithRequest(c).Warn("[AUTH] Missing or malformed Authorization header")
			return HandleErrorResponse(c, err)
		}

		actor, err := auth.Authenticate(c.Context(), token)
		if err != nil {
			return HandleErrorResponse(c, err)
		}
		setActor(c, actor)
		return c.Next()
	}
}

// OptionalAuthMiddleware ghi actor vào Locals nếu token hợp lệ, ngược lại cho qua như người dùng ẩn danh
func OptionalAuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return c.Next()
		}
		actor, err := auth.Authenticate(c.Context(), token)
		if err != nil {
			logger.WithRequest(c).WithError(err).Debug("[AUTH] Optional token rejected, continuing anonymously")
			return c.Next()
		}
		setActor(c, actor)
		return c.Next()
	}
}

// ActorFrom lấy actor đã xác thực, nil nếu request ẩn danh
func ActorFrom(c fiber.Ctx) *botconfig.Actor {
	actor, _ := c.Locals(LocalActor).(*botconfig.Actor)
	return actor
}
