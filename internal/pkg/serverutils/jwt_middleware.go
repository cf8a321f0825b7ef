package serverutils

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalUserId   = "user_id"
	LocalUserName = "user_name"
)

// JwtMiddleware accepts HS256 bearer tokens carrying user_id and, optionally, name.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}
		userId, _ := claims["user_id"].(string)
		if userId == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Token missing user_id"))
		}
		name, _ := claims["name"].(string)
		if name == "" {
			name = userId
		}

		ctx.Locals(LocalUserId, userId)
		ctx.Locals(LocalUserName, name)
		return ctx.Next()
	}
}

// CurrentUser returns the identity JwtMiddleware stored on the request.
func CurrentUser(ctx *fiber.Ctx) (id, name string) {
	id, _ = ctx.Locals(LocalUserId).(string)
	name, _ = ctx.Locals(LocalUserName).(string)
	return id, name
}
