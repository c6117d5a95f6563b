package serverutils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const participantLocal = "user_id"

var (
	ErrMissingToken   = errors.New("missing token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidSubject = errors.New("token has no usable user_id")
)

// ParseParticipantToken validates an HMAC-signed token and returns its user_id claim.
// The account service issues user_id either as a JSON number or a numeric string.
func ParseParticipantToken(tokenStr string, secret []byte) (int64, error) {
	if tokenStr == "" {
		return 0, ErrMissingToken
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	switch v := claims["user_id"].(type) {
	case float64:
		if v != math.Trunc(v) || v <= 0 {
			return 0, ErrInvalidSubject
		}
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return 0, ErrInvalidSubject
		}
		return id, nil
	default:
		return 0, ErrInvalidSubject
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}

func NewJwtMiddleware(secret string) fiber.Handler {
	key := []byte(secret)
	return func(ctx *fiber.Ctx) error {
		tokenStr := BearerToken(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		participantID, err := ParseParticipantToken(tokenStr, key)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		ctx.Locals(participantLocal, participantID)
		return ctx.Next()
	}
}

// ParticipantID returns the authenticated participant set by the JWT middleware.
func ParticipantID(ctx *fiber.Ctx) (int64, bool) {
	id, ok := ctx.Locals(participantLocal).(int64)
	return id, ok
}
