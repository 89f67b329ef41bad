package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user id set by BearerAuth.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

// NewToken signs an HS256 token whose "id" claim is the user id.
func NewToken(secret string, userID int64, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":  userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// BearerAuth verifies the Authorization bearer token and stores the user id
// from its "id" claim in the request context.
func BearerAuth(secret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(tokenString) == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
				writeUnauthorised(w, "Not authorized, no token")
				return
			}

			userID, err := parseUserID(strings.TrimSpace(tokenString), secret)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
				writeUnauthorised(w, "Not authorized, token failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func parseUserID(tokenString, secret string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token claims")
	}

	var id int64
	switch v := claims["id"].(type) {
	case float64:
		if v != math.Trunc(v) || v >= math.MaxInt64 {
			return 0, errors.New("invalid id claim: not a whole number")
		}
		id = int64(v)
	case string:
		id, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid id claim: %w", err)
		}
	default:
		return 0, errors.New("missing id claim")
	}

	if id <= 0 {
		return 0, errors.New("invalid id claim")
	}
	return id, nil
}
