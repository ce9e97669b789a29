package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"localfonts/pkg/log"
)

// TokenTTL is how long a minted administrative token stays valid.
const TokenTTL = 24 * time.Hour

// MintToken signs an administrative bearer token for the given subject.
func MintToken(secret []byte, subject string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// TokenAuth guards the administrative API with HMAC-signed bearer
// tokens. Requests without a valid token are rejected before any
// handler runs.
func TokenAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				return unauthorized(ctx, "missing bearer token")
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				log.Warn().Err(err).Str("path", ctx.Request().URL.Path).Msg("Rejected API request")
				return unauthorized(ctx, "invalid or expired token")
			}

			return next(ctx)
		}
	}
}

func unauthorized(ctx echo.Context, message string) error {
	return respondFailure(ctx, http.StatusUnauthorized, "unauthorized", message)
}
