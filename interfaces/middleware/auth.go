package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"shorts-player/domain/dto"
	"shorts-player/domain/model"
	"shorts-player/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

const ContextSubject = "subject"

// Auth verifies an HS256 bearer token signed with secretKey.
func Auth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{Message: "Unauthorized"}
		if secretKey == "" {
			logger.GetLogger().Warn("Rejecting request: no secret key configured")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		authorization := ctx.Request.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(authorization, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		claims, token, err := getClaim(strings.TrimSpace(raw), secretKey)
		if err != nil || token == nil || !token.Valid {
			res.Message = reason(err)
			logger.GetLogger().WithField("error", err).Debug("Rejected bearer token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		ctx.Set(ContextSubject, claims.Subject)
		ctx.Next()
	}
}

func reason(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		switch {
		case ve.Errors&jwt.ValidationErrorMalformed != 0:
			return "Malformed token"
		case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
			return "Token expired or not active yet"
		}
	}
	return "Unauthorized"
}

func getClaim(raw, secretKey string) (model.AdminClaims, *jwt.Token, error) {
	var claims model.AdminClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	return claims, token, err
}
