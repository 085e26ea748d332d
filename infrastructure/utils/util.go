package utils

import (
	"time"

	"shorts-player/domain/model"
	"shorts-player/infrastructure/logger"

	"github.com/golang-jwt/jwt"
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// GenerateAdminToken signs an HS256 bearer token for the admin and monitoring routes.
func GenerateAdminToken(subject, secretKey string, ttl time.Duration) (string, error) {
	now := GetCurrentTime()
	claims := model.AdminClaims{
		Role: "admin",
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}
