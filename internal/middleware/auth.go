package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

const ContextActor = "actor"

// Tokens are issued elsewhere. Claims read here:
//
//	sub       user id
//	role      admin | barber | customer
//	barber_id barber profile id, barbers only
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, code := parseBearer(c.GetHeader("Authorization"), secret)
		if code != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httperr.HTTPError{Code: code, Message: "Unauthorized."})
			return
		}
		c.Set(ContextActor, actor)
		c.Next()
	}
}

// OptionalAuth attaches an actor when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h := c.GetHeader("Authorization"); h != "" {
			if actor, code := parseBearer(h, secret); code == "" {
				c.Set(ContextActor, actor)
			}
		}
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor(c)
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		httperr.Forbidden(c, httperr.CodeForbidden, httperr.Message(httperr.CodeForbidden))
		c.Abort()
	}
}

// Actor returns the authenticated actor, or the zero actor.
func Actor(c *gin.Context) auth.Actor {
	if v, ok := c.Get(ContextActor); ok {
		if a, ok := v.(auth.Actor); ok {
			return a
		}
	}
	return auth.Actor{}
}

func parseBearer(header, secret string) (auth.Actor, string) {
	if header == "" {
		return auth.Actor{}, "missing_authorization_header"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return auth.Actor{}, "invalid_authorization_header"
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return auth.Actor{}, "invalid_token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return auth.Actor{}, "invalid_token_claims"
	}

	userID, ok := claims["sub"].(float64)
	if !ok || userID <= 0 {
		return auth.Actor{}, "invalid_token_payload"
	}
	role, _ := claims["role"].(string)

	switch role {
	case models.RoleCustomer:
		return auth.Customer(uint(userID)), ""
	case models.RoleAdmin:
		return auth.Admin(uint(userID)), ""
	case models.RoleBarber:
		barberID, ok := claims["barber_id"].(float64)
		if !ok || barberID <= 0 {
			return auth.Actor{}, "invalid_token_payload"
		}
		return auth.Barber(uint(userID), uint(barberID)), ""
	}
	return auth.Actor{}, "invalid_token_payload"
}
