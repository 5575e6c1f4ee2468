package middleware

import (
	"errors"
	"net/http"

	"github.com/ErlanBelekov/paywall/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Session gates pages on the access_token cookie and redirects to
// redirectTo when it is missing.
//
// With an empty jwtSecret only possession of the cookie is checked; the
// token is never shown to the identity provider. With a secret the token
// must be an HS256 JWT signed by it and not expired, and "userID"/"email"
// are set from its claims.
func Session(jwtSecret []byte, redirectTo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(domain.SessionCookie)
		if err != nil || raw == "" {
			c.Redirect(http.StatusFound, redirectTo)
			c.Abort()
			return
		}

		if len(jwtSecret) == 0 {
			c.Next()
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return jwtSecret, nil
		}, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			ClearSessionCookie(c)
			c.Redirect(http.StatusFound, redirectTo)
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, ok := claims["sub"].(string); ok {
				c.Set("userID", sub)
			}
			if email, ok := claims["email"].(string); ok {
				c.Set("email", email)
			}
		}
		c.Next()
	}
}

// SetSessionCookie writes the access token as an HttpOnly, Secure, SameSite=Lax cookie.
func SetSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(domain.SessionCookie, token, 0, "/", "", true, true)
}

// ClearSessionCookie expires the access token cookie with matching attributes.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(domain.SessionCookie, "", -1, "/", "", true, true)
}
