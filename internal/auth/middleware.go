package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlibelula/movie-api/internal/apperr"
	"github.com/mrlibelula/movie-api/internal/response"
	"github.com/mrlibelula/movie-api/internal/users"
)

const principalKey = "principal"

// Principal is the authenticated caller, resolved once per request.
type Principal struct {
	UserID uint
	Name   string
	Email  string
}

// PrincipalResolver loads the user a verified token refers to.
type PrincipalResolver interface {
	Get(ctx context.Context, id uint) (*users.User, error)
}

// RequireAuth rejects requests without a valid bearer token before any
// handler runs and stores the resolved Principal on the context.
func RequireAuth(tokens *TokenManager, resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if h == "" || !strings.HasPrefix(h, "Bearer ") || tokenStr == "" {
			response.Error(c, apperr.Unauthorized("No token provided"))
			return
		}

		claims, err := tokens.ParseToken(tokenStr)
		if err != nil {
			response.Error(c, apperr.Unauthorized("Invalid token"))
			return
		}

		u, err := resolver.Get(c.Request.Context(), claims.UserID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				response.Error(c, apperr.Unauthorized("Invalid token"))
				return
			}
			response.Error(c, err)
			return
		}

		SetPrincipal(c, Principal{UserID: u.ID, Name: u.Name, Email: u.Email})
		c.Next()
	}
}

func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the principal stored by RequireAuth.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// MustPrincipal is PrincipalFrom for handlers mounted behind RequireAuth;
// it renders a 401 and returns false when the principal is missing.
func MustPrincipal(c *gin.Context) (Principal, bool) {
	p, ok := PrincipalFrom(c)
	if !ok {
		response.Error(c, apperr.Unauthorized("Unauthenticated"))
	}
	return p, ok
}
