package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

// RBAC enforces role-based access control for routes. The pseudo role "SELF"
// admits callers whose id matches the :id path parameter and "ADMIN" admits
// administrators whatever their role.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowSelf, allowAdmin := false, false
	allowedRoles := make(map[models.UserRole]struct{})
	for _, a := range allowed {
		switch a {
		case "SELF":
			allowSelf = true
		case "ADMIN":
			allowAdmin = true
		default:
			allowedRoles[models.UserRole(a)] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}
		if allowAdmin && claims.IsAdmin {
			c.Next()
			return
		}
		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}

// RequireAdmin admits administrators only.
func RequireAdmin() gin.HandlerFunc {
	return RBAC("ADMIN")
}
