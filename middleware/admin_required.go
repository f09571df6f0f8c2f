// Package middleware provides request filters and security checks for the application.
// file: middleware/admin_required.go
package middleware

import (
	"net/http"

	"ctf-catalog/logger"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AdminSessionKey marks an admin session.
const AdminSessionKey = "isAdmin"

// AdminRequired blocks requests whose session has not passed the admin login.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		isAdmin, ok := session.Get(AdminSessionKey).(bool)

		logger.Debug.Printf("[AdminRequired] isAdmin=%v, ok=%v, path=%s", isAdmin, ok, c.Request.URL.Path)

		if !ok || !isAdmin {
			logger.Warn.Printf("[AdminRequired] Unauthorized attempt blocked from %s", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
