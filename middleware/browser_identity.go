// file: middleware/browser_identity.go
package middleware

import (
	"ctf-catalog/logger"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BrowserIDKey is both the session key and the gin context key of the browser identity.
const BrowserIDKey = "browserID"

// BrowserIdentity gives every browser a stable random id kept in its cookie session.
// Solved-state records are namespaced by it.
func BrowserIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, _ := session.Get(BrowserIDKey).(string)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			session.Set(BrowserIDKey, id)
			if err := session.Save(); err != nil {
				logger.Error.Printf("[BrowserIdentity] could not save session: %v", err)
			} else {
				logger.Debug.Printf("[BrowserIdentity] new browser %s", id)
			}
		}
		c.Set(BrowserIDKey, id)
		c.Next()
	}
}

// BrowserID returns the identity set by BrowserIdentity, or "".
func BrowserID(c *gin.Context) string {
	return c.GetString(BrowserIDKey)
}
