// File: controllers/admin_controller.go
package controllers

import (
	"net/http"

	"ctf-catalog/logger"
	"ctf-catalog/middleware"
	"ctf-catalog/services"
	"ctf-catalog/websocket"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// ---------------- Admin Controller ----------------

// AdminController lets an operator reload the catalog and inspect the server.
type AdminController struct {
	// PasswordHash is the bcrypt hash of the admin password; empty disables login.
	PasswordHash string
	Catalog      *services.CatalogStore
	Pages        *websocket.Registry
}

// NewAdminController initializes a new instance of AdminController
func NewAdminController(passwordHash string, catalog *services.CatalogStore, pages *websocket.Registry) *AdminController {
	return &AdminController{PasswordHash: passwordHash, Catalog: catalog, Pages: pages}
}

// checkPasswordHash verifies if the provided plain-text password matches the stored hashed password.
func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ---------------- session management ----------------

// Login checks the "password" form field and marks the session as admin.
func (ac *AdminController) Login(c *gin.Context) {
	if ac.PasswordHash == "" {
		logger.Warn.Println("[Login] admin login attempted but no password hash is configured")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin login disabled"})
		return
	}

	password := c.PostForm("password")
	if !checkPasswordHash(password, ac.PasswordHash) {
		logger.Warn.Printf("[Login] invalid admin password from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.AdminSessionKey, true)
	if err := session.Save(); err != nil {
		logger.Error.Printf("[Login] Error saving session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session error"})
		return
	}
	logger.Info.Printf("[Login] admin logged in from %s", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"message": "Logged in"})
}

// Logout drops the admin flag. The browser identity is kept.
func (ac *AdminController) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(middleware.AdminSessionKey)
	if err := session.Save(); err != nil {
		logger.Error.Printf("[Logout] Error saving session during logout: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ---------------- catalog management ----------------

// Reload re-reads the catalog source. Pages already open keep the catalog they were built
// from; new pages see the reloaded one.
func (ac *AdminController) Reload(c *gin.Context) {
	snap, err := ac.Catalog.Reload()
	if err != nil {
		logger.Error.Printf("[Reload] catalog reload failed: %v", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	logger.Info.Printf("[Reload] catalog reloaded by admin: %d collections", snap.Stats.CollectionCount)
	c.JSON(http.StatusOK, catalogStats(snap, ac.Pages))
}

// Status reports the active catalog and open pages.
func (ac *AdminController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, catalogStats(ac.Catalog.Current(), ac.Pages))
}
