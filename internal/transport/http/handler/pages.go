package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionPath is where the token handler page posts the magic-link token.
const SessionPath = "/api/session"

// PageHandler renders the gateway's static pages. Templates are registered
// on the engine with SetHTMLTemplate.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// GET / and GET /login
func (h *PageHandler) Login(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

// GET /magic
func (h *PageHandler) Magic(c *gin.Context) {
	c.HTML(http.StatusOK, "magic_login.html", nil)
}

// GET /token-handler
func (h *PageHandler) TokenHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "token_handler.html", gin.H{"SessionPath": SessionPath})
}

// GET /dashboard, behind middleware.Session.
func (h *PageHandler) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard.html", gin.H{"Email": c.GetString("email")})
}
