package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// fragmentPolicy strips all markup; text that reaches a fragment may come
// from the caller's form input.
var fragmentPolicy = bluemonday.StrictPolicy()

// fragment writes a single-paragraph HTML response for HTMX targets.
func fragment(c *gin.Context, status int, msg string) {
	c.Data(status, "text/html; charset=utf-8", []byte("<p>"+fragmentPolicy.Sanitize(msg)+"</p>"))
}
