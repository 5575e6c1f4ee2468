package web_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ErlanBelekov/paywall/internal/web"
)

func TestTemplates_AllPagesParse(t *testing.T) {
	tmpl := web.Templates()
	for _, name := range []string{"login.html", "magic_login.html", "token_handler.html", "dashboard.html"} {
		if tmpl.Lookup(name) == nil {
			t.Errorf("template %q not found", name)
		}
	}
}

func TestDashboard_EscapesEmail(t *testing.T) {
	var buf bytes.Buffer
	err := web.Templates().ExecuteTemplate(&buf, "dashboard.html", map[string]any{"Email": "<script>x</script>"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.Contains(buf.String(), "<script>x</script>") {
		t.Error("email was not escaped")
	}
}

func TestTokenHandler_PostsToSessionPath(t *testing.T) {
	var buf bytes.Buffer
	err := web.Templates().ExecuteTemplate(&buf, "token_handler.html", map[string]any{"SessionPath": "/api/session"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), `action="/api/session"`) {
		t.Error("form does not post to /api/session")
	}
}
