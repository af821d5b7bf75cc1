package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderEmbeddedTemplate(t *testing.T) {
	if err := Initialize(map[string]interface{}{"siteName": "Example Site"}, ""); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	html, err := RenderHTML("mail/twofactor-enabled", map[string]interface{}{
		"backupCodeCount": 10,
	})
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	if !strings.Contains(html, "Example Site") {
		t.Fatalf("rendered output missing site name: %s", html)
	}
	if !strings.Contains(html, "10") {
		t.Fatalf("rendered output missing backup code count: %s", html)
	}
}

func TestRenderTemplateDirOverride(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "mail"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	override := filepath.Join(tmpDir, "mail", "twofactor-enabled.html")
	if err := os.WriteFile(override, []byte("custom {{.siteName}}"), 0o644); err != nil {
		t.Fatalf("write template failed: %v", err)
	}

	if err := Initialize(map[string]interface{}{"siteName": "Example Site"}, tmpDir); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	html, err := RenderHTML("mail/twofactor-enabled", nil)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	if html != "custom Example Site" {
		t.Fatalf("override template not used, got %q", html)
	}
}

func TestRenderFallbackWhenOverrideMissing(t *testing.T) {
	if err := Initialize(map[string]interface{}{"siteName": "Example Site"}, t.TempDir()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	html, err := RenderHTML("mail/twofactor-disabled", nil)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	if !strings.Contains(html, "Example Site") {
		t.Fatalf("fallback render missing site name: %s", html)
	}
}
