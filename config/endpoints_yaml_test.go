package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/initializ/copilot-relay/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing endpoints.yaml: %v", err)
	}
	return path
}

func TestLoadEndpointsConfig(t *testing.T) {
	path := writeConfig(t, `
endpoints:
  - name: support
    type: copilot
    weight: 2
    directLineSecret: ${SECRET}
`)
	cfg, err := LoadEndpointsConfig(path, map[string]string{"SECRET": "S"})
	if err != nil {
		t.Fatalf("LoadEndpointsConfig error: %v", err)
	}
	ep := cfg.Endpoints[0]
	if ep.DirectLineSecret != "S" {
		t.Errorf("secret: got %q", ep.DirectLineSecret)
	}
	if ep.URL != types.DefaultDirectLineURL {
		t.Errorf("url: got %q", ep.URL)
	}
}

func TestLoadEndpointsConfig_EnvOverride(t *testing.T) {
	path := writeConfig(t, "endpoints:\n  - type: copilot\n")
	cfg, err := LoadEndpointsConfig(path, map[string]string{"DIRECT_LINE_SECRET": "from-env"})
	if err != nil {
		t.Fatalf("LoadEndpointsConfig error: %v", err)
	}
	if cfg.Endpoints[0].DirectLineSecret != "from-env" {
		t.Errorf("secret: got %q", cfg.Endpoints[0].DirectLineSecret)
	}
}

func TestLoadEndpointsConfig_SchemaErrors(t *testing.T) {
	path := writeConfig(t, `
endpoints:
  - type: copilot
    url: not-a-url
`)
	_, err := LoadEndpointsConfig(path, nil)
	if err == nil {
		t.Fatal("expected schema error")
	}
	if !strings.Contains(err.Error(), "endpoints[0]") {
		t.Errorf("error should name the entry: %v", err)
	}
}

func TestLoadEndpointsConfig_MissingFile(t *testing.T) {
	if _, err := LoadEndpointsConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadEndpointsConfig_UnsetVarFallsBackToDefault(t *testing.T) {
	path := writeConfig(t, "endpoints:\n  - type: copilot\n    url: ${DIRECT_LINE_URL_UNSET}\n")
	cfg, err := LoadEndpointsConfig(path, map[string]string{})
	if err != nil {
		t.Fatalf("LoadEndpointsConfig error: %v", err)
	}
	if cfg.Endpoints[0].URL != types.DefaultDirectLineURL {
		t.Errorf("url: got %q", cfg.Endpoints[0].URL)
	}
}

func TestLoadEndpointsConfig_LiteralDollarInSecret(t *testing.T) {
	path := writeConfig(t, "endpoints:\n  - type: copilot\n    directLineSecret: abc$def.ghi\n")
	cfg, err := LoadEndpointsConfig(path, map[string]string{"def": "X"})
	if err != nil {
		t.Fatalf("LoadEndpointsConfig error: %v", err)
	}
	if got := cfg.Endpoints[0].DirectLineSecret; got != "abc$def.ghi" {
		t.Errorf("secret: got %q, want %q", got, "abc$def.ghi")
	}
}

func TestLoadEndpointsConfig_EnvValueIsNotYAML(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"comment marker", "abc #def"},
		{"mapping separator", "abc: def"},
		{"flow and quotes", `{x: "y"}, [z]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "endpoints:\n  - type: copilot\n    directLineSecret: ${S}\n")
			cfg, err := LoadEndpointsConfig(path, map[string]string{"S": tt.value})
			if err != nil {
				t.Fatalf("LoadEndpointsConfig error: %v", err)
			}
			if got := cfg.Endpoints[0].DirectLineSecret; got != tt.value {
				t.Errorf("secret: got %q, want %q", got, tt.value)
			}
		})
	}
}

func TestLoadEndpointsConfig_ExpandedURLIsSchemaChecked(t *testing.T) {
	path := writeConfig(t, "endpoints:\n  - type: copilot\n    url: ${U}\n")
	_, err := LoadEndpointsConfig(path, map[string]string{"U": "not-a-url"})
	if err == nil {
		t.Fatal("expected schema error for expanded url")
	}
	if !strings.Contains(err.Error(), "endpoints[0]") {
		t.Errorf("error should name the entry: %v", err)
	}
}
