package runtime

import (
	"regexp"

	"github.com/initializ/copilot-relay/types"
)

// Environment variables consulted by ResolveEndpoints.
const (
	EnvDirectLineSecret = "DIRECT_LINE_SECRET"
	EnvDirectLineURL    = "DIRECT_LINE_URL"
)

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnv replaces ${NAME} references in a config value with values from
// env. Any other use of $ is kept literally. Unknown variables expand to the
// empty string, which lets the field fall back to its default.
func ExpandEnv(s string, env map[string]string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return env[ref[2:len(ref)-1]]
	})
}

// ExpandEndpoint expands ${NAME} references in the fields that may carry
// them: directLineSecret and url.
func ExpandEndpoint(ep *types.EndpointConfig, env map[string]string) {
	ep.DirectLineSecret = ExpandEnv(ep.DirectLineSecret, env)
	ep.URL = ExpandEnv(ep.URL, env)
}

// ResolveEndpoints applies environment overrides to the first endpoint,
// the one used when a single backend is configured:
//
//  1. DIRECT_LINE_SECRET replaces a placeholder secret
//  2. DIRECT_LINE_URL replaces a defaulted url
//
// Explicit values in endpoints.yaml always win.
func ResolveEndpoints(cfg *types.EndpointsConfig, env map[string]string) {
	if len(cfg.Endpoints) == 0 {
		return
	}
	ep := &cfg.Endpoints[0]
	if ep.Type != types.TypeCopilot {
		return
	}
	if s := env[EnvDirectLineSecret]; s != "" && ep.DirectLineSecret == types.DefaultDirectLineSecret {
		ep.DirectLineSecret = s
	}
	if u := env[EnvDirectLineURL]; u != "" && ep.URL == types.DefaultDirectLineURL {
		ep.URL = u
	}
}
