package validate

import (
	"fmt"
	"net/url"

	"github.com/initializ/copilot-relay/types"
)

var knownTypes = map[string]bool{types.TypeCopilot: true}

// ValidationResult holds errors and warnings from config validation.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Err returns the first error as an error value, or nil if valid.
func (r *ValidationResult) Err() error {
	if r.IsValid() {
		return nil
	}
	if len(r.Errors) == 1 {
		return fmt.Errorf("invalid endpoint config: %s", r.Errors[0])
	}
	return fmt.Errorf("invalid endpoint config: %s (and %d more)", r.Errors[0], len(r.Errors)-1)
}

// ValidateEndpointConfig checks a defaulted EndpointConfig for errors and
// warnings.
func ValidateEndpointConfig(ep *types.EndpointConfig) *ValidationResult {
	r := &ValidationResult{}
	checkEndpoint(r, "", ep)
	return r
}

// ValidateEndpointsConfig checks every endpoint and the set as a whole.
func ValidateEndpointsConfig(cfg *types.EndpointsConfig) *ValidationResult {
	r := &ValidationResult{}
	if len(cfg.Endpoints) == 0 {
		r.Errors = append(r.Errors, "at least one endpoint is required")
		return r
	}

	seen := make(map[string]bool, len(cfg.Endpoints))
	for i := range cfg.Endpoints {
		ep := &cfg.Endpoints[i]
		checkEndpoint(r, fmt.Sprintf("endpoints[%d].", i), ep)
		if seen[ep.Name] {
			r.Errors = append(r.Errors, fmt.Sprintf("endpoints[%d].name %q is duplicated", i, ep.Name))
		}
		seen[ep.Name] = true
	}
	return r
}

func checkEndpoint(r *ValidationResult, prefix string, ep *types.EndpointConfig) {
	switch {
	case ep.Type == "":
		r.Errors = append(r.Errors, prefix+"type is required")
	case !knownTypes[ep.Type]:
		r.Errors = append(r.Errors, fmt.Sprintf("%stype %q must be %q", prefix, ep.Type, types.TypeCopilot))
	}

	if ep.Weight < 1 {
		r.Errors = append(r.Errors, fmt.Sprintf("%sweight %d must be a positive integer", prefix, ep.Weight))
	}

	if !isURL(ep.URL) {
		r.Errors = append(r.Errors, fmt.Sprintf("%surl %q is not a valid URL", prefix, ep.URL))
	}

	if _, err := ep.PollEvery(); err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("%spollInterval %q is not a valid duration", prefix, ep.PollInterval))
	}

	if ep.TimeoutSecs < 0 {
		r.Errors = append(r.Errors, fmt.Sprintf("%stimeoutSecs %d must not be negative", prefix, ep.TimeoutSecs))
	}

	if ep.DirectLineSecret == types.DefaultDirectLineSecret {
		r.Warnings = append(r.Warnings, prefix+"directLineSecret is the placeholder value")
	}
	if ep.MaxPolls < 0 {
		r.Warnings = append(r.Warnings, prefix+"maxPolls is negative; reply polling is unbounded")
	}
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
