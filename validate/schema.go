// Package validate provides JSON Schema and semantic validation for
// endpoint configuration.
package validate

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/initializ/copilot-relay/schemas"
	"github.com/xeipuuv/gojsonschema"
)

var (
	compiledSchema *gojsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func getSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		loader := gojsonschema.NewBytesLoader(schemas.EndpointSchema)
		compiledSchema, compileErr = gojsonschema.NewSchema(loader)
	})
	return compiledSchema, compileErr
}

// ValidateEndpointSchema validates raw JSON bytes of one endpoint entry
// against the endpoint schema. It returns a slice of validation error
// descriptions and an error if schema compilation fails.
func ValidateEndpointSchema(jsonData []byte) ([]string, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling endpoint schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("validating endpoint: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}

// ValidateRawEndpoints schema-validates decoded endpoint entries (see
// types.RawEndpoints). Null values are treated as unset. Errors are
// prefixed with the entry index.
func ValidateRawEndpoints(raw []map[string]any) ([]string, error) {
	if len(raw) == 0 {
		return []string{"endpoints: at least one endpoint is required"}, nil
	}

	var errs []string
	for i, entry := range raw {
		for k, v := range entry {
			if v == nil {
				delete(entry, k)
			}
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("endpoints[%d]: encoding entry: %w", i, err)
		}
		entryErrs, err := ValidateEndpointSchema(data)
		if err != nil {
			return nil, err
		}
		for _, e := range entryErrs {
			errs = append(errs, fmt.Sprintf("endpoints[%d]: %s", i, e))
		}
	}
	return errs, nil
}
