// Package schemas embeds the JSON schemas used to validate configuration.
package schemas

import _ "embed"

// EndpointSchema is the JSON schema for a single endpoints.yaml entry.
//
//go:embed endpoint.schema.json
var EndpointSchema []byte
