// Package api embeds the OpenAPI document of the health surface.
package api

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var document []byte

// YAML returns the embedded document as written.
func YAML() []byte {
	return document
}

// Swagger parses and validates the embedded document. Every call returns a
// fresh copy because the router clears its servers.
func Swagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

var jsonDocument = sync.OnceValues(func() ([]byte, error) {
	doc, err := Swagger()
	if err != nil {
		return nil, err
	}
	return doc.MarshalJSON()
})

// JSON renders the document as JSON for /openapi.json.
func JSON() ([]byte, error) {
	return jsonDocument()
}
