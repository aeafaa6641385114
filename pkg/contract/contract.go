// Package contract loads the OpenAPI description of the Posyandu API the
// dashboard consumes and checks payloads against its schemas.
package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var document []byte

// ErrContractViolation wraps every schema mismatch reported by a Contract.
var ErrContractViolation = errors.New("contract: payload violates API schema")

const (
	schemaRecord  = "Posyandu"
	schemaUpdate  = "PosyanduUpdate"
	schemaOptions = "KelurahanOptions"
)

// Contract holds the resolved schemas for the consumed endpoints.
type Contract struct {
	spec    *openapi3.T
	record  *openapi3.Schema
	update  *openapi3.Schema
	options *openapi3.Schema
}

// Document returns the raw embedded OpenAPI document.
func Document() []byte {
	out := make([]byte, len(document))
	copy(out, document)
	return out
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*Contract, error) {
	return LoadFromData(ctx, document)
}

// LoadFromData parses raw as an OpenAPI 3 document. It must declare the
// Posyandu, PosyanduUpdate and KelurahanOptions component schemas.
func LoadFromData(ctx context.Context, raw []byte) (*Contract, error) {
	if len(raw) == 0 {
		return nil, errors.New("contract: document payload is empty")
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate document: %w", err)
	}

	c := &Contract{spec: spec}
	for name, dest := range map[string]**openapi3.Schema{
		schemaRecord:  &c.record,
		schemaUpdate:  &c.update,
		schemaOptions: &c.options,
	} {
		ref := spec.Components.Schemas[name]
		if ref == nil || ref.Value == nil {
			return nil, fmt.Errorf("contract: schema %q not found", name)
		}
		*dest = ref.Value
	}
	return c, nil
}

// Operations lists the operation ids declared by the document, keyed by
// "METHOD path".
func (c *Contract) Operations() map[string]string {
	out := make(map[string]string)
	if c == nil || c.spec == nil || c.spec.Paths == nil {
		return out
	}
	for path, item := range c.spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			out[method+" "+path] = op.OperationID
		}
	}
	return out
}

// ValidateRecord checks a decoded GET /api/posyandu/{id} response.
func (c *Contract) ValidateRecord(v any) error {
	return c.visit(schemaRecord, c.record, v)
}

// ValidateUpdate checks a PUT /api/posyandu/{id} request body.
func (c *Contract) ValidateUpdate(v any) error {
	return c.visit(schemaUpdate, c.update, v)
}

// ValidateOptions checks a GET /api/wilayah-kerja response.
func (c *Contract) ValidateOptions(v any) error {
	return c.visit(schemaOptions, c.options, v)
}

func (c *Contract) visit(name string, schema *openapi3.Schema, v any) error {
	if c == nil || schema == nil {
		return nil
	}
	value, err := jsonValue(v)
	if err != nil {
		return fmt.Errorf("contract: encode %s: %w", name, err)
	}
	if err := schema.VisitJSON(value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrContractViolation, name, err)
	}
	return nil
}

// jsonValue normalises typed Go values into the generic shapes VisitJSON
// expects (map[string]any, []any, float64, string, bool, nil).
func jsonValue(v any) (any, error) {
	switch v.(type) {
	case nil, map[string]any, []any, string, float64, bool:
		return v, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
