// Package schema embeds the JSON Schema for the analysis result
// contract. External consumers depend on these field names bit-exact;
// the schema is the executable form of that contract and is asserted
// against real pipeline output in tests.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed analysis.schema.json
var analysisSchema string

const schemaName = "analysis.schema.json"

// Compile returns the compiled analysis result schema.
func Compile() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaName, strings.NewReader(analysisSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	s, err := c.Compile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
}

// Validate checks serialized analysis JSON against the contract.
func Validate(data []byte) error {
	s, err := Compile()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode analysis json: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("analysis contract: %w", err)
	}
	return nil
}
