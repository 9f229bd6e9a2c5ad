package bank

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// SupportedMajor is the bank format major version this build understands.
const SupportedMajor = "v1"

const schemaURL = "https://vocabquiz.local/schema/bank.json"

//go:embed data/schema.json
var schemaJSON []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var parsed any
	if err := json.Unmarshal(schemaJSON, &parsed); err != nil {
		return nil, fmt.Errorf("parse bank schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, parsed); err != nil {
		return nil, fmt.Errorf("add bank schema: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile bank schema: %w", err)
	}
	return compiled, nil
})

// validateDocument checks raw bank JSON against the bank schema.
func validateDocument(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrInvalidBank, err)
	}

	compiled, err := compileSchema()
	if err != nil {
		return err
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("%w: schema validation failed: %v", ErrInvalidBank, err)
	}
	return nil
}

// checkVersion rejects banks whose semver major differs from SupportedMajor.
func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: version %q is not a semantic version", ErrInvalidBank, v)
	}
	if major := semver.Major(v); major != SupportedMajor {
		return fmt.Errorf("%w: version %s unsupported (want %s.x.y)", ErrInvalidBank, v, SupportedMajor)
	}
	return nil
}
