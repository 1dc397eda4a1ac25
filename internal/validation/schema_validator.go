package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/osse101/TillSync_Go/internal/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// PayloadValidator checks pending operation payloads before they are queued.
// Resource/type pairs with no schema are accepted as-is.
type PayloadValidator interface {
	ValidateOperation(op domain.PendingOperation) error
	HasSchema(resource string, opType domain.OperationType) bool
}

type validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewPayloadValidator compiles every embedded payload schema
func NewPayloadValidator() (PayloadValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()

	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to list payload schemas: %w", err)
	}

	v := &validator{schemas: make(map[string]*jsonschema.Schema, len(entries))}
	for _, entry := range entries {
		name := entry.Name()
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse schema %s: %w", name, err)
		}
		if err := compiler.AddResource(name, doc); err != nil {
			return nil, fmt.Errorf("failed to add schema resource %s: %w", name, err)
		}

		schema, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		v.schemas[strings.TrimSuffix(name, ".json")] = schema
	}

	return v, nil
}

func schemaKey(resource string, opType domain.OperationType) string {
	return resource + "." + string(opType)
}

// HasSchema reports whether a schema governs the resource/type pair
func (v *validator) HasSchema(resource string, opType domain.OperationType) bool {
	_, ok := v.schemas[schemaKey(resource, opType)]
	return ok
}

// ValidateOperation validates op.Data against the schema for its resource and type
func (v *validator) ValidateOperation(op domain.PendingOperation) error {
	schema, ok := v.schemas[schemaKey(op.Resource, op.Type)]
	if !ok {
		return nil
	}

	// Normalize Go values (ints, Amount, time.Time) into plain JSON values
	raw, err := json.Marshal(op.Data)
	if err != nil {
		return fmt.Errorf("%w: payload is not JSON encodable: %v", domain.ErrInvalidOperation, err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidOperation, err)
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %s %s: %s", domain.ErrInvalidOperation, op.Resource, op.Type, formatValidationError(err))
	}
	return nil
}

// formatValidationError flattens a schema validation error tree into one line
func formatValidationError(err error) string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return err.Error()
	}
	var msgs []string
	collectErrors(validationErr, &msgs)
	return strings.Join(msgs, "; ")
}

// collectErrors walks the cause tree, keeping only leaf failures
func collectErrors(err *jsonschema.ValidationError, msgs *[]string) {
	if len(err.Causes) == 0 {
		*msgs = append(*msgs, formatError(err))
		return
	}
	for _, cause := range err.Causes {
		collectErrors(cause, msgs)
	}
}

// formatError formats a single validation error
func formatError(err *jsonschema.ValidationError) string {
	location := "/" + strings.Join(err.InstanceLocation, "/")

	keywords := ""
	if err.ErrorKind != nil {
		keywords = strings.Join(err.ErrorKind.KeywordPath(), ".")
	}

	if keywords != "" {
		return fmt.Sprintf("at %s: %s validation failed", location, keywords)
	}
	return fmt.Sprintf("at %s: validation failed", location)
}
