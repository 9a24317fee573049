package report

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrSchemaViolation is returned when a document does not match the schema.
var ErrSchemaViolation = errors.New("report does not match schema")

//go:embed schema.json
var schemaJSON []byte

// Schema returns the JSON schema of the export document.
func Schema() []byte {
	return schemaJSON
}

// Validate checks an encoded report (JSON or YAML, optionally lz4-compressed)
// against the schema. It returns one line per violation, together with
// ErrSchemaViolation when there is at least one.
func Validate(data []byte) ([]string, error) {
	plain, err := readPlain(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var loader gojsonschema.JSONLoader

	if looksLikeJSON(plain) {
		loader = gojsonschema.NewBytesLoader(plain)
	} else {
		var generic any

		err = yaml.Unmarshal(plain, &generic)
		if err != nil {
			return nil, fmt.Errorf("decode yaml report: %w", err)
		}

		loader = gojsonschema.NewGoLoader(generic)
	}

	return validate(loader)
}

// ValidateDocument checks an in-memory document against the schema.
func ValidateDocument(doc Document) ([]string, error) {
	return validate(gojsonschema.NewGoLoader(doc))
}

func validate(document gojsonschema.JSONLoader) ([]string, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), document)
	if err != nil {
		return nil, fmt.Errorf("validate report: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return violations, fmt.Errorf("%w: %d violation(s)", ErrSchemaViolation, len(violations))
}
