package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateJSON checks a raw request body against a JSON schema string.
// It returns a single error describing every violation found.
func ValidateJSON(schema string, document []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("request validation failed: %v", errs)
	}

	return nil
}
