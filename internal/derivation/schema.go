package derivation

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of the Description document, pretty
// printed. Consumers use it to validate extraction output without running
// an extraction.
func Schema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		// Inline everything so the schema is one self-contained document.
		ExpandedStruct: true,
		DoNotReference: true,
	}
	schema := reflector.Reflect(&Description{})
	return json.MarshalIndent(schema, "", "  ")
}
