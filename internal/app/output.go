package app

import (
	"encoding/json"
	"io"

	"github.com/vk/nixgraphgo/internal/derivation"
)

// writeDescription encodes one description to out, one document per line
// in NDJSON mode or one indented document per block in pretty mode.
func writeDescription(out io.Writer, description *derivation.Description, pretty bool) error {
	var (
		encoded []byte
		err     error
	)
	if pretty {
		encoded, err = json.MarshalIndent(description, "", "  ")
	} else {
		encoded, err = json.Marshal(description)
	}
	if err != nil {
		return err
	}

	if _, err := out.Write(encoded); err != nil {
		return err
	}
	_, err = out.Write([]byte("\n"))
	return err
}
