package jsonutil

import (
	"encoding/json"
	"fmt"

	"github.com/mantlenetworkio/op-create2/op-service/ioutil"
)

// WriteJSON writes value as indented JSON, followed by a newline, to the target.
func WriteJSON[X any](value X, target ioutil.OutputTarget) error {
	out, err := target()
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to encode to JSON: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	return nil
}
