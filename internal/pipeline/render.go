package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteJSON renders v as indented JSON to path, or to stdout when path
// is empty. All CLI output goes through here so results stay
// machine-readable; human-oriented progress lands on stderr instead.
func WriteJSON(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}

	return nil
}
