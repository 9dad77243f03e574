package tef

// ============================================================================
// Responsibilities:
// 1. Derive the output path next to the source log
// 2. Serialize a Document as JSON
// 3. Write atomically (temp file + rename) so a failed run leaves no output
// ============================================================================

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtension replaces the source log's extension.
const DefaultExtension = ".json"

// ErrOverwriteInput indicates the derived output path is the source log itself.
var ErrOverwriteInput = errors.New("tef: output path would overwrite the input log")

// OutputPath replaces the last extension of src with ext. "run.log" becomes
// "run.json" and "run" becomes "run.json".
func OutputPath(src, ext string) (string, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	out := strings.TrimSuffix(src, filepath.Ext(src)) + ext
	if filepath.Clean(out) == filepath.Clean(src) {
		return "", fmt.Errorf("%w: %s", ErrOverwriteInput, src)
	}
	return out, nil
}

// Marshal encodes doc, indented when indent is true.
func Marshal(doc Document, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// WriteFile atomically writes doc to path.
//
// Flow:
// 1. Write to path + ".tmp"
// 2. os.Rename over the final path
func WriteFile(path string, doc Document, indent bool) error {
	data, err := Marshal(doc, indent)
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp trace: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename trace: %w", err)
	}

	return nil
}
