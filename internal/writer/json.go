package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ExportJSON writes data as indented JSON to filename, creating its folder if needed.
func ExportJSON(filename string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return WriteJSON(file, data)
}

// WriteJSON writes data as indented JSON to out.
func WriteJSON(out io.Writer, data interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// TimestampedFilename returns baseDir/name_YYYYMMDD_HHMMSS.ext for the given time.
func TimestampedFilename(baseDir, name, ext string, at time.Time) string {
	return filepath.Join(baseDir, fmt.Sprintf("%s_%s.%s", name, at.Format("20060102_150405"), ext))
}
