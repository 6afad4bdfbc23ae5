package precompute

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/klauspost/compress/gzip"

	"zipcodes/internal/dataset"
)

// WriteArtifact writes records as a gzip compressed JSON array, the format
// embedded by package dataset.
func WriteArtifact(records []dataset.Record, outputPath string) error {
	if len(records) == 0 {
		return errors.New("refusing to write an empty dataset")
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("failed to compress records: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to compress records: %w", err)
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	return nil
}
