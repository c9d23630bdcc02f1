package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/voidshard/ledgerview/pkg/domain"
)

// JSONFile writes a feed as a single indented JSON array, replacing any
// previous export at the same path.
type JSONFile struct {
	filename string
}

func NewJSONFile(filename string) *JSONFile {
	return &JSONFile{filename: filename}
}

func (j *JSONFile) Write(ctx context.Context, records []*domain.TransactionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []*domain.TransactionRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}

	dir := filepath.Dir(j.filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledgerview-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write feed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close feed: %w", err)
	}
	return os.Rename(tmp.Name(), j.filename)
}
