package outwriter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/huangsam/govscope/schema"
)

// DocumentPath is where the result document of one analysis is written.
func DocumentPath(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// WriteResultDocument writes one envelope as indented JSON into dir and
// returns the file path. The directory is created when missing.
func WriteResultDocument(dir string, env schema.Envelope) (string, error) {
	if env.Metadata.AnalysisName == "" {
		return "", fmt.Errorf("result document has no analysis name")
	}
	path := DocumentPath(dir, env.Metadata.AnalysisName)
	if err := writeFileAtomic(path, func(w io.Writer) error {
		return writeJSON(w, env)
	}); err != nil {
		return "", err
	}
	return path, nil
}

// WriteEnrichedStream writes the enriched records as JSON lines to path.
func WriteEnrichedStream(path string, records []schema.EnrichedRecord) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		buf := bufio.NewWriter(w)
		if err := writeJSONLines(buf, records); err != nil {
			return err
		}
		return buf.Flush()
	})
}

// writeFileAtomic writes into a temp file next to path and renames it over
// path once the write succeeded, so readers never see a partial document.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	_ = tmp.Chmod(0o644)

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
