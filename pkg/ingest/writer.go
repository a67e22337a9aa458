package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kithlabs/kith/pkg/engine"
)

// WriteRecommendations writes records as "source \t candidate" lines, no
// header. The file is staged next to the destination and renamed into place
// only after every record is flushed, so a failed run never leaves partial
// output behind.
func WriteRecommendations(path string, recs []engine.Recommendation) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name()) // no-op after a successful rename
	}()

	if err := WriteRecommendationsTo(tmp, recs); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish output: %w", err)
	}
	return nil
}

// WriteRecommendationsTo streams records to w in the exchange format. Record
// order is whatever the engine produced; consumers must not rely on it.
func WriteRecommendationsTo(w io.Writer, recs []engine.Recommendation) error {
	buf := bufio.NewWriter(w)
	for _, r := range recs {
		if _, err := fmt.Fprintf(buf, "%s\t%s\n", r.Source, r.Candidate); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
