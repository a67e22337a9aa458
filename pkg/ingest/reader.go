// Package ingest reads edge lists and writes recommendation records in the
// tab-separated exchange format. It is the I/O collaborator on both ends of
// the pipeline; the engine itself never touches files.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kithlabs/kith/pkg/graph"
)

// ErrMalformedRecord marks an input line that is not a valid edge record.
// A malformed line aborts the whole read; silently dropping lines would
// corrupt adjacency.
var ErrMalformedRecord = errors.New("malformed edge record")

// edgeFields is the column count of an edge line: source, target, weight.
// Only the first two are consumed; the weight is carried by the format but
// unused by the computation.
const edgeFields = 3

// ReadEdges parses a whole edge file. See ReadEdgesFrom.
func ReadEdges(path string) ([]graph.Edge[string, graph.NoValue], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open edge file: %w", err)
	}
	defer f.Close()

	edges, err := ReadEdgesFrom(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return edges, nil
}

// ReadEdgesFrom parses tab-separated edge records, one per line. Every line
// must have exactly three fields with non-empty source and target IDs;
// anything else fails with ErrMalformedRecord and no edges are returned.
func ReadEdgesFrom(r io.Reader) ([]graph.Edge[string, graph.NoValue], error) {
	var edges []graph.Edge[string, graph.NoValue]

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != edgeFields {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d: %w", line, edgeFields, len(fields), ErrMalformedRecord)
		}
		src, dst := fields[0], fields[1]
		if src == "" || dst == "" {
			return nil, fmt.Errorf("line %d: empty vertex ID: %w", line, ErrMalformedRecord)
		}
		edges = append(edges, graph.Edge[string, graph.NoValue]{Source: src, Target: dst})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}
	return edges, nil
}
