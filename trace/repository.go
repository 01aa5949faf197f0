package trace

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
)

// Repository is the interface for persisting trace data.
type Repository interface {
	Save(ctx context.Context, trace *Trace) error
}

// FileRepository writes each trace as an indented JSON file named after the
// trace ID.
type FileRepository struct {
	dir string
}

// NewFileRepository creates a FileRepository that writes to dir. The
// directory is created on the first Save.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Path returns the file path of the trace with traceID.
func (r *FileRepository) Path(traceID string) string {
	return filepath.Join(r.dir, traceID+".json")
}

// Save writes the trace to {dir}/{trace_id}.json.
func (r *FileRepository) Save(_ context.Context, trace *Trace) error {
	if err := os.MkdirAll(r.dir, 0750); err != nil {
		return goerr.Wrap(err, "failed to create trace directory", goerr.V("dir", r.dir))
	}

	data, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal trace", goerr.V("trace_id", trace.TraceID))
	}

	path := r.Path(trace.TraceID)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write trace file", goerr.V("path", path))
	}

	return nil
}
