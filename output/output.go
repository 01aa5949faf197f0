// Package output opens the destination a handbook is written to: a local
// file or a Cloud Storage object.
package output

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

const gsScheme = "gs://"

// ErrInvalidDestination is returned for an empty destination or a malformed
// gs:// URI.
var ErrInvalidDestination = errors.New("invalid destination")

type config struct {
	contentType string
	gcpOptions  []option.ClientOption
}

// Option configures Open.
type Option func(*config)

// WithContentType sets the Content-Type of a Cloud Storage object.
// Default: application/pdf
func WithContentType(contentType string) Option {
	return func(c *config) {
		c.contentType = contentType
	}
}

// WithGoogleCloudOptions sets options for the Cloud Storage client, e.g.
// option.WithCredentialsFile.
func WithGoogleCloudOptions(opts ...option.ClientOption) Option {
	return func(c *config) {
		c.gcpOptions = append(c.gcpOptions, opts...)
	}
}

// IsGSURI reports whether dest names a Cloud Storage object.
func IsGSURI(dest string) bool {
	return strings.HasPrefix(dest, gsScheme)
}

// ParseGSURI splits gs://bucket/path/to/object into bucket and object name.
func ParseGSURI(uri string) (bucket, object string, err error) {
	if !IsGSURI(uri) {
		return "", "", goerr.Wrap(ErrInvalidDestination, "URI must start with gs://", goerr.V("uri", uri))
	}

	bucket, object, _ = strings.Cut(strings.TrimPrefix(uri, gsScheme), "/")
	if bucket == "" {
		return "", "", goerr.Wrap(ErrInvalidDestination, "bucket name is empty", goerr.V("uri", uri))
	}
	if object == "" || strings.HasSuffix(object, "/") {
		return "", "", goerr.Wrap(ErrInvalidDestination, "object name is empty", goerr.V("uri", uri))
	}

	return bucket, object, nil
}

// Writer is an open destination. Close commits the written data; Abort
// discards it and leaves any existing destination untouched.
type Writer interface {
	io.WriteCloser
	Abort() error
}

// Open returns a writer for dest. Nothing is visible at dest until Close
// succeeds; for Cloud Storage a failed upload surfaces from Close.
func Open(ctx context.Context, dest string, options ...Option) (Writer, error) {
	cfg := &config{contentType: "application/pdf"}
	for _, opt := range options {
		opt(cfg)
	}

	if dest == "" {
		return nil, goerr.Wrap(ErrInvalidDestination, "destination is empty")
	}

	if IsGSURI(dest) {
		return openGCS(ctx, dest, cfg)
	}
	return openLocal(dest)
}

// localWriter writes to a temporary file next to path and renames it over
// path on Close.
type localWriter struct {
	f    *os.File
	path string
}

func openLocal(path string) (Writer, error) {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create output directory", goerr.V("dir", dir))
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temporary output file", goerr.V("path", path))
	}
	return &localWriter{f: f, path: path}, nil
}

func (x *localWriter) Write(p []byte) (int, error) {
	return x.f.Write(p)
}

func (x *localWriter) Close() error {
	tmp := x.f.Name()
	if err := x.f.Close(); err != nil {
		_ = os.Remove(tmp)
		return goerr.Wrap(err, "failed to close output file", goerr.V("path", x.path))
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		_ = os.Remove(tmp)
		return goerr.Wrap(err, "failed to set output file mode", goerr.V("path", x.path))
	}
	if err := os.Rename(tmp, x.path); err != nil {
		_ = os.Remove(tmp)
		return goerr.Wrap(err, "failed to move output file", goerr.V("path", x.path))
	}
	return nil
}

func (x *localWriter) Abort() error {
	_ = x.f.Close()
	if err := os.Remove(x.f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return goerr.Wrap(err, "failed to remove temporary output file", goerr.V("path", x.path))
	}
	return nil
}

type gcsWriter struct {
	w      *storage.Writer
	cancel context.CancelFunc
	client *storage.Client
	uri    string
}

func openGCS(ctx context.Context, uri string, cfg *config) (Writer, error) {
	bucket, object, err := ParseGSURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, cfg.gcpOptions...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}

	// Canceling the writer context abandons the upload without creating
	// the object.
	wctx, cancel := context.WithCancel(ctx)
	w := client.Bucket(bucket).Object(object).NewWriter(wctx)
	w.ContentType = cfg.contentType

	return &gcsWriter{w: w, cancel: cancel, client: client, uri: uri}, nil
}

func (x *gcsWriter) Write(p []byte) (int, error) {
	return x.w.Write(p)
}

func (x *gcsWriter) Close() error {
	defer func() { _ = x.client.Close() }()
	defer x.cancel()

	if err := x.w.Close(); err != nil {
		return goerr.Wrap(err, "failed to upload object", goerr.V("uri", x.uri))
	}
	return nil
}

func (x *gcsWriter) Abort() error {
	x.cancel()
	_ = x.w.Close()
	return x.client.Close()
}
