// Package blobs opens tensor files from local paths or Google Cloud Storage.
package blobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"k8s.io/klog/v2"
)

// ErrNotFound is returned when the blob does not exist.
var ErrNotFound = errors.New("blob not found")

// Location is a parsed blob URI.
type Location struct {
	Bucket string // GCS bucket, empty for local files
	Object string // GCS object key
	Path   string // Local path
}

// IsGCS reports whether the location refers to a GCS object.
func (l Location) IsGCS() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.IsGCS() {
		return "gs://" + l.Bucket + "/" + l.Object
	}
	return l.Path
}

// ParseURI parses "gs://bucket/object" or a local path.
func ParseURI(uri string) (Location, error) {
	if uri == "" {
		return Location{}, fmt.Errorf("empty blob uri")
	}
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		if strings.Contains(uri, "://") {
			return Location{}, fmt.Errorf("unsupported blob uri %q (want gs:// or a local path)", uri)
		}
		return Location{Path: uri}, nil
	}
	bucket, object, _ := strings.Cut(rest, "/")
	if bucket == "" || object == "" {
		return Location{}, fmt.Errorf("invalid gcs uri %q (want gs://bucket/object)", uri)
	}
	return Location{Bucket: bucket, Object: object}, nil
}

// Open returns a reader for the blob at uri.
func Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if !loc.IsGCS() {
		//nolint:gosec // G304: File path comes from user input, which is expected for operand files
		f, err := os.Open(loc.Path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	log := klog.FromContext(ctx)

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS storage client: %w", err)
	}

	log.V(2).Info("opening blob from GCS", "url", loc.String())
	r, err := client.Bucket(loc.Bucket).Object(loc.Object).NewReader(ctx)
	if err != nil {
		client.Close()
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
		}
		return nil, fmt.Errorf("opening object from GCS %q: %w", loc, err)
	}
	return &gcsReader{Reader: r, client: client}, nil
}

// Create returns a writer for the blob at uri. The blob is complete once
// Close returns nil.
func Create(ctx context.Context, uri string) (io.WriteCloser, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if !loc.IsGCS() {
		//nolint:gosec // G304: File path comes from user input, which is expected for result files
		f, err := os.Create(loc.Path)
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS storage client: %w", err)
	}

	klog.FromContext(ctx).V(2).Info("uploading blob to GCS", "url", loc.String())
	w := client.Bucket(loc.Bucket).Object(loc.Object).NewWriter(ctx)
	return &gcsWriter{Writer: w, client: client, loc: loc, ctx: ctx, startedAt: time.Now()}, nil
}

type gcsReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *gcsReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

type gcsWriter struct {
	*storage.Writer
	client    *storage.Client
	loc       Location
	ctx       context.Context
	startedAt time.Time
	written   int64
}

func (w *gcsWriter) Write(p []byte) (int, error) {
	n, err := w.Writer.Write(p)
	w.written += int64(n)
	return n, err
}

func (w *gcsWriter) Close() error {
	defer w.client.Close()
	if err := w.Writer.Close(); err != nil {
		return fmt.Errorf("closing GCS writer: %w", err)
	}
	klog.FromContext(w.ctx).Info("uploaded blob to GCS", "url", w.loc.String(), "bytes", w.written, "duration", time.Since(w.startedAt))
	return nil
}
