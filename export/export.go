// Package export writes dataset snapshots, with the selection status of every
// row, to a blob store and reads them back.
//
// A snapshot with id "q3" is stored as
//
//	q3/fields.json[.zst|.lz4]
//	q3/rows.json[.zst|.lz4]
//	q3/manifest.json
//
// The manifest is written last and only if absent, so a snapshot is visible
// once all of its payloads are in place and is never overwritten.
package export

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/crossfilter/blobstore"
	"github.com/hupe1980/crossfilter/codec"
)

// FormatVersion is the manifest format version written by this package.
const FormatVersion = 1

const manifestName = "manifest.json"

var (
	// ErrSnapshotExists is returned when a snapshot id is already taken.
	ErrSnapshotExists = errors.New("export: snapshot already exists")
	// ErrUnsupportedVersion is returned for manifests of an unknown format.
	ErrUnsupportedVersion = errors.New("export: unsupported manifest version")
)

// Manifest describes a stored snapshot.
type Manifest struct {
	Version     int              `json:"version"`
	ID          string           `json:"id"`
	Generation  uint64           `json:"generation"`
	CreatedAt   time.Time        `json:"createdAt"`
	Codec       string           `json:"codec"`
	Compression Compression      `json:"compression"`
	Rows        int              `json:"rows"`
	Blobs       map[string]int64 `json:"blobs"`
}

type options struct {
	codec       codec.Codec
	compression Compression
	now         func() time.Time
}

// Option configures a Writer.
type Option func(*options)

// WithCodec sets the payload codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithCompression sets the payload compression. Defaults to zstd.
func WithCompression(c Compression) Option {
	return func(o *options) { o.compression = c }
}

// WithClock overrides the manifest timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Writer stores snapshots in a blob store.
type Writer struct {
	store blobstore.BlobStore
	opts  options
}

// NewWriter creates a writer for store.
func NewWriter(store blobstore.BlobStore, optFns ...Option) *Writer {
	o := options{codec: codec.Default, compression: CompressionZSTD, now: time.Now}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.compression == "" {
		o.compression = CompressionZSTD
	}
	return &Writer{store: store, opts: o}
}

// Write stores snap under id. An empty id generates a random one.
func (w *Writer) Write(ctx context.Context, id string, snap *Snapshot) (*Manifest, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if strings.Contains(id, "/") {
		return nil, fmt.Errorf("export: invalid snapshot id %q", id)
	}
	if b, err := w.store.Open(ctx, path.Join(id, manifestName)); err == nil {
		_ = b.Close()
		return nil, fmt.Errorf("%w: %s", ErrSnapshotExists, id)
	}

	fields, err := w.opts.codec.Marshal(snap.Fields)
	if err != nil {
		return nil, fmt.Errorf("export: encode fields: %w", err)
	}
	rows, err := w.opts.codec.Marshal(snapshotRows{Generation: snap.Generation, Interactivity: snap.Interactivity, Rows: snap.Rows})
	if err != nil {
		return nil, fmt.Errorf("export: encode rows: %w", err)
	}

	payloads := map[string][]byte{
		"fields.json" + w.opts.compression.Ext(): fields,
		"rows.json" + w.opts.compression.Ext():   rows,
	}

	m := &Manifest{
		Version:     FormatVersion,
		ID:          id,
		Generation:  snap.Generation,
		CreatedAt:   w.opts.now().UTC(),
		Codec:       w.opts.codec.Name(),
		Compression: w.opts.compression,
		Rows:        len(snap.Rows),
		Blobs:       make(map[string]int64, len(payloads)),
	}

	packed := make(map[string][]byte, len(payloads))
	for name, data := range payloads {
		out, err := compress(data, w.opts.compression)
		if err != nil {
			return nil, fmt.Errorf("export: compress %s: %w", name, err)
		}
		packed[name] = out
		m.Blobs[name] = int64(len(out))
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, data := range packed {
		g.Go(func() error {
			if err := w.store.Put(gctx, path.Join(id, name), data); err != nil {
				return fmt.Errorf("export: put %s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mb, err := codec.Indent(w.opts.codec, m)
	if err != nil {
		return nil, fmt.Errorf("export: encode manifest: %w", err)
	}
	if err := blobstore.PutIfNotExists(ctx, w.store, path.Join(id, manifestName), mb); err != nil {
		if errors.Is(err, blobstore.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotExists, id)
		}
		return nil, fmt.Errorf("export: put manifest: %w", err)
	}
	return m, nil
}

// snapshotRows is the rows payload. Fields are stored separately.
type snapshotRows struct {
	Generation    uint64        `json:"generation"`
	Interactivity Interactivity `json:"interactivity"`
	Rows          []Record      `json:"rows"`
}

// ReadManifest reads the manifest of snapshot id.
func ReadManifest(ctx context.Context, store blobstore.BlobStore, id string) (*Manifest, error) {
	data, err := blobstore.ReadAll(ctx, store, path.Join(id, manifestName))
	if err != nil {
		return nil, fmt.Errorf("export: read manifest %s: %w", id, err)
	}

	// Manifests are plain JSON regardless of the payload codec.
	var m Manifest
	if err := codec.Default.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("export: decode manifest %s: %w", id, err)
	}
	if m.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, m.Version)
	}
	return &m, nil
}

// Load reads snapshot id from store.
func Load(ctx context.Context, store blobstore.BlobStore, id string) (*Snapshot, *Manifest, error) {
	m, err := ReadManifest(ctx, store, id)
	if err != nil {
		return nil, nil, err
	}
	c, ok := codec.ByName(m.Codec)
	if !ok {
		return nil, nil, fmt.Errorf("export: unknown codec %q", m.Codec)
	}

	ext := m.Compression.Ext()
	var (
		fields []FieldRecord
		rows   snapshotRows
	)
	targets := map[string]any{
		"fields.json" + ext: &fields,
		"rows.json" + ext:   &rows,
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, dst := range targets {
		g.Go(func() error {
			data, err := blobstore.ReadAll(gctx, store, path.Join(id, name))
			if err != nil {
				return fmt.Errorf("export: read %s: %w", name, err)
			}
			if want, ok := m.Blobs[name]; ok && want != int64(len(data)) {
				return fmt.Errorf("export: %s: size %d, manifest says %d", name, len(data), want)
			}
			raw, err := decompress(data, m.Compression)
			if err != nil {
				return fmt.Errorf("export: decompress %s: %w", name, err)
			}
			if err := c.Unmarshal(raw, dst); err != nil {
				return fmt.Errorf("export: decode %s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return &Snapshot{
		Generation:    rows.Generation,
		Interactivity: rows.Interactivity,
		Fields:        fields,
		Rows:          rows.Rows,
	}, m, nil
}

// List returns the ids of all complete snapshots in store, sorted.
func List(ctx context.Context, store blobstore.BlobStore) ([]string, error) {
	names, err := store.List(ctx, "")
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, name := range names {
		if dir, file := path.Split(name); file == manifestName && dir != "" {
			ids = append(ids, strings.TrimSuffix(dir, "/"))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes snapshot id. The manifest goes first so a partially deleted
// snapshot is never listed.
func Delete(ctx context.Context, store blobstore.BlobStore, id string) error {
	m, err := ReadManifest(ctx, store, id)
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, path.Join(id, manifestName)); err != nil {
		return err
	}
	for name := range m.Blobs {
		if err := store.Delete(ctx, path.Join(id, name)); err != nil {
			return err
		}
	}
	return nil
}
