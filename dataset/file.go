package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/identity"
)

// fileField is the on-disk form of a Field.
type fileField struct {
	Name        string `yaml:"name"`
	Role        string `yaml:"role"`
	Type        string `yaml:"type"`
	Format      string `yaml:"format,omitempty"`
	QueryName   string `yaml:"queryName,omitempty"`
	SourceIndex int    `yaml:"sourceIndex,omitempty"`
}

type fileRow struct {
	Identity string         `yaml:"identity"`
	Values   map[string]any `yaml:"values"`
}

type fileDataset struct {
	Fields []fileField `yaml:"fields"`
	Rows   []fileRow   `yaml:"rows"`
}

// Decode reads a dataset document (YAML or JSON) from r.
//
//	fields:
//	  - {name: cat, role: column, type: text}
//	  - {name: val, role: measure, type: numeric, queryName: Sum(val)}
//	rows:
//	  - {identity: A, values: {cat: x, val: 10}}
//
// Row indices follow document order.
func Decode(r io.Reader) ([]Row, Fields, error) {
	var doc fileDataset
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, nil, fmt.Errorf("dataset: decode: %w", err)
	}

	fields := make(Fields, len(doc.Fields))
	for i, ff := range doc.Fields {
		if ff.Name == "" {
			return nil, nil, fmt.Errorf("dataset: field %d has no name", i)
		}
		role, err := ParseRole(ff.Role)
		if err != nil {
			return nil, nil, fmt.Errorf("dataset: field %q: %w", ff.Name, err)
		}
		typ, err := ParseType(ff.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("dataset: field %q: %w", ff.Name, err)
		}
		fields[ff.Name] = Field{
			Name:        ff.Name,
			Role:        role,
			Type:        typ,
			Format:      ff.Format,
			QueryName:   ff.QueryName,
			SourceIndex: ff.SourceIndex,
		}
	}

	rows := make([]Row, len(doc.Rows))
	for i, fr := range doc.Rows {
		if fr.Identity == "" {
			return nil, nil, fmt.Errorf("%w: row %d", ErrMissingIdentity, i)
		}
		values, err := datum.DocumentFromAny(fr.Values)
		if err != nil {
			return nil, nil, fmt.Errorf("dataset: row %d: %w", i, err)
		}
		rows[i] = Row{Index: i, Identity: identity.Key(fr.Identity), Values: values}
	}

	return rows, fields, nil
}

// Encode writes rows and fields as a YAML dataset document. Only identities
// whose key round-trips through identity.Key are preserved faithfully.
func Encode(w io.Writer, rows []Row, fields Fields) error {
	doc := fileDataset{
		Fields: make([]fileField, 0, len(fields)),
		Rows:   make([]fileRow, len(rows)),
	}
	for _, name := range fields.Names() {
		f := fields[name]
		doc.Fields = append(doc.Fields, fileField{
			Name:        f.Name,
			Role:        f.Role.String(),
			Type:        f.Type.String(),
			Format:      f.Format,
			QueryName:   f.QueryName,
			SourceIndex: f.SourceIndex,
		})
	}
	for i, r := range rows {
		doc.Rows[i] = fileRow{Identity: r.Identity.Key(), Values: datum.DocumentToAny(r.Values)}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("dataset: encode: %w", err)
	}
	return enc.Close()
}

// FileSource is a Source that reads a dataset document from disk. Each call
// to Rows rereads the file; Fields returns the fields of the last read.
type FileSource struct {
	Path string

	mu     sync.Mutex
	fields Fields
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) load() ([]Row, Fields, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: open %s: %w", s.Path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Rows implements Source.
func (s *FileSource) Rows(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, fields, err := s.load()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.fields = fields
	s.mu.Unlock()
	return rows, nil
}

// Fields implements Source.
func (s *FileSource) Fields(ctx context.Context) (Fields, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	fields := s.fields
	s.mu.Unlock()
	if fields != nil {
		return fields, nil
	}
	_, fields, err := s.load()
	return fields, err
}
