package export

import (
	"fmt"
	"sort"

	"github.com/hupe1980/crossfilter/codec"
	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/identity"
	"github.com/hupe1980/crossfilter/selection"
)

// Interactivity records the interactivity settings active when a snapshot was
// taken.
type Interactivity struct {
	Tooltip        bool `json:"tooltip"`
	ContextMenu    bool `json:"contextMenu"`
	Selection      bool `json:"selection"`
	Highlight      bool `json:"highlight"`
	DataPointLimit int  `json:"dataPointLimit"`
}

// FieldRecord is the exported form of a dataset field.
type FieldRecord struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Type        string `json:"type"`
	Format      string `json:"format,omitempty"`
	QueryName   string `json:"queryName,omitempty"`
	SourceIndex int    `json:"sourceIndex,omitempty"`
}

// Record is one exported row.
type Record struct {
	Index    int            `json:"index"`
	Identity string         `json:"identity"`
	Selected string         `json:"selected"`
	Values   map[string]any `json:"values"`
}

// Snapshot is a dataset generation together with per-row selection status.
type Snapshot struct {
	Generation    uint64        `json:"generation"`
	Interactivity Interactivity `json:"interactivity"`
	Fields        []FieldRecord `json:"fields"`
	Rows          []Record      `json:"rows"`
}

// FromDataset snapshots ds. statuses is indexed by row; missing entries are
// exported as neutral.
func FromDataset(ds *dataset.Dataset, statuses []selection.Status) *Snapshot {
	snap := &Snapshot{Generation: ds.Generation()}

	fields := ds.Fields()
	for _, name := range fields.Names() {
		f := fields[name]
		snap.Fields = append(snap.Fields, FieldRecord{
			Name:        f.Name,
			Role:        f.Role.String(),
			Type:        f.Type.String(),
			Format:      f.Format,
			QueryName:   f.QueryName,
			SourceIndex: f.SourceIndex,
		})
	}

	rows := ds.Rows()
	snap.Rows = make([]Record, len(rows))
	for i, r := range rows {
		status := selection.StatusNeutral
		if i < len(statuses) {
			status = statuses[i]
		}
		id := ""
		if r.Identity != nil {
			id = r.Identity.Key()
		}
		snap.Rows[i] = Record{
			Index:    r.Index,
			Identity: id,
			Selected: status.String(),
			Values:   codec.PlainDocument(r.Values),
		}
	}
	return snap
}

// Dataset rebuilds a dataset from the snapshot. Identities become
// identity.Key values.
func (s *Snapshot) Dataset() (*dataset.Dataset, error) {
	fields := make(dataset.Fields, len(s.Fields))
	for _, fr := range s.Fields {
		role, err := dataset.ParseRole(fr.Role)
		if err != nil {
			return nil, fmt.Errorf("export: field %q: %w", fr.Name, err)
		}
		typ, err := dataset.ParseType(fr.Type)
		if err != nil {
			return nil, fmt.Errorf("export: field %q: %w", fr.Name, err)
		}
		fields[fr.Name] = dataset.Field{
			Name:        fr.Name,
			Role:        role,
			Type:        typ,
			Format:      fr.Format,
			QueryName:   fr.QueryName,
			SourceIndex: fr.SourceIndex,
		}
	}

	records := append([]Record(nil), s.Rows...)
	sort.SliceStable(records, func(i, j int) bool { return records[i].Index < records[j].Index })

	rows := make([]dataset.Row, len(records))
	for i, rec := range records {
		values, err := datum.DocumentFromAny(rec.Values)
		if err != nil {
			return nil, fmt.Errorf("export: row %d: %w", rec.Index, err)
		}
		rows[i] = dataset.Row{Index: rec.Index, Identity: identity.Key(rec.Identity), Values: values}
	}
	return dataset.New(rows, fields)
}

// Selected returns the identities of the rows exported with status on.
func (s *Snapshot) Selected() *identity.Set {
	out := identity.NewSet()
	for _, r := range s.Rows {
		if r.Selected == selection.StatusOn.String() {
			out.Add(identity.Key(r.Identity))
		}
	}
	return out
}
