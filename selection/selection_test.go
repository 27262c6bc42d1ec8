package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crossfilter/dataset"
	"github.com/hupe1980/crossfilter/identity"
)

func keys(ks ...string) *identity.Set {
	s := identity.NewSet()
	for _, k := range ks {
		s.Add(identity.Key(k))
	}
	return s
}

type memHost struct {
	mu      sync.Mutex
	current *identity.Set
	err     error
	selects int
	clears  int
	multi   bool
}

func (h *memHost) Current() *identity.Set {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.Clone()
}

func (h *memHost) Select(_ context.Context, ids *identity.Set, multi bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selects++
	h.multi = multi
	if h.err != nil {
		return h.err
	}
	h.current = ids.Clone()
	return nil
}

func (h *memHost) Clear(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clears++
	if h.err != nil {
		return h.err
	}
	h.current = identity.NewSet()
	return nil
}

func (h *memHost) ShowContextMenu(context.Context, identity.Identity, Point) error { return nil }

func newDataset(t *testing.T, n int) *dataset.Dataset {
	t.Helper()
	rows := make([]dataset.Row, n)
	for i := range rows {
		rows[i] = dataset.Row{Index: i, Identity: identity.Key(fmt.Sprintf("%c", 'A'+i))}
	}
	ds, err := dataset.New(rows, nil)
	require.NoError(t, err)
	return ds
}

func TestStatusOf(t *testing.T) {
	a := identity.Key("A")

	assert.Equal(t, StatusNeutral, StatusOf(a, nil))
	assert.Equal(t, StatusNeutral, StatusOf(a, keys()))
	assert.Equal(t, StatusOn, StatusOf(a, keys("A", "B")))
	assert.Equal(t, StatusOff, StatusOf(a, keys("B")))
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusNeutral, StatusOn, StatusOff} {
		got, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStatus("dimmed")
	assert.Error(t, err)
}

func TestToggle(t *testing.T) {
	current := keys("A")
	incoming := keys("A", "B")

	next := Toggle(incoming, current)
	assert.Equal(t, []string{"B"}, next.Keys())

	back := Toggle(incoming, next)
	assert.True(t, back.Equal(current), "toggle must be self-inverse")
}

func TestToggle_SelfInverse(t *testing.T) {
	tests := []struct {
		current, incoming []string
	}{
		{nil, []string{"A"}},
		{[]string{"A", "B"}, []string{"B", "C"}},
		{[]string{"A"}, []string{"A"}},
		{[]string{"A", "B", "C"}, nil},
	}

	for _, tt := range tests {
		current, incoming := keys(tt.current...), keys(tt.incoming...)
		twice := Toggle(incoming, Toggle(incoming, current))
		assert.True(t, twice.Equal(current), "%v / %v", tt.current, tt.incoming)
	}
}

func TestReplace(t *testing.T) {
	assert.True(t, Replace(keys("B", "A"), keys("A", "B")).IsEmpty(), "set-equal incoming deselects")
	assert.Equal(t, []string{"C"}, Replace(keys("C"), keys("A")).Keys())
	assert.Equal(t, []string{"A"}, Merge(keys("A"), keys("B"), false).Keys())
	assert.Equal(t, []string{"A", "B"}, Merge(keys("A"), keys("B"), true).Keys())
}

func TestMachine_MultiSelectToggle(t *testing.T) {
	ds := newDataset(t, 3)
	host := &memHost{current: keys("A")}
	m := NewMachine(host)

	out, err := m.Handle(context.Background(), Gesture{
		Dataset: ds,
		Multi:   true,
		Resolve: func(context.Context) (*identity.Set, error) { return keys("A", "B"), nil },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, out.Next.Keys())

	require.NoError(t, <-out.Ack)
	assert.Equal(t, []string{"B"}, host.Current().Keys())
	assert.False(t, host.multi, "the merged set replaces the host selection")
	assert.Equal(t, []string{"B"}, m.Snapshot().Keys())
	assert.Equal(t, []Status{StatusOff, StatusOn, StatusOff}, m.Statuses(ds))
	assert.Equal(t, StateIdle, m.State())
}

func TestMachine_NilCandidatesClear(t *testing.T) {
	ds := newDataset(t, 3)
	host := &memHost{current: keys("A", "C")}
	m := NewMachine(host)

	out, err := m.Handle(context.Background(), Gesture{
		Dataset: ds,
		Resolve: func(context.Context) (*identity.Set, error) { return nil, nil },
	})
	require.NoError(t, err)
	require.NoError(t, <-out.Ack)

	assert.Equal(t, 1, host.clears)
	assert.Equal(t, 0, host.selects)
	assert.True(t, m.Snapshot().IsEmpty())
	assert.Equal(t, StatusNeutral, m.Status(identity.Key("A")))
}

func TestMachine_RejectedLeavesSelection(t *testing.T) {
	ds := newDataset(t, 3)
	host := &memHost{current: keys("A")}
	m := NewMachine(host)
	m.Sync(ds)

	out, err := m.Handle(context.Background(), Gesture{
		Dataset: ds,
		Multi:   true,
		Resolve: func(context.Context) (*identity.Set, error) { return keys("B", "C"), nil },
		Admit:   func(candidates, existing int, multi bool) bool { return candidates+existing <= 2 },
	})
	require.NoError(t, err)
	assert.True(t, out.Rejected)
	assert.Nil(t, out.Ack)
	assert.Equal(t, 0, host.selects)
	assert.Equal(t, []string{"A"}, m.Snapshot().Keys())
}

func TestMachine_CommitFailureKeepsSnapshot(t *testing.T) {
	ds := newDataset(t, 3)
	host := &memHost{current: keys("A")}

	var commits []Commit
	m := NewMachine(host, WithCommitHook(func(c Commit) { commits = append(commits, c) }))
	m.Sync(ds)

	boom := errors.New("boom")
	host.err = boom

	out, err := m.Handle(context.Background(), Gesture{
		Dataset: ds,
		Resolve: func(context.Context) (*identity.Set, error) { return keys("C"), nil },
	})
	require.NoError(t, err)
	assert.ErrorIs(t, <-out.Ack, boom)
	m.Wait()

	assert.Equal(t, []string{"A"}, m.Snapshot().Keys())
	require.Len(t, commits, 1)
	assert.ErrorIs(t, commits[0].Err, boom)
}

func TestMachine_PrunesStaleHostSelection(t *testing.T) {
	ds := newDataset(t, 2)
	host := &memHost{current: keys("stale", "A")}
	m := NewMachine(host)

	out, err := m.Handle(context.Background(), Gesture{
		Dataset: ds,
		Multi:   true,
		Resolve: func(context.Context) (*identity.Set, error) { return keys("B"), nil },
	})
	require.NoError(t, err)
	require.NoError(t, <-out.Ack)
	assert.Equal(t, []string{"B", "A"}, out.Next.Keys())
}

func TestMachine_ResolveError(t *testing.T) {
	m := NewMachine(&memHost{})
	_, err := m.Handle(context.Background(), Gesture{
		Resolve: func(context.Context) (*identity.Set, error) { return nil, errors.New("bad") },
	})
	require.Error(t, err)
	assert.Equal(t, StateIdle, m.State())

	_, err = NewMachine(nil).Handle(context.Background(), Gesture{})
	assert.ErrorIs(t, err, ErrNoHost)
}
