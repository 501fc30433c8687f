// Package storetest holds the behaviour every store.InstructionStore
// backend has to satisfy.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loog-project/instrux/internal/store"
)

// Factory opens an empty store. The store is closed by the suite.
type Factory func(t *testing.T) store.InstructionStore

// Run executes the suite against the stores returned by open.
func Run(t *testing.T, open Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.InstructionStore)
	}{
		{"InstructionRoundTrip", testInstructionRoundTrip},
		{"MissingRecords", testMissingRecords},
		{"AddRevisionAssignsIDs", testAddRevisionAssignsIDs},
		{"ListRevisionsNewestFirst", testListRevisionsNewestFirst},
		{"ListInstructionsByUpdate", testListInstructionsByUpdate},
		{"DeleteCascades", testDeleteCascades},
		{"ConcurrentClaims", testConcurrentClaims},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(func() { _ = s.Close() })
			tc.fn(t, s)
		})
	}
}

var ctx = context.Background()

func newInstruction(id string) *store.Instruction {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &store.Instruction{
		ID:        id,
		Title:     "Title " + id,
		Tags:      []string{"a", "b"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newRevision(label string) *store.Revision {
	return &store.Revision{
		Revision:  label,
		Author:    "John Doe",
		Sections:  []string{"All"},
		CreatedAt: time.Now().UTC(),
		Content:   fmt.Sprintf(`{"header":{"revision":%q}}`, label),
	}
}

func testInstructionRoundTrip(t *testing.T, s store.InstructionStore) {
	in := newInstruction("one")
	require.NoError(t, s.PutInstruction(ctx, in))

	out, err := s.GetInstruction(ctx, "one")
	require.NoError(t, err)
	assert.Equal(t, in.Title, out.Title)
	assert.Equal(t, in.Tags, out.Tags)
	assert.True(t, in.UpdatedAt.Equal(out.UpdatedAt))

	in.Title = "changed"
	require.NoError(t, s.PutInstruction(ctx, in))
	out, err = s.GetInstruction(ctx, "one")
	require.NoError(t, err)
	assert.Equal(t, "changed", out.Title)
}

func testMissingRecords(t *testing.T, s store.InstructionStore) {
	_, err := s.GetInstruction(ctx, "nope")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = s.GetRevision(ctx, 12345)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = s.ListRevisions(ctx, "nope")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	assert.True(t, errors.Is(s.DeleteInstruction(ctx, "nope"), store.ErrNotFound))
}

func testAddRevisionAssignsIDs(t *testing.T, s store.InstructionStore) {
	inst := newInstruction("doc")
	first := newRevision("A")
	require.NoError(t, s.AddRevision(ctx, inst, first))
	second := newRevision("B")
	require.NoError(t, s.AddRevision(ctx, inst, second))

	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)
	assert.Equal(t, "doc", first.InstructionID)
	assert.Equal(t, second.ID, inst.LatestRevision)
	assert.Equal(t, 2, inst.RevisionCount)

	stored, err := s.GetInstruction(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, second.ID, stored.LatestRevision)
	assert.Equal(t, 2, stored.RevisionCount)

	rev, err := s.GetRevision(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Content, rev.Content)
	assert.Equal(t, "A", rev.Revision)
	assert.Equal(t, []string{"All"}, rev.Sections)
}

func testListRevisionsNewestFirst(t *testing.T, s store.InstructionStore) {
	a, b := newInstruction("a"), newInstruction("b")
	var want []store.RevisionID
	for i, label := range []string{"A", "B", "C"} {
		rev := newRevision(label)
		require.NoError(t, s.AddRevision(ctx, a, rev))
		want = append([]store.RevisionID{rev.ID}, want...)
		// interleave another instruction so IDs are not contiguous
		require.NoError(t, s.AddRevision(ctx, b, newRevision(fmt.Sprint(i))))
	}

	list, err := s.ListRevisions(ctx, "a")
	require.NoError(t, err)
	got := make([]store.RevisionID, 0, len(list))
	for _, r := range list {
		got = append(got, r.ID)
		assert.Equal(t, "a", r.InstructionID)
	}
	assert.Equal(t, want, got)
}

func testListInstructionsByUpdate(t *testing.T, s store.InstructionStore) {
	base := time.Now().UTC()
	for i, id := range []string{"first", "third", "second"} {
		inst := newInstruction(id)
		inst.UpdatedAt = base.Add(time.Duration([]int{0, 2, 1}[i]) * time.Minute)
		require.NoError(t, s.PutInstruction(ctx, inst))
	}
	list, err := s.ListInstructions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].ID)
	assert.Equal(t, "second", list[1].ID)
	assert.Equal(t, "first", list[2].ID)
}

func testDeleteCascades(t *testing.T, s store.InstructionStore) {
	keep, drop := newInstruction("keep"), newInstruction("drop")
	kept := newRevision("A")
	require.NoError(t, s.AddRevision(ctx, keep, kept))
	dropped := newRevision("A")
	require.NoError(t, s.AddRevision(ctx, drop, dropped))

	require.NoError(t, s.DeleteInstruction(ctx, "drop"))

	_, err := s.GetInstruction(ctx, "drop")
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = s.GetRevision(ctx, dropped.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = s.GetRevision(ctx, kept.ID)
	assert.NoError(t, err)
	list, err := s.ListRevisions(ctx, "keep")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testConcurrentClaims(t *testing.T, s store.InstructionStore) {
	const workers = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[store.RevisionID]bool)
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inst := newInstruction(fmt.Sprintf("obj-%d", i))
			rev := newRevision("A")
			if !assert.NoError(t, s.AddRevision(ctx, inst, rev)) {
				return
			}
			mu.Lock()
			ids[rev.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, ids, workers, "every revision must receive a distinct ID")
}

// ErrCodec is returned by [FailingCodec].
var ErrCodec = errors.New("codec failure")

// FailingCodec wraps [store.DefaultCodec] but refuses to encode instruction
// summaries, so a write fails after its revision has been encoded.
type FailingCodec struct{}

func (FailingCodec) Marshal(v any) ([]byte, error) {
	if _, ok := v.(*store.Instruction); ok {
		return nil, ErrCodec
	}
	return store.DefaultCodec.Marshal(v)
}

func (FailingCodec) Unmarshal(data []byte, v any) error {
	return store.DefaultCodec.Unmarshal(data, v)
}

// RunFailedAddRevision checks that an AddRevision rejected by s leaves its
// arguments untouched and stores nothing. s must use a [FailingCodec].
func RunFailedAddRevision(t *testing.T, s store.InstructionStore) {
	t.Cleanup(func() { _ = s.Close() })

	inst := newInstruction("doc")
	inst.RevisionCount = 3
	inst.LatestRevision = 7
	rev := newRevision("A")
	wantInst, wantRev := *inst, *rev

	err := s.AddRevision(ctx, inst, rev)
	require.ErrorIs(t, err, ErrCodec)
	assert.Equal(t, wantInst, *inst)
	assert.Equal(t, wantRev, *rev)

	_, err = s.GetInstruction(ctx, "doc")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
