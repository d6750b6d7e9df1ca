package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Tags []string
}

func cloneItem(i *item) *item {
	c := *i
	c.Tags = append([]string(nil), i.Tags...)
	return &c
}

func TestStore_InsertReplaceDelete(t *testing.T) {
	ctx := context.Background()
	s := New(func(i *item) string { return i.ID }, cloneItem)

	require.NoError(t, s.Insert(ctx, &item{ID: "a"}))
	assert.ErrorIs(t, s.Insert(ctx, &item{ID: "a"}), ErrExists)

	assert.ErrorIs(t, s.Replace(ctx, &item{ID: "b"}), ErrNotFound)
	require.NoError(t, s.Replace(ctx, &item{ID: "a", Tags: []string{"x"}}))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Tags)

	require.NoError(t, s.Delete(ctx, "a"))
	assert.ErrorIs(t, s.Delete(ctx, "a"), ErrNotFound)
	assert.False(t, s.Has(ctx, "a"))
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New(func(i *item) string { return i.ID }, cloneItem)

	in := &item{ID: "a", Tags: []string{"x"}}
	require.NoError(t, s.Set(ctx, in))
	in.Tags[0] = "mutated"

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Tags[0])

	got.Tags[0] = "again"
	again, _ := s.Get(ctx, "a")
	assert.Equal(t, "x", again.Tags[0])
}

func TestStore_FilterOrderedByKey(t *testing.T) {
	ctx := context.Background()
	s := New(func(i *item) string { return i.ID }, nil)
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.Set(ctx, &item{ID: id}))
	}

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "c", all[2].ID)

	some, err := s.Filter(ctx, func(i *item) bool { return i.ID != "b" })
	require.NoError(t, err)
	assert.Len(t, some, 2)
}
