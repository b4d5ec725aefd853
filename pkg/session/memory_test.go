package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenDeleteIsConditional(t *testing.T) {
	tokens := NewMemoryStore().Tokens()
	ctx := context.Background()

	require.NoError(t, tokens.Create(ctx, TokenRecord{ID: "rec-1", UserID: "u1", HashedSecret: "h"}))

	deleted, err := tokens.DeleteByID(ctx, "rec-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = tokens.DeleteByID(ctx, "rec-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemoryTokenDeleteRace(t *testing.T) {
	tokens := NewMemoryStore().Tokens()
	ctx := context.Background()
	require.NoError(t, tokens.Create(ctx, TokenRecord{ID: "rec-1", UserID: "u1"}))

	const racers = 8
	results := make([]bool, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := tokens.DeleteByID(ctx, "rec-1")
			assert.NoError(t, err)
			results[i] = ok
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestMemoryDeleteAllByUser(t *testing.T) {
	tokens := NewMemoryStore().Tokens()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, tokens.Create(ctx, TokenRecord{ID: id, UserID: "u1"}))
	}
	require.NoError(t, tokens.Create(ctx, TokenRecord{ID: "d", UserID: "u2"}))

	n, err := tokens.DeleteAllByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	rec, err := tokens.FindByID(ctx, "d")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}
