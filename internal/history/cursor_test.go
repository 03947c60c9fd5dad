package history

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- BuildRequest ---

func TestBuildRequest_FirstPage(t *testing.T) {
	var c Cursor

	req := c.BuildRequest()
	assert.Nil(t, req.StartTime, "first request carries no time bound")
	assert.Zero(t, req.Offset)
}

func TestBuildRequest_Pure(t *testing.T) {
	var c Cursor
	c.ConsumePage([]Entry{
		{URL: "https://a.com", Time: 500},
		{URL: "https://b.com", Time: 500},
	})

	r1 := c.BuildRequest()
	r2 := c.BuildRequest()
	require.NotNil(t, r1.StartTime)
	require.NotNil(t, r2.StartTime)
	assert.Equal(t, *r1.StartTime, *r2.StartTime)
	assert.Equal(t, r1.Offset, r2.Offset)

	// The returned bound is a copy the caller owns.
	*r1.StartTime = 0
	r3 := c.BuildRequest()
	assert.Equal(t, int64(500), *r3.StartTime)
}

// --- ConsumePage ---

func TestConsumePage_CountsBoundaryTies(t *testing.T) {
	var c Cursor

	page := []Entry{
		{URL: "https://a.com", Time: 900},
		{URL: "https://b.com", Time: 800},
		{URL: "https://c.com", Time: 700},
		{URL: "https://d.com", Time: 500},
		{URL: "https://e.com", Time: 500},
	}

	done := c.ConsumePage(page)
	require.False(t, done)

	req := c.BuildRequest()
	require.NotNil(t, req.StartTime)
	assert.Equal(t, int64(500), *req.StartTime)
	assert.Equal(t, 2, req.Offset, "two entries share the boundary timestamp")
}

func TestConsumePage_DistinctTimestamps(t *testing.T) {
	var c Cursor

	done := c.ConsumePage([]Entry{
		{URL: "https://a.com", Time: 300},
		{URL: "https://b.com", Time: 200},
		{URL: "https://c.com", Time: 100},
	})
	require.False(t, done)

	req := c.BuildRequest()
	assert.Equal(t, int64(100), *req.StartTime)
	assert.Equal(t, 1, req.Offset, "the boundary entry itself is always counted")
}

func TestConsumePage_WholePageTied(t *testing.T) {
	var c Cursor

	done := c.ConsumePage([]Entry{
		{URL: "https://a.com", Time: 42},
		{URL: "https://b.com", Time: 42},
		{URL: "https://c.com", Time: 42},
	})
	require.False(t, done)

	req := c.BuildRequest()
	assert.Equal(t, int64(42), *req.StartTime)
	assert.Equal(t, 3, req.Offset)
}

func TestConsumePage_EmptyIsTerminal(t *testing.T) {
	var c Cursor

	require.False(t, c.ConsumePage([]Entry{{URL: "https://a.com", Time: 100}}))
	assert.False(t, c.Exhausted())

	require.True(t, c.ConsumePage(nil))
	assert.True(t, c.Exhausted())

	// Exhaustion is permanent, even if a page shows up afterwards.
	assert.True(t, c.ConsumePage([]Entry{{URL: "https://b.com", Time: 50}}))
	assert.True(t, c.Exhausted())
}

func TestConsumePage_TimeBoundNonIncreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var c Cursor

	ts := int64(1_000_000)
	var prevBound int64
	havePrev := false

	for page := 0; page < 50; page++ {
		n := rng.Intn(8) + 1
		entries := make([]Entry, n)
		for i := range entries {
			entries[i] = Entry{URL: "https://example.com", Time: ts}
			if rng.Intn(3) > 0 { // leave occasional ties
				ts -= int64(rng.Intn(5000))
			}
		}

		require.False(t, c.ConsumePage(entries))
		req := c.BuildRequest()
		require.NotNil(t, req.StartTime)

		if havePrev {
			assert.LessOrEqual(t, *req.StartTime, prevBound,
				"time bound must never move forward")
		}
		prevBound = *req.StartTime
		havePrev = true

		// Offset always matches the tie count at the page minimum.
		min := entries[len(entries)-1].Time
		ties := 0
		for _, e := range entries {
			if e.Time == min {
				ties++
			}
		}
		assert.Equal(t, ties, req.Offset)
	}
}
