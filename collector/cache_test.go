package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCacheTTL(t *testing.T) {
	t.Parallel()

	clock := now
	c := NewMemoryCache()
	c.now = func() time.Time { return clock }
	ctx := context.Background()

	_, ok := c.Get(ctx, "005930")
	assert.False(t, ok)

	c.Set(ctx, price("005930", 70000), DefaultPriceTTL)
	p, ok := c.Get(ctx, "005930")
	assert.True(t, ok)
	assert.Equal(t, 70000.0, p.Price)

	clock = clock.Add(DefaultPriceTTL)
	_, ok = c.Get(ctx, "005930")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	c.Set(ctx, price("000660", 1), 0)
	assert.Equal(t, 0, c.Len())
}
