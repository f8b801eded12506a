package di

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-storefront/internal/api"
	"github.com/goliatone/go-storefront/internal/domain"
	"github.com/rs/zerolog"
)

func seedItems(tb testing.TB, c *Container, n int) []*domain.Item {
	tb.Helper()
	items := make([]*domain.Item, 0, n)
	for i := 0; i < n; i++ {
		item, err := c.API().CreateItem(adminContext(), domain.ItemInput{
			Title: fmt.Sprintf("Item %d", i),
			Price: ptr(float64(100 + i)),
		})
		if err != nil {
			tb.Fatalf("failed to seed item %d: %v", i, err)
		}
		items = append(items, item)
	}
	return items
}

// TestConcurrentAccess interleaves cached reads with invalidating writes and
// checks every read observes a consistent result.
func TestConcurrentAccess(t *testing.T) {
	c := newTestContainer(t, testConfig())
	items := seedItems(t, c, 20)
	a := c.API()

	const workers = 16
	const rounds = 25

	var wg sync.WaitGroup
	errs := make(chan error, workers*rounds)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			ctx := context.Background()
			for r := 0; r < rounds; r++ {
				item := items[(worker+r)%len(items)]
				switch r % 4 {
				case 0:
					got, err := a.GetItem(ctx, api.ByID{ID: item.ID.String()})
					if err != nil {
						errs <- fmt.Errorf("worker %d get: %w", worker, err)
					} else if got.ID != item.ID {
						errs <- fmt.Errorf("worker %d got item %s, want %s", worker, got.ID, item.ID)
					}
				case 1:
					list, err := a.ListItems(ctx, domain.ItemQuery{Limit: 50})
					if err != nil {
						errs <- fmt.Errorf("worker %d list: %w", worker, err)
					} else if len(list) != len(items) {
						errs <- fmt.Errorf("worker %d listed %d items, want %d", worker, len(list), len(items))
					}
				case 2:
					if _, err := a.UpdateItem(adminContext(), api.ItemUpdate{
						ID:    item.ID.String(),
						Patch: domain.ItemPatch{Quantity: ptr(worker*rounds + r)},
					}); err != nil {
						errs <- fmt.Errorf("worker %d update: %w", worker, err)
					}
				case 3:
					if _, err := a.ListItems(ctx, domain.ItemQuery{Limit: 5, Offset: worker % 4}); err != nil {
						errs <- fmt.Errorf("worker %d page: %w", worker, err)
					}
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func newBenchContainer(b *testing.B) *Container {
	b.Helper()
	c, err := NewContainer(context.Background(), testConfig(), WithLogger(zerolog.Nop()))
	if err != nil {
		b.Fatalf("NewContainer() failed: %v", err)
	}
	b.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func BenchmarkListItems_Cached(b *testing.B) {
	c := newBenchContainer(b)
	seedItems(b, c, 50)
	ctx := context.Background()
	q := domain.ItemQuery{Limit: 20}

	if _, err := c.API().ListItems(ctx, q); err != nil {
		b.Fatalf("warm up failed: %v", err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := c.API().ListItems(ctx, q); err != nil {
				b.Error(err)
			}
		}
	})
}

func BenchmarkListItems_Uncached(b *testing.B) {
	c := newBenchContainer(b)
	seedItems(b, c, 50)
	ctx := context.Background()
	svc := c.Services().Items

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.List(ctx, domain.ItemQuery{Limit: 20, Sort: domain.SortDesc}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetItem_Cached(b *testing.B) {
	c := newBenchContainer(b)
	items := seedItems(b, c, 10)
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			id := items[i%len(items)].ID.String()
			if _, err := c.API().GetItem(ctx, api.ByID{ID: id}); err != nil {
				b.Error(err)
			}
			i++
		}
	})
}

func BenchmarkCreateAndList(b *testing.B) {
	c := newBenchContainer(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.API().CreateItem(adminContext(), domain.ItemInput{
			Title: fmt.Sprintf("Bench %d", i),
			Price: ptr(1.0),
		}); err != nil {
			b.Fatal(err)
		}
		if _, err := c.API().ListItems(ctx, domain.ItemQuery{}); err != nil {
			b.Fatal(err)
		}
	}
}
