package catalog

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/choirbook/internal/models"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCacheResult(t *testing.T) {
	key := Key{Search: "grace", Selector: "all", Role: models.RoleGuest}

	t.Run("memoizes until invalidated", func(t *testing.T) {
		cache := NewCache(nil)
		var calls int

		compute := func() (Result, error) {
			calls++
			return Result{Entries: []models.Entry{{ID: "h1"}}}, nil
		}

		for range 3 {
			if _, err := cache.Result(key, compute); err != nil {
				t.Fatalf("Result failed: %v", err)
			}
		}
		if calls != 1 {
			t.Errorf("expected 1 computation, got %d", calls)
		}
		if cache.Len() != 1 {
			t.Errorf("expected 1 memoized result, got %d", cache.Len())
		}

		cache.Invalidate()
		if cache.Len() != 0 {
			t.Errorf("expected cache to be empty after invalidation, got %d", cache.Len())
		}

		if _, err := cache.Result(key, compute); err != nil {
			t.Fatalf("Result failed: %v", err)
		}
		if calls != 2 {
			t.Errorf("expected recomputation after invalidation, got %d calls", calls)
		}
	})

	t.Run("keys are distinct per role", func(t *testing.T) {
		cache := NewCache(nil)
		var calls int
		compute := func() (Result, error) {
			calls++
			return Result{}, nil
		}

		cache.Result(key, compute)
		cache.Result(Key{Search: key.Search, Selector: key.Selector, Role: models.RoleAdmin}, compute)

		if calls != 2 {
			t.Errorf("expected 2 computations, got %d", calls)
		}
	})

	t.Run("failures are not memoized", func(t *testing.T) {
		cache := NewCache(nil)
		boom := errors.New("boom")

		if _, err := cache.Result(key, func() (Result, error) { return Result{}, boom }); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if cache.Len() != 0 {
			t.Errorf("expected failure not to be stored")
		}

		got, err := cache.Result(key, func() (Result, error) {
			return Result{Entries: []models.Entry{{ID: "ok"}}}, nil
		})
		if err != nil || len(got.Entries) != 1 {
			t.Errorf("expected retry to succeed, got %+v, %v", got, err)
		}
	})

	t.Run("concurrent misses coalesce", func(t *testing.T) {
		cache := NewCache(nil)
		var calls atomic.Int32
		release := make(chan struct{})
		started := make(chan struct{})

		compute := func() (Result, error) {
			if calls.Add(1) == 1 {
				close(started)
			}
			<-release
			return Result{Entries: []models.Entry{{ID: "h1"}}}, nil
		}

		const callers = 8
		var wg sync.WaitGroup
		results := make([]Result, callers)

		wg.Add(1)
		go func() {
			defer wg.Done()
			results[0], _ = cache.Result(key, compute)
		}()
		<-started

		for i := 1; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = cache.Result(key, compute)
			}(i)
		}

		close(release)
		wg.Wait()

		if n := calls.Load(); n < 1 || n > callers {
			t.Fatalf("unexpected computation count %d", n)
		}
		for i, r := range results {
			if len(r.Entries) != 1 || r.Entries[0].ID != "h1" {
				t.Errorf("caller %d got %+v", i, r)
			}
		}

		// everything is memoized now
		before := calls.Load()
		cache.Result(key, compute)
		if calls.Load() != before {
			t.Error("expected a memoized hit after the flight completed")
		}
	})

	t.Run("results computed before an invalidation are not stored", func(t *testing.T) {
		cache := NewCache(nil)

		_, err := cache.Result(key, func() (Result, error) {
			cache.Invalidate()
			return Result{Entries: []models.Entry{{ID: "stale"}}}, nil
		})
		if err != nil {
			t.Fatalf("Result failed: %v", err)
		}
		if cache.Len() != 0 {
			t.Error("expected stale result to be discarded")
		}
	})
}

func TestCacheEntriesAndCategories(t *testing.T) {
	t.Run("entries snapshot", func(t *testing.T) {
		cache := NewCache(nil)
		var calls int
		fetch := func() ([]models.Entry, error) {
			calls++
			return []models.Entry{{ID: "a"}}, nil
		}

		cache.Entries(fetch)
		cache.Entries(fetch)
		if calls != 1 {
			t.Errorf("expected 1 fetch, got %d", calls)
		}

		cache.Invalidate()
		cache.Entries(fetch)
		if calls != 2 {
			t.Errorf("expected refetch after invalidation, got %d", calls)
		}
	})

	t.Run("empty category list is memoized", func(t *testing.T) {
		cache := NewCache(nil)
		var calls int
		fetch := func() ([]models.Category, error) {
			calls++
			return nil, nil
		}

		first, _ := cache.Categories(fetch)
		cache.Categories(fetch)
		if calls != 1 {
			t.Errorf("expected 1 fetch, got %d", calls)
		}
		if first == nil {
			t.Error("expected non-nil category list")
		}
	})

	t.Run("invalidation clears categories", func(t *testing.T) {
		cache := NewCache(nil)
		var calls int
		fetch := func() ([]models.Category, error) {
			calls++
			return []models.Category{{ID: "psalms"}}, nil
		}

		cache.Categories(fetch)
		cache.Invalidate()
		cache.Categories(fetch)
		if calls != 2 {
			t.Errorf("expected refetch after invalidation, got %d", calls)
		}
	})
}
