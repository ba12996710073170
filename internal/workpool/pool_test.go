package workpool

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestRowsCoversEveryRowOnce(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		for _, height := range []int{1, 15, 16, 17, 100, 1000} {
			seen := make([]int, height)
			var mu sync.Mutex
			err := New(workers).Rows(context.Background(), height, func(y0, y1 int) error {
				mu.Lock()
				defer mu.Unlock()
				for y := y0; y < y1; y++ {
					seen[y]++
				}
				return nil
			})
			if err != nil {
				t.Fatalf("workers=%d height=%d: %v", workers, height, err)
			}
			for y, n := range seen {
				if n != 1 {
					t.Fatalf("workers=%d height=%d: row %d visited %d times", workers, height, y, n)
				}
			}
		}
	}
}

func TestRowsReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := New(4).Rows(context.Background(), 256, func(y0, y1 int) error {
		if y0 == 0 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestNilPoolRunsInline(t *testing.T) {
	var p *Pool
	calls := 0
	if err := p.Rows(context.Background(), 50, func(y0, y1 int) error {
		calls++
		if y0 != 0 || y1 != 50 {
			t.Fatalf("unexpected band [%d,%d)", y0, y1)
		}
		return nil
	}); err != nil {
		t.Fatalf("rows: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
}
