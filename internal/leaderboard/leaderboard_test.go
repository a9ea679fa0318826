package leaderboard

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"
)

// saveOnlyStore hides MemoryStore's Update so the Load/Save path is exercised.
type saveOnlyStore struct {
	inner *MemoryStore
}

func (s saveOnlyStore) Load(ctx context.Context, key string) ([]float64, bool, error) {
	return s.inner.Load(ctx, key)
}

func (s saveOnlyStore) Save(ctx context.Context, key string, times []float64) error {
	return s.inner.Save(ctx, key, times)
}

// failingStore fails every operation.
type failingStore struct{}

var errBroken = errors.New("broken store")

func (failingStore) Load(context.Context, string) ([]float64, bool, error) {
	return nil, false, errBroken
}

func (failingStore) Save(context.Context, string, []float64) error {
	return errBroken
}

func TestInsertSequence(t *testing.T) {
	var times []float64
	for _, v := range []float64{5.2, 3.1, 9.0, 1.0, 2.0, 0.5} {
		times = Insert(times, v, 5)
	}

	want := []float64{0.5, 1.0, 2.0, 3.1, 5.2}
	if !reflect.DeepEqual(times, want) {
		t.Errorf("Insert sequence = %v, expected %v", times, want)
	}
}

func TestInsertDoesNotMutate(t *testing.T) {
	orig := []float64{1, 2, 3}
	_ = Insert(orig, 0.5, 3)

	if !reflect.DeepEqual(orig, []float64{1, 2, 3}) {
		t.Errorf("Insert modified input: %v", orig)
	}
}

func TestSanitize(t *testing.T) {
	in := []float64{3, math.NaN(), -1, 1, math.Inf(1), 2, 7, 0.5, 4}
	got := Sanitize(in, 5)
	want := []float64{0.5, 1, 2, 3, 4}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sanitize() = %v, expected %v", got, want)
	}
}

// blockingStore parks Save until release is closed.
type blockingStore struct {
	saving  chan struct{}
	release chan struct{}
}

func (blockingStore) Load(context.Context, string) ([]float64, bool, error) {
	return nil, false, nil
}

func (s blockingStore) Save(context.Context, string, []float64) error {
	close(s.saving)
	<-s.release
	return nil
}

func TestSubmitPersists(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		store Store
	}{
		{"updater", NewMemoryStore()},
		{"load/save", saveOnlyStore{inner: NewMemoryStore()}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lb := New(tc.store, "", 0)
			if lb.Key() != DefaultKey || lb.Capacity() != DefaultCapacity {
				t.Fatalf("defaults = (%q, %d)", lb.Key(), lb.Capacity())
			}

			ranks := []int{}
			for _, v := range []float64{5.2, 3.1, 9.0, 1.0, 2.0, 0.5} {
				rank, err := lb.Submit(ctx, v)
				if err != nil {
					t.Fatalf("Submit(%v) failed: %v", v, err)
				}
				ranks = append(ranks, rank)
			}

			if !reflect.DeepEqual(ranks, []int{1, 1, 3, 1, 2, 1}) {
				t.Errorf("ranks = %v", ranks)
			}

			want := []float64{0.5, 1.0, 2.0, 3.1, 5.2}
			if !reflect.DeepEqual(lb.Times(), want) {
				t.Errorf("Times() = %v, expected %v", lb.Times(), want)
			}

			stored, ok, err := tc.store.Load(ctx, DefaultKey)
			if err != nil || !ok {
				t.Fatalf("store Load = (%v, %v, %v)", stored, ok, err)
			}
			if !reflect.DeepEqual(stored, want) {
				t.Errorf("stored = %v, expected %v", stored, want)
			}

			// A fresh board over the same store sees the persisted times
			reloaded := New(tc.store, DefaultKey, 5)
			if err := reloaded.Load(ctx); err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if !reflect.DeepEqual(reloaded.Times(), want) {
				t.Errorf("reloaded = %v, expected %v", reloaded.Times(), want)
			}
		})
	}
}

func TestSubmitNotPlacing(t *testing.T) {
	ctx := context.Background()
	lb := New(NewMemoryStore(), "k", 2)

	lb.Submit(ctx, 1)
	lb.Submit(ctx, 2)
	rank, err := lb.Submit(ctx, 3)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if rank != 0 {
		t.Errorf("rank = %d, expected 0 for a time that did not place", rank)
	}
}

func TestLoadFailsOpen(t *testing.T) {
	ctx := context.Background()
	lb := New(failingStore{}, DefaultKey, 5)

	if err := lb.Load(ctx); !errors.Is(err, errBroken) {
		t.Errorf("Load() error = %v, expected wrapped errBroken", err)
	}
	if len(lb.Times()) != 0 {
		t.Errorf("Times() = %v, expected empty", lb.Times())
	}
	if _, ok := lb.Best(); ok {
		t.Error("Best() should report no time on an empty board")
	}
}

func TestSubmitFailsOpen(t *testing.T) {
	ctx := context.Background()
	lb := New(failingStore{}, DefaultKey, 5)

	rank, err := lb.Submit(ctx, 4.2)
	if !errors.Is(err, errBroken) {
		t.Errorf("Submit() error = %v, expected wrapped errBroken", err)
	}
	if rank != 1 {
		t.Errorf("rank = %d, expected 1", rank)
	}
	if best, ok := lb.Best(); !ok || best != 4.2 {
		t.Errorf("Best() = (%v, %v), expected (4.2, true)", best, ok)
	}
}

func TestLoadAbsentAndCorrupt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	lb := New(store, "missing", 5)
	if err := lb.Load(ctx); err != nil {
		t.Fatalf("Load() of absent key failed: %v", err)
	}
	if len(lb.Times()) != 0 {
		t.Errorf("absent key should give empty board, got %v", lb.Times())
	}

	store.Save(ctx, "dirty", []float64{9, math.NaN(), -3, 1, 2, 3, 4, 5, 6})
	lb = New(store, "dirty", 5)
	if err := lb.Load(ctx); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(lb.Times(), []float64{1, 2, 3, 4, 5}) {
		t.Errorf("Times() = %v, expected sanitized top 5", lb.Times())
	}
}

func TestConcurrentSubmit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	lb := New(store, DefaultKey, 5)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			lb.Submit(ctx, v)
		}(float64(i + 1))
	}
	wg.Wait()

	want := []float64{1, 2, 3, 4, 5}
	if !reflect.DeepEqual(lb.Times(), want) {
		t.Errorf("Times() = %v, expected %v", lb.Times(), want)
	}
}

func TestSubmitTies(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		seed     []float64
		capacity int
		submit   float64
		want     int
	}{
		{"ranks after equal entry", []float64{1, 2, 3}, 5, 2, 3},
		{"ranks after every equal entry", []float64{2, 2}, 5, 2, 3},
		{"tie with the best", []float64{1, 2}, 5, 1, 2},
		{"tie with the last kept entry", []float64{1, 2, 2}, 3, 2, 0},
	}

	for _, tc := range tests {
		for _, store := range []Store{NewMemoryStore(), saveOnlyStore{inner: NewMemoryStore()}} {
			t.Run(tc.name, func(t *testing.T) {
				store.Save(ctx, DefaultKey, tc.seed)
				lb := New(store, DefaultKey, tc.capacity)
				if err := lb.Load(ctx); err != nil {
					t.Fatalf("Load() failed: %v", err)
				}

				rank, err := lb.Submit(ctx, tc.submit)
				if err != nil {
					t.Fatalf("Submit() failed: %v", err)
				}
				if rank != tc.want {
					t.Errorf("Submit(%v) over %v = rank %d, expected %d", tc.submit, tc.seed, rank, tc.want)
				}
			})
		}
	}
}

func TestSubmitDoesNotBlockReaders(t *testing.T) {
	store := blockingStore{saving: make(chan struct{}), release: make(chan struct{})}
	lb := New(store, DefaultKey, 5)

	done := make(chan struct{})
	go func() {
		defer close(done)
		lb.Submit(context.Background(), 7)
	}()
	<-store.saving

	read := make(chan float64)
	go func() {
		best, _ := lb.Best()
		lb.Times()
		read <- best
	}()

	select {
	case best := <-read:
		if best != 7 {
			t.Errorf("Best() during save = %v, expected 7", best)
		}
	case <-time.After(time.Second):
		t.Error("Best() blocked while the store was saving")
	}

	close(store.release)
	<-done
}
