package cv2pdf

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire(context.Context) (*Converter, error)
	Release(*Converter)
	Size() int
	Close() error
} = (*ConverterPool)(nil)

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit takes priority", 4, 4},
		{"explicit=1 for sequential", 1, 1},
		{"explicit can exceed max", 16, 16},
		{"zero uses auto calculation", 0, min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
		{"negative uses auto calculation", -3, min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestConverterPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(2)
	defer pool.Close()
	ctx := context.Background()

	conv1, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	conv2, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if conv1 == conv2 {
		t.Error("expected different converter instances")
	}

	pool.Release(conv1)
	conv3, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if conv3 != conv1 {
		t.Error("expected to get back released converter")
	}

	pool.Release(conv2)
	pool.Release(conv3)
}

func TestConverterPool_Size(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		size int
		want int
	}{
		{"size 1", 1, 1},
		{"size 4", 4, 4},
		{"size 0 becomes 1", 0, 1},
		{"negative becomes 1", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool := NewConverterPool(tt.size)
			defer pool.Close()

			if got := pool.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConverterPool_ConcurrentConvert(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(3)
	defer pool.Close()
	csv := readFixture(t, "jane_doe.csv")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for range 20 {
		wg.Go(func() {
			conv, err := pool.Acquire(context.Background())
			if err != nil {
				errs <- err
				return
			}
			defer pool.Release(conv)
			if _, err := conv.Convert(context.Background(), Input{CSV: csv}); err != nil {
				errs <- err
			}
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(10 * time.Second)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		t.Fatal("concurrent conversions timed out - possible deadlock")
	}
	close(errs)
	for err := range errs {
		t.Errorf("conversion error: %v", err)
	}
}

func TestConverterPool_AcquireHonorsContext(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(1)
	defer pool.Close()

	conv, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer pool.Release(conv)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := pool.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() on exhausted pool = %v, want DeadlineExceeded", err)
	}
}

func TestConverterPool_FactoryError(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(1, WithBackend("latex"))
	defer pool.Close()

	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("Acquire() error = %v, want ErrUnknownBackend", err)
	}
	// A failed creation does not consume capacity.
	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("second Acquire() error = %v, want ErrUnknownBackend", err)
	}
}

func TestConverterPool_Close(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(2)
	conv, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Release after close is a no-op, a second Close too.
	pool.Release(conv)
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close = %v, want ErrPoolClosed", err)
	}
}

func TestConverterPool_Close_DiscardsReleasedConverters(t *testing.T) {
	t.Parallel()

	pool := NewConverterPool(2)
	conv, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	// Released before Close, so it is still buffered in the pool.
	pool.Release(conv)
	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	for range 3 {
		got, err := pool.Acquire(context.Background())
		if !errors.Is(err, ErrPoolClosed) {
			t.Fatalf("Acquire() after Close = %v, %v, want ErrPoolClosed", got, err)
		}
		if got != nil {
			t.Fatal("Acquire() after Close returned a closed converter")
		}
	}
}
