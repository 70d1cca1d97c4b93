package mapkit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/mapstation/mapkit/pkg/errors"
	"github.com/mapstation/mapkit/pkg/maps/memory"
)

func TestLoader_ResolveDeliversToAllWaiters(t *testing.T) {
	l := NewLoader()
	d := memory.New()

	const waiters = 8
	var wg sync.WaitGroup
	ctors := make([]Constructor, waiters)
	errs := make([]error, waiters)

	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctors[i], errs[i] = l.Wait(context.Background())
		}(i)
	}

	l.Resolve(d)
	wg.Wait()

	for i := 0; i < waiters; i++ {
		if errs[i] != nil {
			t.Fatalf("waiter %d got error: %v", i, errs[i])
		}
		if ctors[i] == nil {
			t.Fatalf("waiter %d got nil constructor", i)
		}
	}

	// Each waiter constructs an independent facade against the same driver.
	m1, err := ctors[0]()
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	m2, err := ctors[1]()
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	if m1 == m2 {
		t.Error("constructors should build independent facades")
	}
}

func TestLoader_LateWaiterSeesResolution(t *testing.T) {
	l := NewLoader()
	l.Resolve(memory.New())

	ctor, err := l.Wait(context.Background())
	if err != nil || ctor == nil {
		t.Fatalf("Wait() after resolve = (%v, %v)", ctor, err)
	}
}

func TestLoader_FailIsTerminal(t *testing.T) {
	l := NewLoader()
	loadErr := pkgerrors.NewLoadError("https://maps.example.com/api/js", "404", nil)
	l.Fail(loadErr)

	ctor, err := l.Wait(context.Background())
	if ctor != nil {
		t.Error("failed loader should not deliver a constructor")
	}
	if !errors.Is(err, pkgerrors.ErrLoadFailed) {
		t.Errorf("err = %v, want ErrLoadFailed", err)
	}

	// No retry: a resolve after failure is a no-op.
	l.Resolve(memory.New())
	if _, err := l.Wait(context.Background()); !errors.Is(err, pkgerrors.ErrLoadFailed) {
		t.Errorf("err after late resolve = %v, want ErrLoadFailed", err)
	}
}

func TestLoader_FirstSettlementWins(t *testing.T) {
	l := NewLoader()
	l.Resolve(memory.New())
	l.Fail(errors.New("too late"))

	ctor, err := l.Wait(context.Background())
	if err != nil || ctor == nil {
		t.Fatalf("Wait() = (%v, %v), want constructor", ctor, err)
	}
}

func TestLoader_FailNilUsesSentinel(t *testing.T) {
	l := NewLoader()
	l.Fail(nil)

	_, err := l.Wait(context.Background())
	if !errors.Is(err, pkgerrors.ErrLoadFailed) {
		t.Errorf("err = %v, want ErrLoadFailed", err)
	}
}

func TestLoader_WaitHonorsContext(t *testing.T) {
	l := NewLoader()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := l.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestLoader_Settled(t *testing.T) {
	l := NewLoader()
	if l.Settled() {
		t.Error("fresh loader reports settled")
	}
	l.Resolve(memory.New())
	if !l.Settled() {
		t.Error("resolved loader reports unsettled")
	}
}
