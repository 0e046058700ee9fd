package deferred

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDeferred(t *testing.T) {
	t.Run("resolve after subscribe", func(t *testing.T) {
		d := New[int]()
		var got Outcome[int]
		require.NoError(t, d.Subscribe(func(o Outcome[int]) {
			got = o
		}))
		require.NoError(t, d.Resolve(42))
		require.True(t, got.Succeeded())
		require.Equal(t, 42, got.Value())
	})

	t.Run("subscribe after resolve", func(t *testing.T) {
		d := Resolved("hello")
		var got string
		require.NoError(t, d.Then(func(s string) {
			got = s
		}, func(error) {
			require.Fail(t, "failure channel must not fire")
		}))
		require.Equal(t, "hello", got)
	})

	t.Run("reject", func(t *testing.T) {
		wantErr := errors.New("boom")
		d := Failed[int](wantErr)
		var got error
		require.NoError(t, d.Then(func(int) {
			require.Fail(t, "success channel must not fire")
		}, func(err error) {
			got = err
		}))
		require.ErrorIs(t, got, wantErr)
	})

	t.Run("reject with nil", func(t *testing.T) {
		d := New[int]()
		require.NoError(t, d.Reject(nil))
		_, err := d.Wait(context.Background())
		require.ErrorIs(t, err, ErrNilFailure)
	})

	t.Run("completes once", func(t *testing.T) {
		d := New[int]()
		require.NoError(t, d.Resolve(1))
		require.ErrorIs(t, d.Resolve(2), ErrAlreadyCompleted)
		require.ErrorIs(t, d.Reject(errors.New("late")), ErrAlreadyCompleted)

		value, err := d.Wait(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, value)
	})

	t.Run("single continuation", func(t *testing.T) {
		d := New[int]()
		require.NoError(t, d.Subscribe(func(Outcome[int]) {}))
		require.ErrorIs(t, d.Subscribe(func(Outcome[int]) {}), ErrAlreadyRegistered)
	})

	t.Run("racing completions fire exactly once", func(t *testing.T) {
		const workers = 16

		for i := 0; i < 100; i++ {
			d := New[int]()
			fired := atomic.NewInt32(0)
			require.NoError(t, d.Then(func(int) {
				fired.Inc()
			}, func(error) {
				fired.Inc()
			}))

			var wg sync.WaitGroup
			wg.Add(workers)
			for w := 0; w < workers; w++ {
				go func(w int) {
					defer wg.Done()
					if w%2 == 0 {
						_ = d.Resolve(w)
					} else {
						_ = d.Reject(errors.New("failed"))
					}
				}(w)
			}
			wg.Wait()

			require.Equal(t, int32(1), fired.Load())
		}
	})

	t.Run("wait timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := New[int]().Wait(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestGo(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		value, err := Go(func() (int, error) {
			return 5, nil
		}).Wait(context.Background())
		require.NoError(t, err)
		require.Equal(t, 5, value)
	})

	t.Run("error", func(t *testing.T) {
		wantErr := errors.New("nope")
		_, err := Go(func() (int, error) {
			return 0, wantErr
		}).Wait(context.Background())
		require.ErrorIs(t, err, wantErr)
	})

	t.Run("panic", func(t *testing.T) {
		_, err := Go(func() (int, error) {
			panic("oops")
		}).Wait(context.Background())
		require.ErrorContains(t, err, "oops")
	})
}
