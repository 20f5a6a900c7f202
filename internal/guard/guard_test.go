package guard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/pkg/platform/sentinel"
)

func TestGuard_Do(t *testing.T) {
	t.Run("runs function and propagates its error", func(t *testing.T) {
		var g Guard
		sentinelErr := errors.New("boom")

		err := g.Do(func() error { return sentinelErr })

		assert.ErrorIs(t, err, sentinelErr)
		assert.False(t, g.Held())
	})

	t.Run("rejects re-entry from within the guarded region", func(t *testing.T) {
		var g Guard

		err := g.Do(func() error {
			return g.Do(func() error {
				t.Fatal("inner function must not run")
				return nil
			})
		})

		require.ErrorIs(t, err, sentinel.ErrReentrant)
	})

	t.Run("rejects a concurrent caller while held", func(t *testing.T) {
		var g Guard
		entered := make(chan struct{})
		release := make(chan struct{})

		go func() {
			_ = g.Do(func() error {
				close(entered)
				<-release
				return nil
			})
		}()

		<-entered
		err := g.Do(func() error { return nil })
		require.ErrorIs(t, err, sentinel.ErrReentrant)
		close(release)
	})

	t.Run("releases after success", func(t *testing.T) {
		var g Guard

		require.NoError(t, g.Do(func() error { return nil }))
		require.NoError(t, g.Do(func() error { return nil }))
	})

	t.Run("releases after panic", func(t *testing.T) {
		var g Guard

		require.Panics(t, func() {
			_ = g.Do(func() error { panic("observer misbehaved") })
		})
		require.NoError(t, g.Do(func() error { return nil }))
	})
}
