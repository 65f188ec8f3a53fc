package location

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedSource(t *testing.T) {
	t.Run("delivers samples to subscribers", func(t *testing.T) {
		src := NewSimulatedSource(12.34, 56.78, 5*time.Millisecond)
		defer src.Close()

		var mu sync.Mutex
		var samples []Sample
		unsubscribe, err := src.Subscribe(func(s Sample) {
			mu.Lock()
			samples = append(samples, s)
			mu.Unlock()
		})
		require.NoError(t, err)
		defer unsubscribe()

		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(samples) >= 2
		}, time.Second, 5*time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		for _, s := range samples {
			assert.InDelta(t, 12.34, s.Latitude, 0.1)
			assert.InDelta(t, 56.78, s.Longitude, 0.1)
			assert.False(t, s.CapturedAt.IsZero())
		}
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		src := NewSimulatedSource(0, 0, 5*time.Millisecond)
		defer src.Close()

		var mu sync.Mutex
		count := 0
		unsubscribe, err := src.Subscribe(func(s Sample) {
			mu.Lock()
			count++
			mu.Unlock()
		})
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return count >= 1
		}, time.Second, 5*time.Millisecond)

		unsubscribe()
		// let any in-flight delivery drain before sampling the count
		time.Sleep(15 * time.Millisecond)
		mu.Lock()
		seen := count
		mu.Unlock()

		time.Sleep(30 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, seen, count)
	})

	t.Run("current returns a fix and permission is granted", func(t *testing.T) {
		src := NewSimulatedSource(12.34, 56.78, time.Hour)
		defer src.Close()

		assert.True(t, src.Granted())
		sample, err := src.Current()
		require.NoError(t, err)
		assert.Equal(t, 12.34, sample.Latitude)
	})

	t.Run("rejects nil callback", func(t *testing.T) {
		src := NewSimulatedSource(0, 0, time.Hour)
		defer src.Close()

		_, err := src.Subscribe(nil)
		assert.Error(t, err)
	})
}
