package promotion

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestKeyedMutex(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	km := newKeyedMutex()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  = make(map[string]int)
		overlap bool
	)
	for i := 0; i < 50; i++ {
		key := []string{"a", "b"}[i%2]
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.lock(key)
			defer unlock()

			mu.Lock()
			active[key]++
			if active[key] > 1 {
				overlap = true
			}
			mu.Unlock()

			mu.Lock()
			active[key]--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.False(t, overlap, "two holders of the same key")
	assert.Zero(t, km.len(), "released keys are dropped")
}

func TestKeyedMutex_independentKeys(t *testing.T) {
	km := newKeyedMutex()
	unlockA := km.lock("a")
	unlockB := km.lock("b") // must not block on "a"
	assert.Equal(t, 2, km.len())
	unlockA()
	unlockB()
	assert.Zero(t, km.len())
}
