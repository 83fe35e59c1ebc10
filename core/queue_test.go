package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueDrainRunsInOrder(t *testing.T) {
	q := NewQueue()
	var got []int
	for i := 0; i < 3; i++ {
		q.Post(func() { got = append(got, i) })
	}

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 3, q.Drain())
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Equal(t, 0, q.Drain())
}

func TestQueuePostFromGoroutines(t *testing.T) {
	q := NewQueue()
	woke := 0
	var mu sync.Mutex
	q.SetWake(func() {
		mu.Lock()
		woke++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Post(func() {})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, q.Drain())
	assert.Equal(t, 50, woke)
}

func TestTaskPostedDuringDrainRunsNextTime(t *testing.T) {
	q := NewQueue()
	ran := false
	q.Post(func() {
		q.Post(func() { ran = true })
	})

	assert.Equal(t, 1, q.Drain())
	assert.False(t, ran)
	assert.Equal(t, 1, q.Drain())
	assert.True(t, ran)
}

func TestColorFromHex(t *testing.T) {
	c := ColorFromHex(0xffaa00)
	assert.Equal(t, float32(1), c.R)
	assert.InDelta(t, 170.0/255.0, c.G, 1e-6)
	assert.Equal(t, float32(0), c.B)
	assert.Equal(t, float32(1), c.A)
}

func TestQueueClearedWakeIsNotCalled(t *testing.T) {
	q := NewQueue()
	woke := 0
	q.SetWake(func() { woke++ })
	q.Post(func() {})
	q.SetWake(nil)
	q.Post(func() {})

	assert.Equal(t, 1, woke)
	assert.Equal(t, 2, q.Drain())
}
