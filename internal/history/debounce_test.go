package history

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestDebouncerCoalescesBurst(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Schedule()
		time.Sleep(2 * time.Millisecond)
	}
	assert.True(t, d.Pending())

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.False(t, d.Pending())
}

func TestDebouncerCancel(t *testing.T) {
	var runs atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func() { runs.Add(1) })
	defer d.Stop()

	assert.False(t, d.Cancel())
	d.Schedule()
	assert.True(t, d.Cancel())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}

func TestDebouncerFlush(t *testing.T) {
	var runs atomic.Int32
	d := NewDebouncer(time.Hour, func() { runs.Add(1) })
	defer d.Stop()

	assert.False(t, d.Flush(), "nothing pending")
	d.Schedule()
	assert.True(t, d.Flush())
	assert.Equal(t, int32(1), runs.Load())
	assert.False(t, d.Pending())
	assert.False(t, d.Flush())
}

func TestDebouncerStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs atomic.Int32
	d := NewDebouncer(10*time.Millisecond, func() { runs.Add(1) })
	d.Schedule()
	d.Stop()
	d.Schedule()

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
	assert.False(t, d.Pending())
}

func TestDebouncerDefaultDelay(t *testing.T) {
	d := NewDebouncer(0, func() {})
	assert.Equal(t, DefaultDebounce, d.Delay())
}
