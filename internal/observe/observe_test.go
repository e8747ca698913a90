package observe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueDeliversLastKnownOnSubscribe(t *testing.T) {
	v := NewValue("initial")
	v.Set("updated")

	var got []string
	v.Subscribe(func(s string) { got = append(got, s) })

	assert.Equal(t, []string{"updated"}, got)
}

func TestValueMulticastsToAllSubscribers(t *testing.T) {
	v := NewValue(0)

	var a, b []int
	v.Subscribe(func(n int) { a = append(a, n) })
	v.Subscribe(func(n int) { b = append(b, n) })

	v.Set(1)
	v.Set(2)

	assert.Equal(t, []int{0, 1, 2}, a)
	assert.Equal(t, []int{0, 1, 2}, b)
	assert.Equal(t, 2, v.Get())
}

func TestValueUnsubscribeStopsDelivery(t *testing.T) {
	v := NewValue(0)

	var got []int
	unsubscribe := v.Subscribe(func(n int) { got = append(got, n) })
	v.Set(1)
	unsubscribe()
	v.Set(2)

	assert.Equal(t, []int{0, 1}, got)
}

func TestEventConsumedAtMostOnce(t *testing.T) {
	var e Event[string]

	_, ok := e.Consume()
	assert.False(t, ok, "nothing pending before emit")

	e.Emit("saved")

	msg, ok := e.Consume()
	assert.True(t, ok)
	assert.Equal(t, "saved", msg)

	// A second read, e.g. after a re-registered observer, sees nothing.
	_, ok = e.Consume()
	assert.False(t, ok)
}

func TestEventEmitReplacesUnconsumedPayload(t *testing.T) {
	var e Event[string]
	e.Emit("first")
	e.Emit("second")

	msg, ok := e.Consume()
	assert.True(t, ok)
	assert.Equal(t, "second", msg)
}
