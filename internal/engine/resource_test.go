package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResource_PanicsOnInvalidState(t *testing.T) {
	assert.Panics(t, func() { NewResource("Fuel", -1, 100) }, "negative amount")
	assert.Panics(t, func() { NewResource("Fuel", 101, 100) }, "amount above capacity")
	assert.Panics(t, func() { NewResource("Fuel", 0, -1) }, "negative capacity")

	assert.NotPanics(t, func() { NewResource("Fuel", 0, 0) }, "zero-capacity resource is legal")
	assert.NotPanics(t, func() { NewResource("Fuel", 100, 100) }, "full resource is legal")
}

func TestResource_Consume(t *testing.T) {
	r := NewResource("Energy", 10, 50)

	assert.Equal(t, StatusOK, r.Consume(7))
	amount, _ := r.Level()
	assert.Equal(t, 3, amount)

	// Not enough left: nothing is consumed.
	assert.Equal(t, StatusInsufficient, r.Consume(7))
	amount, _ = r.Level()
	assert.Equal(t, 3, amount)

	assert.Equal(t, StatusOK, r.Consume(3))

	// Fully drained reports empty, not insufficient.
	assert.Equal(t, StatusEmpty, r.Consume(1))
	amount, _ = r.Level()
	assert.Equal(t, 0, amount)
}

func TestResource_Deposit_ClampsToCapacity(t *testing.T) {
	r := NewResource("Distance", 4980, 5000)

	deposited := r.Deposit(25)
	assert.Equal(t, 20, deposited, "only the free space fits")

	amount, capacity := r.Level()
	assert.Equal(t, 5000, amount)
	assert.Equal(t, 5000, capacity)

	// A full resource accepts nothing.
	assert.Equal(t, 0, r.Deposit(25))
}

func TestResource_Deposit_AllFits(t *testing.T) {
	r := NewResource("Oxygen", 20, 50)

	assert.Equal(t, 4, r.Deposit(4))
	amount, _ := r.Level()
	assert.Equal(t, 24, amount)
}

// TestResource_ConcurrentAccessStaysInBounds hammers one resource from
// concurrent consumers and producers and checks that the amount never
// escapes [0, capacity] and that no unit of quantity is lost or invented.
func TestResource_ConcurrentAccessStaysInBounds(t *testing.T) {
	const capacity = 100
	const initial = 50
	r := NewResource("Shared", initial, capacity)

	const workers = 8
	const iterations = 500

	var consumed, deposited int64
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			localConsumed, localDeposited := 0, 0
			for i := 0; i < iterations; i++ {
				if w%2 == 0 {
					if r.Consume(3) == StatusOK {
						localConsumed += 3
					}
				} else {
					localDeposited += r.Deposit(2)
				}
				amount, _ := r.Level()
				if amount < 0 || amount > capacity {
					t.Errorf("amount %d escaped [0, %d]", amount, capacity)
					return
				}
			}
			mu.Lock()
			consumed += int64(localConsumed)
			deposited += int64(localDeposited)
			mu.Unlock()
		}(w)
	}
	wg.Wait()

	amount, _ := r.Level()
	require.GreaterOrEqual(t, amount, 0)
	require.LessOrEqual(t, amount, capacity)
	assert.Equal(t, int64(initial)+deposited-consumed, int64(amount),
		"final amount must balance against successful consumes and deposits")
}
