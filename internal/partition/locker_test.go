package partition

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocker_MultiKeySameStripeDoesNotDeadlock(t *testing.T) {
	l := NewLocker(1) // every key shares the only stripe

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("a", "b", "a")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Lock on keys sharing a stripe deadlocked")
	}
}

func TestLocker_ExclusiveSerializesWriters(t *testing.T) {
	l := NewLocker(DefaultStripes)
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(PatientKey(1))
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestLocker_ReadersShareStripe(t *testing.T) {
	l := NewLocker(4)
	unlock1 := l.RLock(DoctorKey(7))
	acquired := make(chan struct{})
	go func() {
		unlock2 := l.RLock(DoctorKey(7))
		unlock2()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second reader blocked behind first")
	}
	unlock1()
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "patient:1", PatientKey(1))
	assert.Equal(t, "doctor:7", DoctorKey(7))
	assert.Equal(t, "address:0xabc", AddressKey("0xabc"))
	assert.Equal(t, "participant:doctor:7", ParticipantKey("doctor", 7))
	assert.NotEqual(t, PatientKey(7), DoctorKey(7))
}
