// Package partition provides keyed reader/writer locks so that operations on
// unrelated patients or doctors never contend on one global mutex.
package partition

import (
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
)

const DefaultStripes = 256

// Locker maps keys onto a fixed set of RW mutex stripes. Two keys may share a
// stripe; that only costs concurrency, never correctness.
type Locker struct {
	stripes []sync.RWMutex
}

func NewLocker(stripes int) *Locker {
	if stripes <= 0 {
		stripes = DefaultStripes
	}
	return &Locker{stripes: make([]sync.RWMutex, stripes)}
}

func (l *Locker) stripe(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(l.stripes)))
}

// Lock takes the keys' stripes exclusively and returns the release func.
// Stripes are deduplicated and taken in ascending order, so overlapping
// multi-key callers cannot deadlock.
func (l *Locker) Lock(keys ...string) (unlock func()) {
	idx := l.indices(keys)
	for _, i := range idx {
		l.stripes[i].Lock()
	}
	return func() {
		for j := len(idx) - 1; j >= 0; j-- {
			l.stripes[idx[j]].Unlock()
		}
	}
}

// RLock takes the key's stripe in shared mode.
func (l *Locker) RLock(key string) (unlock func()) {
	i := l.stripe(key)
	l.stripes[i].RLock()
	return l.stripes[i].RUnlock
}

func (l *Locker) indices(keys []string) []int {
	seen := make(map[int]struct{}, len(keys))
	idx := make([]int, 0, len(keys))
	for _, k := range keys {
		i := l.stripe(k)
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// PatientKey guards a patient's consent edges and record sequence.
func PatientKey(patientID int64) string {
	return "patient:" + strconv.FormatInt(patientID, 10)
}

// DoctorKey guards a doctor's rating aggregate.
func DoctorKey(doctorID int64) string {
	return "doctor:" + strconv.FormatInt(doctorID, 10)
}

func AddressKey(address string) string {
	return "address:" + address
}

func ParticipantKey(role string, id int64) string {
	return "participant:" + role + ":" + strconv.FormatInt(id, 10)
}
