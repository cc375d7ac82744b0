package devs

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Schedulable is implemented by items ordered by their next activation
// time. The key must not change while the item is resident in a queue;
// delete before a transition, re-enqueue after.
type Schedulable interface {
	TimeNext() float64
}

// CalendarQueue is a bucketed priority queue with amortized O(1) enqueue
// and dequeue when the bucket width tracks the mean separation of
// priorities. Buckets are kept sorted descending by TimeNext so the
// minimum sits at the tail, where it is inspected and popped in constant
// time. When the circular sweep misses (density was misestimated) a direct
// search over every bucket restores correctness.
//
// Ties are LIFO: among items with equal TimeNext, the latest insertion
// lands nearest the tail and pops first.
//
// Items whose TimeNext is +Inf (passive processors) are parked on a side
// list, invisible to Peek/Pop and to resize sampling.
type CalendarQueue struct {
	width           float64
	buckets         [][]Schedulable
	lastBucket      int
	bucketTop       float64
	lastPriority    float64
	size            int
	shrinkThreshold int
	expandThreshold int
	resizeEnabled   bool

	passive []Schedulable
}

// NewCalendarQueue creates an empty queue with two unit-width buckets.
func NewCalendarQueue() *CalendarQueue {
	q := &CalendarQueue{resizeEnabled: true}
	q.localInit(2, 1.0, 0.0)
	return q
}

// localInit allocates bucketCount empty buckets of the given width and
// positions the sweep at startPriority.
func (q *CalendarQueue) localInit(bucketCount int, width, startPriority float64) {
	q.width = width
	q.buckets = make([][]Schedulable, bucketCount)
	q.lastPriority = startPriority
	n := math.Floor(startPriority / width)
	q.lastBucket = int(math.Mod(n, float64(bucketCount)))
	q.bucketTop = (n + 1.5) * width
	q.shrinkThreshold = bucketCount/2 - 2
	q.expandThreshold = 2 * bucketCount
}

// Len returns the number of resident items, passive ones included.
func (q *CalendarQueue) Len() int { return q.size + len(q.passive) }

// Enqueue inserts an item keyed by its current TimeNext. An item keyed
// below the current sweep position moves the sweep back to its bucket, so
// a Peek that advanced past it cannot hide it.
func (q *CalendarQueue) Enqueue(item Schedulable) {
	tn := item.TimeNext()
	if math.IsInf(tn, 1) {
		q.passive = append(q.passive, item)
		return
	}
	if n := math.Floor(tn / q.width); (n+1.5)*q.width < q.bucketTop {
		q.lastBucket = int(math.Mod(n, float64(len(q.buckets))))
		q.bucketTop = (n + 1.5) * q.width
	}
	if tn < q.lastPriority {
		q.lastPriority = tn
	}
	q.enqueueFinite(item, tn)
	if q.size > q.expandThreshold {
		q.resize(2 * len(q.buckets))
	}
}

func (q *CalendarQueue) enqueueFinite(item Schedulable, tn float64) {
	i := q.bucketIndex(tn)
	b := q.buckets[i]
	// Scan from the tail: stop at the first resident key >= tn, so equal
	// keys keep the newcomer tailward (LIFO among ties).
	pos := len(b)
	for pos > 0 && b[pos-1].TimeNext() < tn {
		pos--
	}
	b = append(b, nil)
	copy(b[pos+1:], b[pos:])
	b[pos] = item
	q.buckets[i] = b
	q.size++
}

func (q *CalendarQueue) bucketIndex(tn float64) int {
	return int(math.Mod(math.Floor(tn/q.width), float64(len(q.buckets))))
}

// Peek returns the item with the smallest TimeNext without removing it,
// or nil when no finite item is resident.
func (q *CalendarQueue) Peek() Schedulable {
	i, ok := q.findMin()
	if !ok {
		return nil
	}
	b := q.buckets[i]
	return b[len(b)-1]
}

// Pop removes and returns the item with the smallest TimeNext, or nil when
// no finite item is resident.
func (q *CalendarQueue) Pop() Schedulable {
	i, ok := q.findMin()
	if !ok {
		return nil
	}
	b := q.buckets[i]
	item := b[len(b)-1]
	q.buckets[i] = b[:len(b)-1]
	q.lastPriority = item.TimeNext()
	q.size--
	if q.size < q.shrinkThreshold {
		q.resize(len(q.buckets) / 2)
	}
	return item
}

// findMin locates the bucket whose tail holds the overall minimum,
// advancing the circular sweep as a side effect.
func (q *CalendarQueue) findMin() (int, bool) {
	if q.size == 0 {
		return 0, false
	}
	last, top := q.lastBucket, q.bucketTop
	for range q.buckets {
		b := q.buckets[last]
		if len(b) > 0 && b[len(b)-1].TimeNext() < top {
			q.lastBucket = last
			q.bucketTop = top
			return last, true
		}
		last = (last + 1) % len(q.buckets)
		top += q.width
	}
	// Full sweep came up empty: scan every bucket for the minimum tail and
	// restart the sweep there.
	lowest := math.Inf(1)
	li := -1
	for i, b := range q.buckets {
		if len(b) == 0 {
			continue
		}
		if tn := b[len(b)-1].TimeNext(); tn < lowest {
			lowest = tn
			li = i
		}
	}
	q.lastBucket = li
	q.bucketTop = (math.Floor(lowest/q.width) + 1.5) * q.width
	return li, true
}

// Delete removes item from the queue, located by identity within its
// bucket. It reports whether the item was resident.
func (q *CalendarQueue) Delete(item Schedulable) bool {
	tn := item.TimeNext()
	if math.IsInf(tn, 1) {
		for i, it := range q.passive {
			if it == item {
				q.passive = append(q.passive[:i], q.passive[i+1:]...)
				return true
			}
		}
		return false
	}
	i := q.bucketIndex(tn)
	b := q.buckets[i]
	for j := len(b) - 1; j >= 0; j-- {
		if b[j] == item {
			q.buckets[i] = append(b[:j], b[j+1:]...)
			q.size--
			if q.size < q.shrinkThreshold {
				q.resize(len(q.buckets) / 2)
			}
			return true
		}
	}
	return false
}

// resize re-allocates newCount buckets with a freshly estimated width and
// rehashes every finite item.
func (q *CalendarQueue) resize(newCount int) {
	if !q.resizeEnabled || newCount < 1 {
		return
	}
	width := q.newWidth()
	old := q.buckets
	q.localInit(newCount, width, q.lastPriority)
	q.size = 0
	for _, b := range old {
		for _, item := range b {
			q.enqueueFinite(item, item.TimeNext())
		}
	}
}

// newWidth estimates the bucket width as three times the mean separation
// of the next few priorities, ignoring outlier gaps. Sampling pops up to
// clamp(size, 5, 25) items with resizing disabled, then restores them and
// the sweep state.
func (q *CalendarQueue) newWidth() float64 {
	if q.size < 2 {
		return 1.0
	}
	n := q.size
	if n < 5 {
		n = 5
	}
	if n > 25 {
		n = 25
	}
	if n > q.size {
		n = q.size
	}

	q.resizeEnabled = false
	lastBucket, bucketTop, lastPriority := q.lastBucket, q.bucketTop, q.lastPriority
	sample := make([]Schedulable, n)
	prios := make([]float64, n)
	for i := 0; i < n; i++ {
		sample[i] = q.Pop()
		prios[i] = sample[i].TimeNext()
	}
	for _, item := range sample {
		q.enqueueFinite(item, item.TimeNext())
	}
	q.lastBucket, q.bucketTop, q.lastPriority = lastBucket, bucketTop, lastPriority
	q.resizeEnabled = true

	seps := make([]float64, n-1)
	for i := 1; i < n; i++ {
		seps[i-1] = prios[i] - prios[i-1]
	}
	mean := stat.Mean(seps, nil)
	if mean <= 0 || math.IsNaN(mean) {
		return 1.0
	}
	// Recompute over separations below twice the mean so a few sparse gaps
	// do not inflate the width.
	small := make([]float64, 0, len(seps))
	for _, s := range seps {
		if s < 2*mean {
			small = append(small, s)
		}
	}
	if len(small) == 0 {
		return 1.0
	}
	refined := stat.Mean(small, nil)
	if refined <= 0 {
		return 1.0
	}
	return 3 * refined
}
