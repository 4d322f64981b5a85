// SPDX-License-Identifier: EPL-2.0

package player

import "sync"

// UnitBuffer is one reusable slot of the ring: a byte payload of decoded
// PCM plus the number of audio units it represents.
type UnitBuffer struct {
	Data      []byte
	Used      int
	UnitCount int
}

// UnitBufferRing is a bounded ring of UnitBuffers shared by one producer
// (the decoder worker) and one consumer (the renderer worker).
//
// Every slot is logically in either the free queue or the data queue.
// TakeFree/TakeData return the head slot of their queue, blocking while
// the queue is empty; the matching Recycle call moves the taken slot to
// the tail of the opposite queue. The consumer therefore observes filled
// slots in exactly the order the producer filled them.
//
// ResetPV aborts any in-flight take (the blocked call returns nil) and
// places all slots back into the free queue.
type UnitBufferRing struct {
	mtx      sync.Mutex
	freeCond *sync.Cond
	dataCond *sync.Cond

	bufs []*UnitBuffer

	freeCount int
	dataCount int
	writeIdx  int // next slot returned by TakeFree
	readIdx   int // next slot returned by TakeData

	gen uint64 // bumped by ResetPV, aborts blocked takes
}

// NewUnitBufferRing creates a ring of count empty slots. Slot payloads are
// allocated lazily by EnsureCapacity.
func NewUnitBufferRing(count int) *UnitBufferRing {
	r := &UnitBufferRing{}
	r.freeCond = sync.NewCond(&r.mtx)
	r.dataCond = sync.NewCond(&r.mtx)
	r.alloc(count)
	return r
}

func (r *UnitBufferRing) alloc(count int) {
	r.bufs = make([]*UnitBuffer, count)
	for i := range r.bufs {
		r.bufs[i] = &UnitBuffer{}
	}
	r.freeCount = count
	r.dataCount = 0
	r.writeIdx = 0
	r.readIdx = 0
}

// BufferCount returns the number of slots in the ring.
func (r *UnitBufferRing) BufferCount() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return len(r.bufs)
}

// SetBufferCount replaces the ring with count fresh slots. Payload
// capacity is re-grown on the next EnsureCapacity. Counts below one are
// ignored.
func (r *UnitBufferRing) SetBufferCount(count int) {
	if count < 1 {
		return
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.alloc(count)
}

// EnsureCapacity grows every slot's payload to at least max bytes. Slots
// are never shrunk.
func (r *UnitBufferRing) EnsureCapacity(max int) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, buf := range r.bufs {
		buf.Used = 0
		if cap(buf.Data) < max {
			buf.Data = make([]byte, max)
		}
	}
}

// TakeFree blocks until a slot is available in the free queue and returns
// it. The slot stays in the ring; the caller must hand it back with
// RecycleFree once filled. Returns nil if ResetPV aborts the wait.
func (r *UnitBufferRing) TakeFree() *UnitBuffer {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	gen := r.gen
	for r.freeCount == 0 {
		r.freeCond.Wait()
		if r.gen != gen {
			return nil
		}
	}
	r.freeCount--
	return r.bufs[r.writeIdx]
}

// RecycleFree moves the most recently taken free slot to the data queue
// tail and wakes a consumer blocked in TakeData.
func (r *UnitBufferRing) RecycleFree() {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.writeIdx = (r.writeIdx + 1) % len(r.bufs)
	r.dataCount++
	r.dataCond.Signal()
}

// TakeData blocks until a filled slot is available and returns it.
// Returns nil if ResetPV aborts the wait.
func (r *UnitBufferRing) TakeData() *UnitBuffer {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	gen := r.gen
	for r.dataCount == 0 {
		r.dataCond.Wait()
		if r.gen != gen {
			return nil
		}
	}
	r.dataCount--
	return r.bufs[r.readIdx]
}

// RecycleData moves the most recently taken data slot back to the free
// queue tail and wakes a producer blocked in TakeFree.
func (r *UnitBufferRing) RecycleData() {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.readIdx = (r.readIdx + 1) % len(r.bufs)
	r.freeCount++
	r.freeCond.Signal()
}

// ResetPV aborts blocked takes and returns every slot to the free queue.
// Must not run concurrently with an active producer/consumer cycle other
// than to cancel a blocked take.
func (r *UnitBufferRing) ResetPV() {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.gen++
	r.freeCount = len(r.bufs)
	r.dataCount = 0
	r.writeIdx = 0
	r.readIdx = 0
	r.freeCond.Broadcast()
	r.dataCond.Broadcast()
}

// FreeCount reports the slots currently available to the producer.
func (r *UnitBufferRing) FreeCount() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.freeCount
}

// DataCount reports the slots currently available to the consumer.
func (r *UnitBufferRing) DataCount() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.dataCount
}
