// SPDX-License-Identifier: EPL-2.0

package player

import (
	"testing"
	"time"
)

func TestLatch_PostBeforeWait(t *testing.T) {
	t.Parallel()

	l := newLatch(0)
	l.Post()

	done := make(chan struct{})
	go func() {
		l.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait() blocked despite pending post")
	}
}

func TestLatch_WaitBlocksUntilPost(t *testing.T) {
	t.Parallel()

	l := newLatch(0)

	done := make(chan struct{})
	go func() {
		l.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait() returned without a post")
	case <-time.After(20 * time.Millisecond):
	}

	l.Post()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait() still blocked after Post()")
	}
}

func TestLatch_ClearDropsPendingPosts(t *testing.T) {
	t.Parallel()

	l := newLatch(0)
	l.Post()
	l.Post()
	l.Clear()

	done := make(chan struct{})
	go func() {
		l.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait() consumed a cleared post")
	case <-time.After(20 * time.Millisecond):
	}

	l.Post()
	<-done
}

func TestLatch_InitialCount(t *testing.T) {
	t.Parallel()

	l := newLatch(1)

	done := make(chan struct{})
	go func() {
		l.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait() blocked despite initial count")
	}
}
