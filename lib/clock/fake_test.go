// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNow(t *testing.T) {
	fake := Fake(testEpoch)
	if got := fake.Now(); !got.Equal(testEpoch) {
		t.Errorf("Now() = %v, want %v", got, testEpoch)
	}

	fake.Advance(90 * time.Second)
	want := testEpoch.Add(90 * time.Second)
	if got := fake.Now(); !got.Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	fake := Fake(testEpoch)
	ch := fake.After(10 * time.Second)

	select {
	case <-ch:
		t.Fatal("After channel fired before Advance")
	default:
	}

	fake.Advance(9 * time.Second)
	select {
	case <-ch:
		t.Fatal("After channel fired before deadline")
	default:
	}

	fake.Advance(time.Second)
	select {
	case fired := <-ch:
		want := testEpoch.Add(10 * time.Second)
		if !fired.Equal(want) {
			t.Errorf("fired at %v, want %v", fired, want)
		}
	default:
		t.Fatal("After channel did not fire at deadline")
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	fake := Fake(testEpoch)
	select {
	case <-fake.After(0):
	default:
		t.Fatal("After(0) should fire immediately")
	}
}

func TestFakeSleepUnblocks(t *testing.T) {
	fake := Fake(testEpoch)
	done := make(chan struct{})

	go func() {
		fake.Sleep(5 * time.Second)
		close(done)
	}()

	fake.WaitForWaiters(1)
	fake.Advance(5 * time.Second)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Sleep did not return after Advance")
	}
}

func TestFakeWaiterFiresOnce(t *testing.T) {
	fake := Fake(testEpoch)
	ch := fake.After(time.Second)

	fake.Advance(time.Second)
	fake.Advance(time.Second)

	<-ch
	select {
	case <-ch:
		t.Fatal("waiter fired twice")
	default:
	}
}
