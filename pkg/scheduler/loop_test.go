package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestLoopDrainsNestedMicrotasks(t *testing.T) {
	loop := NewLoop()
	var log []string

	loop.Do(func() {
		loop.Microtask(func() {
			log = append(log, "m1")
			loop.Microtask(func() { log = append(log, "m3") })
		})
		loop.Microtask(func() { log = append(log, "m2") })
		log = append(log, "task")
	})

	if fmt.Sprint(log) != "[task m1 m2 m3]" {
		t.Errorf("log = %v", log)
	}
	if loop.Pending() {
		t.Error("loop should be idle")
	}
}

func TestLoopDispatchFromOtherGoroutine(t *testing.T) {
	loop := NewLoop()
	done := make(chan struct{})
	go func() {
		loop.Dispatch(func() {})
		close(done)
	}()
	<-done

	if n := loop.RunPending(); n != 1 {
		t.Errorf("RunPending() = %d, want 1", n)
	}
}

func TestLoopServe(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{})

	errc := make(chan error, 1)
	go func() { errc <- loop.Serve(ctx) }()

	loop.Dispatch(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("dispatched task did not run")
	}

	cancel()
	if err := <-errc; err != context.Canceled {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}
