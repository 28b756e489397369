package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/navguard/internal/domain/model"
)

func frame(id string) model.Frame {
	return model.Frame{ID: id, Timestamp: time.Now(), Own: model.NewAircraftState(40, -75, 5000, 90, 150, 0)}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, frame("f1")) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ID != "f1" {
		t.Errorf("expected f1, got %v", got.ID)
	}
	if got.Own.AltitudeFt != 5000 {
		t.Errorf("frame payload not preserved: %+v", got.Own)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, frame("f1")) || !q.Enqueue(ctx, frame("f2")) {
		t.Fatal("expected enqueue to succeed")
	}

	// Full queue drops the newest frame.
	if q.Enqueue(ctx, frame("f3")) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_Order(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 5; i++ {
		if !q.Enqueue(ctx, frame(fmt.Sprintf("f%d", i))) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	_ = q.Close()

	var ids []string
	for f := range q.Dequeue(ctx) {
		ids = append(ids, f.ID)
	}
	want := []string{"f0", "f1", "f2", "f3", "f4"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, ids)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if q.IsClosed() {
		t.Error("new queue reported closed")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected closed")
	}
	if q.Enqueue(ctx, frame("late")) {
		t.Error("expected enqueue after close to fail")
	}
	if _, ok := <-q.Dequeue(ctx); ok {
		t.Error("expected closed dequeue channel")
	}
}
