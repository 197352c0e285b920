package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemory_PublishConsume(t *testing.T) {
	q := NewInMemory(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, typ := range []string{"a", "b"} {
		if err := q.Publish(ctx, Message{Type: typ, Body: []byte(`{}`)}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	for _, want := range []string{"a", "b"} {
		select {
		case msg := <-msgs:
			if msg.Type != want {
				t.Fatalf("got %q, want %q", msg.Type, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for message")
		}
	}

	cancel()
	select {
	case _, ok := <-msgs:
		if ok {
			t.Fatal("unexpected message after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("consumer channel not closed after cancel")
	}
}

func TestInMemory_PublishFullDrops(t *testing.T) {
	q := NewInMemory(1)
	ctx := context.Background()
	if err := q.Publish(ctx, Message{Type: "fill"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- q.Publish(ctx, Message{Type: "dropped"}) }()
	select {
	case err := <-done:
		if !errors.Is(err, ErrFull) {
			t.Fatalf("err = %v, want ErrFull", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
}

func TestInMemory_PublishCancelled(t *testing.T) {
	q := NewInMemory(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Publish(ctx, Message{Type: "late"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
