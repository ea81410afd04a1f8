package events

import "testing"

func TestProducer_CloseIdempotent(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "test.events", 4)
	p.Close()
	p.Close() // second call must not panic
}

func TestProducer_PublishAfterCloseDropped(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "test.events", 4)
	p.Close()

	// Must drop, not panic on a closed inbox.
	p.Publish(EventOrderPaid, "00001-001-0001", map[string]any{"amount": 10.0})

	if n := len(p.inbox); n != 0 {
		t.Errorf("inbox has %d messages, want 0", n)
	}
}

func TestProducer_PublishEnqueues(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "test.events", 4)

	p.Publish(EventOrderPaid, "00001-001-0001", map[string]any{"amount": 10.0})

	if n := len(p.inbox); n != 1 {
		t.Fatalf("inbox has %d messages, want 1", n)
	}
	m := <-p.inbox
	if string(m.Key) != string(PartitionKey("00001-001-0001")) {
		t.Errorf("key = %q", m.Key)
	}
}
