package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Producer buffers events and writes them to Kafka from a background
// goroutine so the payment path never blocks on the broker.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start drains the inbox until Close is called or ctx is cancelled.
// On cancellation it flushes what is already buffered and exits;
// only Close ever closes the inbox channel.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer func() {
			_ = p.w.Close()
			close(p.closeCh)
		}()
		for {
			select {
			case <-ctx.Done():
				for {
					select {
					case m, ok := <-p.inbox:
						if !ok {
							return
						}
						p.write(m)
					default:
						return
					}
				}
			case m, ok := <-p.inbox:
				if !ok {
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		log.Error().Err(err).Str("key", string(m.Key)).Msg("publish event")
	}
}

// Publish wraps payload in an envelope and enqueues it. Events
// published after Close are dropped with a warning.
func (p *Producer) Publish(eventType, orderUID string, payload any) {
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "pharmacy-pos",
		OrderUID:     orderUID,
		Payload:      MustMarshal(payload),
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		log.Warn().Str("type", eventType).Str("order_uid", orderUID).Msg("producer closed, event dropped")
		return
	}
	p.inbox <- kafka.Message{
		Key:   PartitionKey(orderUID),
		Value: MustMarshal(env),
		Time:  time.Now(),
	}
}

// Close stops accepting events and lets the writer goroutine flush
// the remaining inbox. Safe to call more than once.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
}

func (p *Producer) WaitClosed() { <-p.closeCh }
