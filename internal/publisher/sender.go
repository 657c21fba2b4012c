package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

// Sender delivers one message to a topic and waits for the server ack.
type Sender interface {
	Send(ctx context.Context, topic string, msg *gcppubsub.Message) error
}

// topicSource is the slice of pkg/pubsub.Client the sender needs.
type topicSource interface {
	Publisher(name string) *gcppubsub.Publisher
}

// PubSubSender keeps one *Publisher per topic. Publishers batch in the
// background, so creating one per message would leak goroutines.
type PubSubSender struct {
	source topicSource

	mu     sync.Mutex
	topics map[string]*gcppubsub.Publisher
}

func NewPubSubSender(source topicSource) *PubSubSender {
	return &PubSubSender{source: source, topics: map[string]*gcppubsub.Publisher{}}
}

func (s *PubSubSender) Send(ctx context.Context, topic string, msg *gcppubsub.Message) error {
	pub, err := s.publisher(topic)
	if err != nil {
		return err
	}
	if _, err := pub.Publish(ctx, msg).Get(ctx); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (s *PubSubSender) publisher(topic string) (*gcppubsub.Publisher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pub, ok := s.topics[topic]; ok {
		return pub, nil
	}
	pub := s.source.Publisher(topic)
	if pub == nil {
		return nil, permanent(fmt.Errorf("no publisher for topic %q", topic))
	}
	s.topics[topic] = pub
	return pub, nil
}

// Stop flushes and stops every cached publisher.
func (s *PubSubSender) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for topic, pub := range s.topics {
		pub.Stop()
		delete(s.topics, topic)
	}
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return permanentError{err: err} }

func isPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
