// Package pubsub fans out published values to topic subscribers.
package pubsub

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

const TopicLeaderboard = "leaderboard"

const subscriberBuffer = 8

type PubSub[T any] struct {
	mu   sync.Mutex
	subs map[string][]chan T
	last map[string]T
}

func NewPubSub[T any]() *PubSub[T] {
	return &PubSub[T]{
		subs: make(map[string][]chan T),
		last: make(map[string]T),
	}
}

func (ps *PubSub[T]) Subscribe(topic string) <-chan T {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ch := make(chan T, subscriberBuffer)
	ps.subs[topic] = append(ps.subs[topic], ch)
	return ch
}

// Unsubscribe removes and closes ch. Unknown channels are ignored.
func (ps *PubSub[T]) Unsubscribe(topic string, ch <-chan T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	subs := ps.subs[topic]
	for i, sub := range subs {
		if sub == ch {
			ps.subs[topic] = append(subs[:i], subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// Publish never blocks: a subscriber whose buffer is full misses the value.
func (ps *PubSub[T]) Publish(topic string, data T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.last[topic] = data
	for _, ch := range ps.subs[topic] {
		select {
		case ch <- data:
		default:
			log.WithField("topic", topic).Debug("subscriber is behind, dropping value")
		}
	}
}

// Last returns the most recently published value on topic.
func (ps *PubSub[T]) Last(topic string) (T, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	v, ok := ps.last[topic]
	return v, ok
}
