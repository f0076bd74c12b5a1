package pubsub

import "testing"

func TestPublishSubscribe(t *testing.T) {
	ps := NewPubSub[string]()
	a := ps.Subscribe("t")
	b := ps.Subscribe("t")
	other := ps.Subscribe("other")

	ps.Publish("t", "hello")

	for _, ch := range []<-chan string{a, b} {
		if got := <-ch; got != "hello" {
			t.Errorf("got %q, want hello", got)
		}
	}
	select {
	case v := <-other:
		t.Errorf("other topic received %q", v)
	default:
	}
}

func TestPublishDoesNotBlock(t *testing.T) {
	ps := NewPubSub[int]()
	ch := ps.Subscribe("t")
	for i := 0; i < subscriberBuffer*2; i++ {
		ps.Publish("t", i)
	}
	if len(ch) != subscriberBuffer {
		t.Errorf("buffered %d, want %d", len(ch), subscriberBuffer)
	}
	if v, ok := ps.Last("t"); !ok || v != subscriberBuffer*2-1 {
		t.Errorf("Last = %d, %v", v, ok)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	ps := NewPubSub[string]()
	ch := ps.Subscribe("t")
	ps.Unsubscribe("t", ch)

	if _, open := <-ch; open {
		t.Error("channel still open after Unsubscribe")
	}
	ps.Publish("t", "after")
	ps.Unsubscribe("t", ch)
}

func TestLastEmpty(t *testing.T) {
	if _, ok := NewPubSub[string]().Last("t"); ok {
		t.Error("Last on an empty topic reported a value")
	}
}
