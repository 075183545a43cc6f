package bus

import "testing"

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New()
	id1, ch1 := b.Subscribe(1)
	id2, ch2 := b.Subscribe(1)
	defer b.Unsubscribe(id1)
	defer b.Unsubscribe(id2)

	b.Publish(Event{Kind: KindTransactionsChanged})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Kind != KindTransactionsChanged {
				t.Fatalf("subscriber %d got kind %q", i+1, ev.Kind)
			}
			if ev.At.IsZero() {
				t.Fatalf("subscriber %d got zero timestamp", i+1)
			}
		default:
			t.Fatalf("subscriber %d received nothing", i+1)
		}
	}
}

func TestPublishSkipsFullSubscriber(t *testing.T) {
	b := New()
	id, ch := b.Subscribe(1)
	defer b.Unsubscribe(id)

	// Fill the buffer, then publish twice more; must not block.
	b.Publish(Event{Kind: KindBudgetsChanged})
	b.Publish(Event{Kind: KindBudgetsChanged})
	b.Publish(Event{Kind: KindBudgetsChanged})

	if len(ch) != 1 {
		t.Fatalf("buffered events = %d, want 1", len(ch))
	}
}

func TestUnsubscribedReceivesNothing(t *testing.T) {
	b := New()
	id, ch := b.Subscribe(1)
	b.Unsubscribe(id)

	b.Publish(Event{Kind: KindTransactionsChanged})

	if len(ch) != 0 {
		t.Fatal("unsubscribed channel still received an event")
	}
}
