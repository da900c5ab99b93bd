// FilePath: internal/relay/hub_test.go
package relay

import (
	"fmt"
	"testing"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesCurrentSnapshotFirst(t *testing.T) {
	hub := NewHub()
	current := models.TelemetrySnapshot{Temperature: "21.5", Humidity: "40", Bulb: "OFF"}

	sub := hub.Subscribe(current)
	defer hub.Unsubscribe(sub)

	select {
	case got := <-sub.Updates():
		assert.Equal(t, current, got)
	default:
		t.Fatal("expected an immediate push on subscribe")
	}
}

func TestPublishReachesAllSubscribersInOrder(t *testing.T) {
	hub := NewHub()
	initial := models.TelemetrySnapshot{Temperature: "--", Humidity: "--", Bulb: "OFF"}

	subs := make([]*Subscriber, 3)
	for i := range subs {
		subs[i] = hub.Subscribe(initial)
		defer hub.Unsubscribe(subs[i])
	}

	mutations := make([]models.TelemetrySnapshot, 5)
	for i := range mutations {
		mutations[i] = models.TelemetrySnapshot{
			Temperature: fmt.Sprintf("%d", 20+i),
			Humidity:    "40",
			Bulb:        "ON",
		}
		hub.Publish(mutations[i])
	}

	for _, sub := range subs {
		// Connect-time push first, then one push per mutation, in order.
		got := <-sub.Updates()
		require.Equal(t, initial, got)
		for i := range mutations {
			got = <-sub.Updates()
			require.Equal(t, mutations[i], got, "mutation %d out of order", i)
		}
	}
}

func TestPublishIncludesMutatingSubscriber(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(models.TelemetrySnapshot{})
	defer hub.Unsubscribe(sub)

	<-sub.Updates() // drain the connect-time push

	update := models.TelemetrySnapshot{Temperature: "25", Humidity: "60", Bulb: "ON"}
	hub.Publish(update)

	assert.Equal(t, update, <-sub.Updates())
}

func TestSlowSubscriberDoesNotStallOthers(t *testing.T) {
	hub := NewHub()

	slow := hub.Subscribe(models.TelemetrySnapshot{})
	fast := hub.Subscribe(models.TelemetrySnapshot{})
	defer hub.Unsubscribe(slow)
	defer hub.Unsubscribe(fast)

	<-fast.Updates() // drain connect-time push; slow never reads

	// Overrun the slow subscriber's buffer by a wide margin. Publish must
	// not block even though nothing drains the slow channel, and the fast
	// subscriber keeps receiving every push in mutation order.
	for i := 0; i < subscriberBuffer*3; i++ {
		snap := models.TelemetrySnapshot{Temperature: fmt.Sprintf("%d", i), Humidity: "40"}
		hub.Publish(snap)
		assert.Equal(t, snap, <-fast.Updates())
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(models.TelemetrySnapshot{})

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub) // must not panic on double close

	assert.Equal(t, 0, hub.Count())

	// Publishing after unsubscribe must not panic either.
	hub.Publish(models.TelemetrySnapshot{Temperature: "20"})
}
