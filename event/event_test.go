// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/internal/test/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEventBusSingleSubscriber(t *testing.T) {
	var testEvtData int = 999
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, testEvtData))
	select {
	case evt, ok := <-subCh:
		require.True(t, ok, "event channel closed unexpectedly")
		data, ok := evt.Data.(int)
		require.True(t, ok, "event data was not of expected type")
		assert.Equal(t, testEvtData, data)
		assert.Equal(t, testEvtType, evt.Type)
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for event")
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	var testEvtData int = 999
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, testEvtData))
	for _, ch := range []<-chan event.Event{sub1Ch, sub2Ch} {
		evt := testutil.RequireReceive(t, ch, time.Second, "subscriber event")
		assert.Equal(t, testEvtData, evt.Data)
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	select {
	case _, ok := <-subCh:
		assert.False(t, ok, "received unexpected event after unsubscribe")
	case <-time.After(1 * time.Second):
		t.Fatalf("subscriber channel was not closed")
	}
}

func TestEventBusSubscribeFuncOrdering(t *testing.T) {
	var testEvtType event.EventType = "test.ordered"
	eb := event.NewEventBus(nil, nil)
	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	wg.Add(50)
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		mu.Lock()
		got = append(got, evt.Data.(int))
		mu.Unlock()
		wg.Done()
	})
	for i := range 50 {
		eb.Publish(testEvtType, event.NewEvent(testEvtType, i))
	}
	wg.Wait()
	eb.Stop()
	require.Len(t, got, 50)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestEventBusPublishAsync(t *testing.T) {
	var testEvtType event.EventType = "test.async"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	require.True(
		t,
		eb.PublishAsync(testEvtType, event.NewEvent(testEvtType, "hello")),
	)
	evt := testutil.RequireReceive(t, subCh, time.Second, "async event")
	assert.Equal(t, "hello", evt.Data)
}

func TestEventBusStopIsFinal(t *testing.T) {
	var testEvtType event.EventType = "test.stop"
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe(testEvtType)
	eb.Stop()
	eb.Stop()
	_, ok := <-subCh
	assert.False(t, ok, "subscriber channel should be closed after Stop")
	assert.False(
		t,
		eb.PublishAsync(testEvtType, event.NewEvent(testEvtType, 1)),
	)
	// Publish after Stop has no subscribers and must not block
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
}

type failingSubscriber struct {
	mu     sync.Mutex
	closed bool
}

func (f *failingSubscriber) Deliver(event.Event) error {
	panic("boom")
}

func (f *failingSubscriber) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func TestEventBusFailingSubscriberRemoved(t *testing.T) {
	var testEvtType event.EventType = "test.failing"
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	defer eb.Stop()
	sub := &failingSubscriber{}
	eb.RegisterSubscriber(testEvtType, sub)
	_, okCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	<-okCh
	sub.mu.Lock()
	assert.True(t, sub.closed, "failing subscriber should be closed")
	sub.mu.Unlock()
	// A second publish only reaches the healthy subscriber
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 2))
	evt := <-okCh
	assert.Equal(t, 2, evt.Data)
	expected := `
# HELP ballot_event_delivery_errors_total total event delivery errors, by event type and subscriber kind
# TYPE ballot_event_delivery_errors_total counter
ballot_event_delivery_errors_total{kind="custom",type="test.failing"} 1
# HELP ballot_event_published_total total events published, by event type
# TYPE ballot_event_published_total counter
ballot_event_published_total{type="test.failing"} 2
`
	require.NoError(
		t,
		promtestutil.GatherAndCompare(
			reg,
			strings.NewReader(expected),
			"ballot_event_delivery_errors_total",
			"ballot_event_published_total",
		),
	)
}
