package notify

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postPayload struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func newTestHub(buffer int) *Hub {
	logger, _ := test.NewNullLogger()
	return NewHub(logger, buffer)
}

func decodeFrame(t *testing.T, frame []byte) (string, postPayload) {
	t.Helper()
	var event struct {
		Event string      `json:"event"`
		Data  postPayload `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &event))
	return event.Event, event.Data
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	hub := newTestHub(4)
	clients := []*Client{hub.Register(), hub.Register(), hub.Register()}
	assert.Equal(t, 3, hub.Count())

	hub.Broadcast("newPost", postPayload{ID: 7, Title: "Hello"})

	for _, client := range clients {
		select {
		case frame := <-client.Send():
			event, payload := decodeFrame(t, frame)
			assert.Equal(t, "newPost", event)
			assert.Equal(t, int64(7), payload.ID)
			assert.Equal(t, "Hello", payload.Title)
		default:
			t.Fatalf("client %s received nothing", client.ID)
		}
		assert.Empty(t, client.Send(), "exactly one frame per broadcast")
	}
}

func TestUnregister(t *testing.T) {
	hub := newTestHub(4)
	gone := hub.Register()
	stays := hub.Register()

	hub.Unregister(gone)
	hub.Unregister(gone)
	hub.Unregister(nil)
	assert.Equal(t, 1, hub.Count())

	_, open := <-gone.Send()
	assert.False(t, open, "queue is closed on unregister")

	hub.Broadcast("newPost", postPayload{ID: 1})
	assert.Len(t, stays.Send(), 1)
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := newTestHub(1)
	slow := hub.Register()
	fast := hub.Register()

	hub.Broadcast("newPost", postPayload{ID: 1})
	<-fast.Send()
	hub.Broadcast("newPost", postPayload{ID: 2})

	assert.Equal(t, 1, hub.Count())
	frame, ok := <-slow.Send()
	require.True(t, ok, "queued frame is still delivered")
	_, payload := decodeFrame(t, frame)
	assert.Equal(t, int64(1), payload.ID)
	_, ok = <-slow.Send()
	assert.False(t, ok)

	frame = <-fast.Send()
	_, payload = decodeFrame(t, frame)
	assert.Equal(t, int64(2), payload.ID)
}

func TestClose(t *testing.T) {
	hub := newTestHub(4)
	client := hub.Register()

	hub.Close()
	hub.Close()

	_, open := <-client.Send()
	assert.False(t, open)
	assert.Zero(t, hub.Count())
	assert.Nil(t, hub.Register())

	hub.Broadcast("newPost", postPayload{ID: 1})
	hub.Unregister(client)
}

func TestUnencodablePayload(t *testing.T) {
	logger, hook := test.NewNullLogger()
	hub := NewHub(logger, 4)
	client := hub.Register()

	hub.Broadcast("newPost", make(chan int))

	assert.Empty(t, client.Send())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "failed to encode event", hook.LastEntry().Message)
}

func TestConcurrentUse(t *testing.T) {
	hub := newTestHub(8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := hub.Register()
			for j := 0; j < 10; j++ {
				hub.Broadcast("newPost", postPayload{ID: int64(j)})
			}
			hub.Unregister(client)
			for range client.Send() {
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, hub.Count())
}
