package websocket_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"photocritic/domain/critique"
	"photocritic/infrastructure/websocket"
)

type fakeConn struct {
	mu      sync.Mutex
	msgs    [][]byte
	closed  bool
	block   chan struct{}
	written chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{written: make(chan struct{}, 64)}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.msgs = append(f.msgs, data)
	f.mu.Unlock()
	f.written <- struct{}{}
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.written:
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
}

func TestPublishStatusReachesRoomOnly(t *testing.T) {
	hub := websocket.NewHub(4)
	photo := uuid.New()
	inRoom, elsewhere := newFakeConn(), newFakeConn()
	hub.Register(inRoom, uuid.New(), photo.String())
	hub.Register(elsewhere, uuid.New(), uuid.NewString())

	hub.PublishStatus(photo, critique.StateDefaultFallback, critique.ReasonTimeout)
	inRoom.wait(t)

	var msg websocket.StatusMessage
	inRoom.mu.Lock()
	err := json.Unmarshal(inRoom.msgs[0], &msg)
	inRoom.mu.Unlock()
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != "analysis_status" || msg.PhotoID != photo.String() || msg.State != critique.StateDefaultFallback || msg.Reason != critique.ReasonTimeout {
		t.Errorf("msg = %+v", msg)
	}

	select {
	case <-elsewhere.written:
		t.Error("client in another room received the message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := websocket.NewHub(1)
	room := uuid.NewString()
	slow := newFakeConn()
	slow.block = make(chan struct{})
	defer close(slow.block)
	hub.Register(slow, uuid.New(), room)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hub.Publish(room, map[string]int{"n": i})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow client")
	}

	if hub.RoomSize(room) != 0 {
		t.Errorf("slow client still registered")
	}
	slow.mu.Lock()
	closed := slow.closed
	slow.mu.Unlock()
	if !closed {
		t.Error("slow client connection not closed")
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := websocket.NewHub(0)
	conn := newFakeConn()
	hub.Register(conn, uuid.New(), "r")
	if hub.ClientCount() != 1 {
		t.Fatalf("count = %d", hub.ClientCount())
	}
	hub.Unregister(conn)
	hub.Unregister(conn)
	if hub.ClientCount() != 0 || hub.RoomSize("r") != 0 {
		t.Error("client not removed")
	}
	// publishing to an empty room is a no-op
	hub.Publish("r", "hello")
}

func TestSendTargetsOneClient(t *testing.T) {
	hub := websocket.NewHub(4)
	a, b := newFakeConn(), newFakeConn()
	hub.Register(a, uuid.New(), "r")
	hub.Register(b, uuid.New(), "r")

	if !hub.Send(a, map[string]string{"type": "pong"}) {
		t.Fatal("Send to a registered client failed")
	}
	a.wait(t)
	a.mu.Lock()
	got := string(a.msgs[0])
	a.mu.Unlock()
	if got != `{"type":"pong"}` {
		t.Errorf("message = %s", got)
	}

	select {
	case <-b.written:
		t.Error("Send reached another client in the room")
	case <-time.After(50 * time.Millisecond):
	}

	hub.Unregister(a)
	if hub.Send(a, "late") {
		t.Error("Send to an unregistered client reported success")
	}
}
