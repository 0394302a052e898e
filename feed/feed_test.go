package feed

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestNilServerIsSafe(t *testing.T) {
	var s *Server
	if err := s.Start(); err != nil {
		t.Errorf("nil start returned %v", err)
	}
	s.Broadcast(map[string]string{"type": "noop"})
	if s.ClientCount() != 0 {
		t.Error("nil server should have no clients")
	}
	if err := s.Close(); err != nil {
		t.Errorf("nil close returned %v", err)
	}
}

func TestBroadcastReachesSubscriber(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+s.Addr()+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Registration happens in the handler goroutine.
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.Broadcast(map[string]string{"type": "death", "cause": "starvation"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]string
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg["type"] != "death" || msg["cause"] != "starvation" {
		t.Errorf("got %v", msg)
	}
}

func TestDisconnectedClientIsDropped(t *testing.T) {
	s := NewServer("127.0.0.1:0")
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+s.Addr()+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
	conn.Close()

	// The read loop notices the close and deregisters.
	deadline = time.Now().Add(2 * time.Second)
	for s.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("closed subscriber never deregistered")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
