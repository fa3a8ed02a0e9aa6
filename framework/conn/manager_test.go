package conn

import (
	"context"
	"encoding/json"
	"testing"

	"tai16/framework/bridge"
	"tai16/framework/game"
	"tai16/framework/stream"
)

// fakePresence records registrations so the presence write path can be
// asserted without redis.
type fakePresence struct {
	registered   []string
	unregistered []string
}

func (p *fakePresence) Register(ctx context.Context, playerID, connID string) error {
	p.registered = append(p.registered, playerID+"/"+connID)
	return nil
}

func (p *fakePresence) Unregister(ctx context.Context, playerID, connID string) error {
	p.unregistered = append(p.unregistered, playerID+"/"+connID)
	return nil
}

// addConn registers a connection without a live websocket; Send only
// touches the write channel so delivery can be asserted from the buffer.
func addConn(m *Manager, connID, playerID string) *Connection {
	c := &Connection{
		ConnID:    connID,
		PlayerID:  playerID,
		manager:   m,
		writeChan: make(chan []byte, writeChanSize),
		closeChan: make(chan struct{}),
	}
	bucket := m.bucketOf(connID)
	bucket.Lock()
	bucket.conns[connID] = c
	bucket.Unlock()
	return c
}

func drain(c *Connection) [][]byte {
	var out [][]byte
	for {
		select {
		case data := <-c.writeChan:
			out = append(out, data)
		default:
			return out
		}
	}
}

func newTestManager() (*Manager, *fakePresence) {
	store := game.NewMemoryTableStore()
	registry := game.NewRegistry(&game.Deps{Store: store})
	b := bridge.NewBridge(registry, store, &discardingDelivery{}, nil)
	presence := &fakePresence{}
	return NewManager(context.Background(), b, presence), presence
}

type discardingDelivery struct{}

func (discardingDelivery) Deliver(pkt *stream.OutboundPacket) error { return nil }

func TestDeliverSocketTarget(t *testing.T) {
	m, _ := newTestManager()
	a := addConn(m, "c1", "p1")
	b := addConn(m, "c2", "p2")

	err := m.Deliver(&stream.OutboundPacket{
		Kind:   stream.TargetSocket,
		ConnID: "c1",
		Routes: []string{"rejected", "serverEvent"},
		Data:   []byte(`{"type":"REJECTED"}`),
	})
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}

	frames := drain(a)
	if len(frames) != 2 {
		t.Fatalf("expected one frame per route, got %d", len(frames))
	}
	var msg bridge.LegacyMessage
	if err := json.Unmarshal(frames[0], &msg); err != nil {
		t.Fatalf("bad frame: %v", err)
	}
	if msg.Event != "rejected" {
		t.Fatalf("expected rejected route first, got %s", msg.Event)
	}
	if got := drain(b); len(got) != 0 {
		t.Fatalf("socket target must not leak to other connections")
	}
}

func TestDeliverTableBroadcast(t *testing.T) {
	m, _ := newTestManager()
	a := addConn(m, "c1", "p1")
	b := addConn(m, "c2", "p2")
	outsider := addConn(m, "c3", "p3")
	m.joinTable("c1", "t1")
	m.joinTable("c2", "t1")

	err := m.Deliver(&stream.OutboundPacket{
		Kind:    stream.TargetTable,
		TableID: "t1",
		Routes:  []string{"discarded", "serverEvent"},
		Data:    []byte(`{"type":"DISCARDED"}`),
	})
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if len(drain(a)) != 2 || len(drain(b)) != 2 {
		t.Fatalf("every table member must receive the broadcast")
	}
	if len(drain(outsider)) != 0 {
		t.Fatalf("broadcast must not reach connections outside the table")
	}
}

func TestRemoveUnregistersPresence(t *testing.T) {
	m, presence := newTestManager()
	c := addConn(m, "c1", "p1")

	m.remove(c)
	if len(presence.unregistered) != 1 || presence.unregistered[0] != "p1/c1" {
		t.Fatalf("expected presence unregistration for p1/c1, got %v", presence.unregistered)
	}
	if m.connByID("c1") != nil {
		t.Fatalf("removed connection must leave the buckets")
	}
}

func TestConnectionCount(t *testing.T) {
	m, _ := newTestManager()
	addConn(m, "c1", "p1")
	addConn(m, "c2", "p2")
	if m.ConnectionCount() != 2 {
		t.Fatalf("expected 2 connections, got %d", m.ConnectionCount())
	}
}
