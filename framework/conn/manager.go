package conn

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tai16/common/log"
	"tai16/framework/bridge"
	"tai16/framework/stream"
)

const bucketCount = 32

// PresenceRegistry 在线连接登记；桥接层按玩家做多端投递时读这份在线表
type PresenceRegistry interface {
	Register(ctx context.Context, playerID, connID string) error
	Unregister(ctx context.Context, playerID, connID string) error
}

type connBucket struct {
	sync.RWMutex
	conns map[string]*Connection
}

// Manager 连接管理器
// 连接按 connID 哈希分片存放；另维护桌频道路由表
// 玩家到连接的对应关系只登记进在线表，不在本机重复建索引
type Manager struct {
	ctx      context.Context
	bridge   *bridge.Bridge
	presence PresenceRegistry

	upgrader   websocket.Upgrader
	buckets    []*connBucket
	bucketMask uint32

	routeLock sync.RWMutex
	tables    map[string]map[string]struct{} // tableID -> connIDs
}

func NewManager(ctx context.Context, b *bridge.Bridge, presence PresenceRegistry) *Manager {
	m := &Manager{
		ctx:      ctx,
		bridge:   b,
		presence: presence,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		buckets:    make([]*connBucket, bucketCount),
		bucketMask: bucketCount - 1,
		tables:     make(map[string]map[string]struct{}),
	}
	for i := range m.buckets {
		m.buckets[i] = &connBucket{conns: make(map[string]*Connection)}
	}
	return m
}

func (m *Manager) bucketOf(connID string) *connBucket {
	h := fnv.New32a()
	_, _ = h.Write([]byte(connID))
	return m.buckets[h.Sum32()&m.bucketMask]
}

// ServeWS 升级长连接；playerId 由握手参数带入
func (m *Manager) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "playerId 必填", http.StatusBadRequest)
		return
	}

	ws, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket 升级失败: %v", err)
		return
	}

	c := newConnection(uuid.New().String(), playerID, ws, m)

	bucket := m.bucketOf(c.ConnID)
	bucket.Lock()
	bucket.conns[c.ConnID] = c
	bucket.Unlock()

	if err := m.presence.Register(m.ctx, playerID, c.ConnID); err != nil {
		log.Warn("在线登记失败, player=%s conn=%s: %v", playerID, c.ConnID, err)
	}
	log.Info("连接建立, player=%s conn=%s", playerID, c.ConnID)

	c.run()
}

func (m *Manager) remove(c *Connection) {
	bucket := m.bucketOf(c.ConnID)
	bucket.Lock()
	delete(bucket.conns, c.ConnID)
	bucket.Unlock()

	m.routeLock.Lock()
	for tableID, set := range m.tables {
		delete(set, c.ConnID)
		if len(set) == 0 {
			delete(m.tables, tableID)
		}
	}
	m.routeLock.Unlock()

	if err := m.presence.Unregister(m.ctx, c.PlayerID, c.ConnID); err != nil {
		log.Warn("在线注销失败, player=%s conn=%s: %v", c.PlayerID, c.ConnID, err)
	}
	log.Info("连接关闭, player=%s conn=%s", c.PlayerID, c.ConnID)
}

// joinTable 连接加入桌频道；首条携带 tableId 的上行消息触发
func (m *Manager) joinTable(connID, tableID string) {
	m.routeLock.Lock()
	defer m.routeLock.Unlock()
	if m.tables[tableID] == nil {
		m.tables[tableID] = make(map[string]struct{})
	}
	m.tables[tableID][connID] = struct{}{}
}

func (m *Manager) handleInbound(c *Connection, raw []byte) {
	decoded, ok, err := bridge.Decode(raw)
	if err != nil {
		log.Warn("连接 %s 上行消息非法: %v", c.ConnID, err)
		return
	}
	if !ok {
		return
	}
	if decoded.PlayerID == "" {
		decoded.PlayerID = c.PlayerID
	}
	if decoded.TableID != "" {
		m.joinTable(c.ConnID, decoded.TableID)
	}
	if _, err := m.bridge.HandleDecoded(m.ctx, c.ConnID, decoded); err != nil {
		log.Warn("连接 %s 意图处理失败: %v", c.ConnID, err)
	}
}

// Deliver 下行投递
// 同一个包按 Routes 里的每个旧事件名各包装一次
func (m *Manager) Deliver(pkt *stream.OutboundPacket) error {
	conns := m.targets(pkt)
	if len(conns) == 0 {
		return nil
	}
	for _, route := range pkt.Routes {
		frame, err := json.Marshal(bridge.LegacyMessage{Event: route, Data: pkt.Data})
		if err != nil {
			return err
		}
		for _, c := range conns {
			c.Send(frame)
		}
	}
	return nil
}

func (m *Manager) targets(pkt *stream.OutboundPacket) []*Connection {
	switch pkt.Kind {
	case stream.TargetSocket:
		if c := m.connByID(pkt.ConnID); c != nil {
			return []*Connection{c}
		}
		return nil
	case stream.TargetTable:
		m.routeLock.RLock()
		ids := make([]string, 0, len(m.tables[pkt.TableID]))
		for id := range m.tables[pkt.TableID] {
			ids = append(ids, id)
		}
		m.routeLock.RUnlock()
		return m.connsByIDs(ids)
	default:
		return nil
	}
}

func (m *Manager) connByID(connID string) *Connection {
	bucket := m.bucketOf(connID)
	bucket.RLock()
	defer bucket.RUnlock()
	return bucket.conns[connID]
}

func (m *Manager) connsByIDs(ids []string) []*Connection {
	conns := make([]*Connection, 0, len(ids))
	for _, id := range ids {
		if c := m.connByID(id); c != nil {
			conns = append(conns, c)
		}
	}
	return conns
}

// ConnectionCount 当前连接数（监控用）
func (m *Manager) ConnectionCount() int {
	total := 0
	for _, b := range m.buckets {
		b.RLock()
		total += len(b.conns)
		b.RUnlock()
	}
	return total
}

// CloseAll 停机时断开全部连接
func (m *Manager) CloseAll() {
	for _, b := range m.buckets {
		b.RLock()
		conns := make([]*Connection, 0, len(b.conns))
		for _, c := range b.conns {
			conns = append(conns, c)
		}
		b.RUnlock()
		for _, c := range conns {
			c.Close()
		}
	}
}
