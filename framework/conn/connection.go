package conn

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tai16/common/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	writeChanSize  = 1024
)

// Connection 一条玩家长连接
type Connection struct {
	ConnID   string
	PlayerID string

	ws        *websocket.Conn
	manager   *Manager
	writeChan chan []byte
	closeChan chan struct{}
	closeOnce sync.Once
}

func newConnection(connID, playerID string, ws *websocket.Conn, manager *Manager) *Connection {
	return &Connection{
		ConnID:    connID,
		PlayerID:  playerID,
		ws:        ws,
		manager:   manager,
		writeChan: make(chan []byte, writeChanSize),
		closeChan: make(chan struct{}),
	}
}

func (c *Connection) run() {
	go c.writePump()
	c.readPump()
}

func (c *Connection) readPump() {
	defer c.Close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("连接 %s 异常断开: %v", c.ConnID, err)
			}
			return
		}
		c.manager.handleInbound(c, data)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data, ok := <-c.writeChan:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn("连接 %s 写失败: %v", c.ConnID, err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeChan:
			return
		}
	}
}

// Send 非阻塞投递；写缓冲打满说明客户端已经跟不上，直接断开
func (c *Connection) Send(data []byte) {
	select {
	case c.writeChan <- data:
	case <-c.closeChan:
	default:
		log.Warn("连接 %s 写缓冲已满，强制断开", c.ConnID)
		c.Close()
	}
}

func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.closeChan)
		_ = c.ws.Close()
		c.manager.remove(c)
	})
}
