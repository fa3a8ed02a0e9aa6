package node

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"tai16/common/log"
	"tai16/framework/stream"
)

// 下行主题：不同目标种类各占一个前缀，connector 节点按前缀订阅
const (
	subjectConnPrefix  = "connector.conn."
	subjectTablePrefix = "connector.table."
)

// NatsPublisher 把下行包发布到 NATS，供跨进程部署的 connector 消费
type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(url string) (*NatsPublisher, error) {
	log.Info("nats 下行通道正在连接, url:%s", url)
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats 连接错误: %w", err)
	}
	log.Info("nats 下行通道连接成功, url:%s", url)
	return &NatsPublisher{conn: conn}, nil
}

func (p *NatsPublisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Deliver 按目标种类选主题发布
func (p *NatsPublisher) Deliver(pkt *stream.OutboundPacket) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}

	var subject string
	switch pkt.Kind {
	case stream.TargetSocket:
		subject = subjectConnPrefix + pkt.ConnID
	case stream.TargetTable:
		subject = subjectTablePrefix + pkt.TableID
	default:
		return fmt.Errorf("未知投递目标: %v", pkt.Kind)
	}

	data, err := json.Marshal(pkt)
	if err != nil {
		return fmt.Errorf("下行包序列化失败: %w", err)
	}
	return p.conn.Publish(subject, data)
}

func (p *NatsPublisher) Close() {
	if p.conn == nil {
		return
	}
	p.conn.Close()
	log.Info("NATS 连接已关闭")
}
