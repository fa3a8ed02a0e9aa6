package stream

// TargetKind 下行投递目标
// 按玩家的多端投递在桥接层经在线表展开成逐连接投递，线上只有两种目标
type TargetKind int

const (
	TargetSocket TargetKind = iota // 仅回给指定连接
	TargetTable                    // 广播给加入该桌的全部连接
)

func (k TargetKind) String() string {
	switch k {
	case TargetSocket:
		return "socket"
	case TargetTable:
		return "table"
	default:
		return "unknown"
	}
}

// OutboundPacket 一次下行投递
// Routes 是旧协议事件名列表，同一份数据按每个事件名各发一次
type OutboundPacket struct {
	Kind    TargetKind `json:"kind"`
	ConnID  string     `json:"connId,omitempty"`
	TableID string     `json:"tableId,omitempty"`
	Routes  []string   `json:"routes"`
	Data    []byte     `json:"data"`
}
