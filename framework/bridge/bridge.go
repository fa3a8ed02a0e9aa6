package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"tai16/common/log"
	"tai16/framework/game"
	"tai16/framework/protocol"
	"tai16/framework/stream"
)

// Delivery 下行投递通道（本地 ws 管理器或 NATS 发布器）
type Delivery interface {
	Deliver(pkt *stream.OutboundPacket) error
}

// SettlementRecorder 结算落库
type SettlementRecorder interface {
	Save(ctx context.Context, tableID string, view *protocol.SettlementView) error
}

// LegacyMessage 旧协议信封：事件名 + 原始负载
type LegacyMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodedIntent 解码结果：路由字段 + 类型化意图
type DecodedIntent struct {
	TableID  string
	PlayerID string
	Intent   protocol.Intent
}

// Bridge 新旧协议之间的翻译层
// 上行：旧事件名 -> 类型化 Intent -> 引擎队列
// 下行：类型化 Event -> 旧事件名 + 投递目标
type Bridge struct {
	registry *game.Registry
	store    game.TableStore
	delivery Delivery
	recorder SettlementRecorder
}

func NewBridge(registry *game.Registry, store game.TableStore, delivery Delivery, recorder SettlementRecorder) *Bridge {
	return &Bridge{
		registry: registry,
		store:    store,
		delivery: delivery,
		recorder: recorder,
	}
}

// 旧客户端的鸣牌词汇 -> 协议词汇
func claimOfLegacyWire(s string) protocol.ClaimType {
	switch s {
	case "pong":
		return protocol.ClaimPon
	case "chi":
		return protocol.ClaimChi
	case "kong":
		return protocol.ClaimKan
	case "hu":
		return protocol.ClaimHu
	default:
		return protocol.ClaimPass
	}
}

type legacyEnvelope struct {
	TableID   string   `json:"tableId"`
	PlayerID  string   `json:"playerId"`
	Type      string   `json:"type"`
	Tile      string   `json:"tile"`
	Claim     string   `json:"claim"`
	Tiles     []string `json:"tiles"`
	ClaimType string   `json:"claimType"`
	ClientSeq *int64   `json:"clientSeq"`
}

// Decode 旧事件 -> 意图
// 返回 false 表示这个事件名不归本层处理（不是错误）
func Decode(raw []byte) (DecodedIntent, bool, error) {
	var msg LegacyMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return DecodedIntent{}, false, fmt.Errorf("旧协议信封解析失败: %w", err)
	}
	var env legacyEnvelope
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			return DecodedIntent{}, false, fmt.Errorf("旧协议负载解析失败: %w", err)
		}
	}

	var intent protocol.Intent
	switch msg.Event {
	case "clientEvent":
		// 通用信封：负载本身就是意图的形状，剥掉路由字段
		intent = protocol.Intent{
			Type:      protocol.IntentType(env.Type),
			Tile:      env.Tile,
			Tiles:     env.Tiles,
			ClientSeq: env.ClientSeq,
		}
		if env.Claim != "" {
			intent.Claim = protocol.ClaimType(env.Claim)
		}
	case "discardTile":
		intent = protocol.Intent{
			Type:      protocol.IntentDiscard,
			Tile:      env.Tile,
			ClientSeq: env.ClientSeq,
		}
	case "executeClaim":
		legacy := env.ClaimType
		if legacy == "" {
			legacy = env.Claim
		}
		intent = protocol.Intent{
			Type:      protocol.IntentClaim,
			Claim:     claimOfLegacyWire(legacy),
			Tiles:     env.Tiles,
			ClientSeq: env.ClientSeq,
		}
	default:
		return DecodedIntent{}, false, nil
	}

	// 不在这里卡掉未知意图类型：交给引擎用 REJECTED{UNSUPPORTED_INTENT} 回应，
	// 旧客户端至少能拿到一份快照对齐状态
	return DecodedIntent{TableID: env.TableID, PlayerID: env.PlayerID, Intent: intent}, true, nil
}

// HandleInbound 上行入口：解码后把整个处理过程排进对应桌的队列
// 返回的通道在处理完成后关闭，调用方可以借此做背压
func (b *Bridge) HandleInbound(ctx context.Context, connID string, raw []byte) (<-chan struct{}, error) {
	decoded, ok, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		done := make(chan struct{})
		close(done)
		return done, nil
	}
	return b.HandleDecoded(ctx, connID, decoded)
}

// HandleDecoded 已解码意图的处理入口，供连接层在自行解码后调用
func (b *Bridge) HandleDecoded(ctx context.Context, connID string, decoded DecodedIntent) (<-chan struct{}, error) {
	if decoded.TableID == "" || decoded.PlayerID == "" {
		return nil, fmt.Errorf("旧协议事件缺少路由字段, tableId=%q playerId=%q", decoded.TableID, decoded.PlayerID)
	}

	engine := b.registry.GetOrCreate(decoded.TableID, ctx)
	done := engine.Enqueue(func() {
		events := engine.ApplyIntent(decoded.PlayerID, decoded.Intent)
		applied := true
		for _, ev := range events {
			if ev.Type == protocol.EventRejected {
				applied = false
			}
			b.dispatch(ctx, connID, decoded.TableID, ev)
		}
		// 被拒绝的意图没有改写牌桌，不重算响应窗口
		if applied {
			b.pushClaimWindows(engine, decoded.TableID)
		}
	})
	return done, nil
}

// PushServerEvents 外部层（房间逻辑、超时仲裁）经由桌队列推送事件
// build 在队列内执行，返回未编号的事件，这里统一编号并投递
func (b *Bridge) PushServerEvents(ctx context.Context, tableID string, build func() []protocol.Event) <-chan struct{} {
	engine := b.registry.GetOrCreate(tableID, ctx)
	return engine.Enqueue(func() {
		for _, ev := range build() {
			bumped, err := engine.Bump(ev)
			if err != nil {
				log.Error("%v", err)
				continue
			}
			b.dispatch(ctx, "", tableID, bumped)
		}
		b.pushClaimWindows(engine, tableID)
	})
}

// 出站旧事件名；每个事件另带一条 serverEvent 通用路由
var legacyRoutes = map[protocol.EventType]string{
	protocol.EventWelcome:       "welcome",
	protocol.EventTableSnapshot: "tableSnapshot",
	protocol.EventTurnStart:     "turnStart",
	protocol.EventDiscarded:     "discarded",
	protocol.EventClaimWindow:   "claimWindow",
	protocol.EventClaimResolved: "claimResolved",
	protocol.EventHandSync:      "handSync",
	protocol.EventScoreSettled:  "scoreSettled",
	protocol.EventTableDissolve: "tableDissolved",
	protocol.EventRejected:      "rejected",
	protocol.EventPong:          "pong",
}

func routesFor(t protocol.EventType) []string {
	name, ok := legacyRoutes[t]
	if !ok {
		return []string{"serverEvent"}
	}
	return []string{name, "serverEvent"}
}

// dispatch 单个事件的目标判定与投递
// 拒绝、快照、手牌同步只回来源连接；出牌、回合、仲裁结果、结算、解散全桌广播
func (b *Bridge) dispatch(ctx context.Context, connID, tableID string, ev protocol.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error("桌 %s 事件 %s 序列化失败: %v", tableID, ev.Type, err)
		return
	}

	switch ev.Type {
	case protocol.EventDiscarded, protocol.EventTurnStart, protocol.EventClaimResolved,
		protocol.EventScoreSettled, protocol.EventTableDissolve:
		b.deliver(&stream.OutboundPacket{
			Kind:    stream.TargetTable,
			TableID: tableID,
			Routes:  routesFor(ev.Type),
			Data:    data,
		})
	default:
		b.deliver(&stream.OutboundPacket{
			Kind:   stream.TargetSocket,
			ConnID: connID,
			Routes: routesFor(ev.Type),
			Data:   data,
		})
	}

	if ev.Type == protocol.EventScoreSettled && b.recorder != nil && ev.Settlement != nil {
		if err := b.recorder.Save(ctx, tableID, ev.Settlement); err != nil {
			log.Error("桌 %s 结算落库失败: %v", tableID, err)
		}
	}
	if ev.Type == protocol.EventTableDissolve {
		b.registry.Remove(tableID)
	}
}

// pushClaimWindows 在每次成功应用意图之后重算响应窗口
// 只看当前优先档：把该档的选择按座位分组，逐个玩家推送
// 重复推送同一窗口是预期行为，客户端按 serverSeq 去重
func (b *Bridge) pushClaimWindows(engine *game.TableEngine, tableID string) {
	table, ok := b.store.GetTable(tableID)
	if !ok || table.Claiming == nil || table.Claiming.Resolved {
		return
	}
	claiming := table.Claiming

	perSeat := make(map[int][]protocol.ClaimOption)
	for _, opt := range claiming.Options {
		if opt.Priority != claiming.CurrentPriority {
			continue
		}
		if !claiming.Pending[opt.Seat] {
			continue
		}
		perSeat[opt.Seat] = append(perSeat[opt.Seat], protocol.ClaimOption{
			Claim: game.ProtocolClaimOf(opt.Claim),
			Tiles: opt.Tiles,
		})
	}

	for seat, options := range perSeat {
		player := table.PlayerAt(seat)
		if player == nil {
			continue
		}
		ev, err := engine.Bump(protocol.Event{
			Type:           protocol.EventClaimWindow,
			Tile:           claiming.DiscardTile,
			OptionsForMe:   options,
			DeadlinePolicy: table.Settings.DeadlinePolicy,
			DeadlineAtMs:   claiming.DeadlineAtMs,
		})
		if err != nil {
			log.Error("%v", err)
			continue
		}
		data, err := json.Marshal(ev)
		if err != nil {
			log.Error("桌 %s 响应窗口序列化失败: %v", tableID, err)
			continue
		}
		// 多端在线：按玩家查在线连接集合，逐连接投递
		connIDs := engine.Presence().SocketIDsByPlayerID(player.ID)
		if len(connIDs) == 0 {
			log.Warn("桌 %s 玩家 %s 当前无在线连接，响应窗口靠快照补偿", tableID, player.ID)
			continue
		}
		for _, connID := range connIDs {
			b.deliver(&stream.OutboundPacket{
				Kind:   stream.TargetSocket,
				ConnID: connID,
				Routes: routesFor(protocol.EventClaimWindow),
				Data:   data,
			})
		}
	}
}

func (b *Bridge) deliver(pkt *stream.OutboundPacket) {
	if err := b.delivery.Deliver(pkt); err != nil {
		log.Error("下行投递失败, kind=%s routes=%v: %v", pkt.Kind, pkt.Routes, err)
	}
}
