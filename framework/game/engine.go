package game

import (
	"context"
	"fmt"
	"sort"

	"tai16/common/log"
	"tai16/framework/protocol"
)

// Deps 引擎依赖束：牌桌读取、规则层动作、在线查询
type Deps struct {
	Store    TableStore
	Actions  LegacyActions
	Presence Presence
}

// Job 一个串行执行的工作单元
type Job func()

const jobQueueSize = 256

// TableEngine 单桌引擎
// 每桌一个实例，独占一条串行队列、一个 serverSeq 计数器
// 和按玩家缓存的最近一次意图结果
//
// ApplyIntent / SnapshotFor / Bump 只允许在本引擎的队列内调用；
// 牌桌的全部改写都必须经由这条队列，队列外的改写会破坏单写者约定
type TableEngine struct {
	tableID string
	deps    *Deps
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    chan Job

	// 以下状态只在队列 goroutine 内读写
	serverSeq  int64
	lastSeq    map[string]int64
	lastEvents map[string][]protocol.Event
}

func newTableEngine(ctx context.Context, tableID string, deps *Deps) *TableEngine {
	ctx, cancel := context.WithCancel(ctx)
	e := &TableEngine{
		tableID:    tableID,
		deps:       deps,
		ctx:        ctx,
		cancel:     cancel,
		jobs:       make(chan Job, jobQueueSize),
		lastSeq:    make(map[string]int64),
		lastEvents: make(map[string][]protocol.Event),
	}
	go e.run()
	return e
}

// run 队列主循环：同桌任务严格按提交顺序执行，不同桌完全独立
func (e *TableEngine) run() {
	for {
		select {
		case <-e.ctx.Done():
			return
		case job := <-e.jobs:
			e.safeRun(job)
		}
	}
}

// safeRun 单个任务的失败不能拖垮后续任务
func (e *TableEngine) safeRun(job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("桌 %s 工作单元 panic: %v", e.tableID, r)
		}
	}()
	job()
}

// Enqueue 调度一个任务，严格排在此前所有任务之后执行
// 返回的通道在任务结束（含 panic 被拦截）后关闭
func (e *TableEngine) Enqueue(job Job) <-chan struct{} {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		job()
	}
	select {
	case e.jobs <- wrapped:
	case <-e.ctx.Done():
		close(done)
	}
	return done
}

// QueueDepth 当前积压任务数（监控用）
func (e *TableEngine) QueueDepth() int {
	return len(e.jobs)
}

// Presence 多端投递所需的在线查询，桥接层按玩家展开到各连接
func (e *TableEngine) Presence() Presence {
	return e.deps.Presence
}

func (e *TableEngine) close() {
	e.cancel()
}

// Bump 分配下一个 serverSeq 并做出站校验
// 这是 serverSeq 唯一的递增点；校验失败不消耗序号
func (e *TableEngine) Bump(ev protocol.Event) (protocol.Event, error) {
	next := e.serverSeq
	if ev.Type != protocol.EventPong && ev.Type != protocol.EventWelcome {
		next = e.serverSeq + 1
		ev.ServerSeq = next
	}
	if err := protocol.ValidateOutbound(ev); err != nil {
		return protocol.Event{}, fmt.Errorf("桌 %s 出站事件校验失败: %w", e.tableID, err)
	}
	e.serverSeq = next
	return ev, nil
}

// bumpOrDrop 校验失败按内部缺陷记录，事件丢弃
func (e *TableEngine) bumpOrDrop(ev protocol.Event) (protocol.Event, bool) {
	out, err := e.Bump(ev)
	if err != nil {
		log.Error("%v", err)
		return protocol.Event{}, false
	}
	return out, true
}

// SnapshotFor 给某玩家构造 TABLE_SNAPSHOT
// 牌桌不存在时返回 REJECTED{TABLE_NOT_FOUND}
func (e *TableEngine) SnapshotFor(playerID string) protocol.Event {
	table, ok := e.deps.Store.GetTable(e.tableID)
	if !ok {
		ev, _ := e.bumpOrDrop(protocol.Event{
			Type:    protocol.EventRejected,
			Code:    protocol.RejectTableNotFound,
			Message: fmt.Sprintf("牌桌 %s 不存在", e.tableID),
		})
		return ev
	}
	ev, _ := e.bumpOrDrop(e.snapshotEvent(table, playerID))
	return ev
}

// snapshotEvent 构造快照事件（未编号）
// 回合进行中且尚未出牌时，当前行动玩家的暗牌数对外减一，
// 对应他摸进却尚未亮出的那张牌
func (e *TableEngine) snapshotEvent(table *Table, playerID string) protocol.Event {
	seats := make([]protocol.SeatView, 0, len(table.Players))
	for _, p := range table.Players {
		if p == nil {
			continue
		}
		handCount := len(p.Hand)
		if table.Phase == PhasePlaying && p.Seat == table.Turn && !table.TurnDiscarded && handCount > 0 {
			handCount--
		}
		melds := make([]protocol.MeldView, 0, len(p.Melds))
		for _, m := range p.Melds {
			melds = append(melds, protocol.MeldView{Kind: m.Kind, Tiles: m.Tiles, From: m.From})
		}
		seats = append(seats, protocol.SeatView{
			PlayerID:  p.ID,
			Seat:      p.Seat,
			HandCount: handCount,
			Melds:     melds,
			Discards:  p.Discards,
			Flowers:   p.Flowers,
			Ready:     p.Ready,
		})
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i].Seat < seats[j].Seat })

	snap := &protocol.TableSnapshot{
		TableID:    table.ID,
		Phase:      CanonicalPhase(table.Phase),
		DealerSeat: table.DealerIndex,
		Turn:       table.Turn,
		WallCount:  len(table.Wall),
		Seats:      seats,
	}
	if seat, ok := table.SeatOf(playerID); ok {
		if me := table.PlayerAt(seat); me != nil {
			snap.MyHand = me.Hand
			snap.MyFlowers = me.Flowers
		}
	}
	return protocol.Event{Type: protocol.EventTableSnapshot, Snapshot: snap}
}

// ApplyIntent 核心状态迁移
// 幂等：clientSeq 等于缓存值时原样返回缓存事件，不产生新的 serverSeq
func (e *TableEngine) ApplyIntent(playerID string, intent protocol.Intent) []protocol.Event {
	// 心跳不进幂等缓存也不占序号
	if intent.Type == protocol.IntentPing {
		return []protocol.Event{{Type: protocol.EventPong}}
	}

	if intent.ClientSeq != nil {
		if last, ok := e.lastSeq[playerID]; ok {
			if *intent.ClientSeq == last {
				return e.lastEvents[playerID]
			}
			if *intent.ClientSeq < last {
				// 过期重发：拒绝且不回写缓存
				return e.rejectedEvents(playerID, intent, protocol.RejectDuplicate,
					fmt.Sprintf("clientSeq %d 早于已处理的 %d", *intent.ClientSeq, last))
			}
		}
	}

	events := e.applyIntentLocked(playerID, intent)

	if intent.ClientSeq != nil {
		e.lastSeq[playerID] = *intent.ClientSeq
		e.lastEvents[playerID] = events
	}
	return events
}

func (e *TableEngine) applyIntentLocked(playerID string, intent protocol.Intent) []protocol.Event {
	table, ok := e.deps.Store.GetTable(e.tableID)
	if !ok {
		return e.bumpAll(protocol.Event{
			Type:      protocol.EventRejected,
			Code:      protocol.RejectTableNotFound,
			Message:   fmt.Sprintf("牌桌 %s 不存在", e.tableID),
			ClientSeq: intent.ClientSeq,
		})
	}
	seat, seated := table.SeatOf(playerID)
	if !seated {
		return e.bumpAll(protocol.Event{
			Type:      protocol.EventRejected,
			Code:      protocol.RejectNotInTable,
			Message:   fmt.Sprintf("玩家 %s 不在牌桌 %s", playerID, e.tableID),
			ClientSeq: intent.ClientSeq,
		})
	}

	switch intent.Type {
	case protocol.IntentDiscard:
		return e.applyDiscard(table, playerID, seat, intent)
	case protocol.IntentClaim:
		return e.applyClaim(table, playerID, intent)
	case protocol.IntentDissolve:
		// 解散投票由房间层仲裁，这里只回快照让旧客户端保持工作
		return e.bumpAll(e.snapshotEvent(table, playerID))
	default:
		return e.rejectedEvents(playerID, intent, protocol.RejectUnsupportedIntent,
			fmt.Sprintf("不支持的意图类型: %s", intent.Type))
	}
}

func (e *TableEngine) applyDiscard(table *Table, playerID string, seat int, intent protocol.Intent) []protocol.Event {
	if table.Phase != PhasePlaying {
		return e.rejectedEvents(playerID, intent, protocol.RejectNotPlayingTurn,
			fmt.Sprintf("当前阶段 %s 不能出牌", table.Phase))
	}
	if table.Turn != seat {
		return e.rejectedEvents(playerID, intent, protocol.RejectNotYourTurn,
			fmt.Sprintf("当前是座位 %d 的回合", table.Turn))
	}
	if table.TurnDiscarded {
		return e.rejectedEvents(playerID, intent, protocol.RejectAlreadyDiscarded, "本回合已经出过牌")
	}
	player := table.PlayerAt(seat)
	if player == nil || !player.HasTile(intent.Tile) {
		return e.rejectedEvents(playerID, intent, protocol.RejectTileNotInHand,
			fmt.Sprintf("暗牌中没有 %s", intent.Tile))
	}

	if err := e.deps.Actions.DiscardTile(e.tableID, playerID, intent.Tile); err != nil {
		// 前置校验全部通过后规则层仍然失败，按内部缺陷处理：只回快照
		log.Error("桌 %s 出牌动作失败, player=%s tile=%s: %v", e.tableID, playerID, intent.Tile, err)
		return e.bumpAll(e.snapshotEvent(table, playerID))
	}

	// 变更后重读一次，快照与手牌同步必须反映出牌之后的状态
	// 牌桌可能在动作期间被移除（并发解散），此时只回出牌事实本身
	table, alive := e.deps.Store.GetTable(e.tableID)
	if !alive {
		return e.bumpAll(protocol.Event{Type: protocol.EventDiscarded, Seat: protocol.SeatOf(seat), Tile: intent.Tile})
	}
	post := table.PlayerAt(seat)
	if post == nil {
		return e.bumpAll(protocol.Event{Type: protocol.EventDiscarded, Seat: protocol.SeatOf(seat), Tile: intent.Tile})
	}

	return e.bumpAll(
		protocol.Event{Type: protocol.EventDiscarded, Seat: protocol.SeatOf(seat), Tile: intent.Tile},
		protocol.Event{Type: protocol.EventHandSync, MyHand: post.Hand, MyFlowers: post.Flowers},
		e.snapshotEvent(table, playerID),
	)
}

func (e *TableEngine) applyClaim(table *Table, playerID string, intent protocol.Intent) []protocol.Event {
	if table.Phase != PhaseClaiming || table.Claiming == nil {
		return e.rejectedEvents(playerID, intent, protocol.RejectNotClaiming, "当前不在鸣牌仲裁中")
	}
	if table.Claiming.Resolved {
		return e.rejectedEvents(playerID, intent, protocol.RejectClaimAlreadyResolved, "本次仲裁已经结束")
	}

	legacy := LegacyClaimOf(intent.Claim)
	var err error
	if legacy == LegacyClaimPass {
		err = e.deps.Actions.PassClaim(e.tableID, playerID)
	} else {
		err = e.deps.Actions.HandleClaimRequest(e.tableID, playerID, legacy, intent.Tiles)
	}
	if err != nil {
		log.Error("桌 %s 鸣牌动作失败, player=%s claim=%s: %v", e.tableID, playerID, legacy, err)
		return e.bumpAll(e.snapshotEvent(table, playerID))
	}

	table, alive := e.deps.Store.GetTable(e.tableID)
	if !alive {
		return e.bumpAll(protocol.Event{
			Type:      protocol.EventRejected,
			Code:      protocol.RejectTableNotFound,
			Message:   fmt.Sprintf("牌桌 %s 已被移除", e.tableID),
			ClientSeq: intent.ClientSeq,
		})
	}
	var hand, flowers []string
	if seat, ok := table.SeatOf(playerID); ok {
		if p := table.PlayerAt(seat); p != nil {
			hand, flowers = p.Hand, p.Flowers
		}
	}

	return e.bumpAll(
		protocol.Event{Type: protocol.EventHandSync, MyHand: hand, MyFlowers: flowers},
		e.snapshotEvent(table, playerID),
	)
}

// rejectedEvents 拒绝 + 新快照，客户端靠快照对齐本地状态
func (e *TableEngine) rejectedEvents(playerID string, intent protocol.Intent, code protocol.RejectCode, msg string) []protocol.Event {
	events := []protocol.Event{{
		Type:      protocol.EventRejected,
		Code:      code,
		Message:   msg,
		ClientSeq: intent.ClientSeq,
	}}
	if table, ok := e.deps.Store.GetTable(e.tableID); ok {
		if _, seated := table.SeatOf(playerID); seated {
			events = append(events, e.snapshotEvent(table, playerID))
		}
	}
	return e.bumpAll(events...)
}

// bumpAll 给一批事件按序编号，校验失败的单个事件被丢弃
func (e *TableEngine) bumpAll(events ...protocol.Event) []protocol.Event {
	out := make([]protocol.Event, 0, len(events))
	for _, ev := range events {
		if bumped, ok := e.bumpOrDrop(ev); ok {
			out = append(out, bumped)
		}
	}
	return out
}
