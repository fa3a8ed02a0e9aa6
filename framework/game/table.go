package game

import (
	"tai16/common/config"
	"tai16/framework/game/engines/taiwan"
	"tai16/framework/protocol"
)

// LegacyPhase 旧系统的牌局阶段词汇，持久层与房间层继续使用
type LegacyPhase string

const (
	PhaseWaiting           LegacyPhase = "waiting"
	PhaseDealing           LegacyPhase = "dealing"
	PhaseFlowerReplacement LegacyPhase = "flower_replacement"
	PhasePlaying           LegacyPhase = "playing"
	PhaseClaiming          LegacyPhase = "claiming"
	PhaseEnded             LegacyPhase = "ended"
)

// CanonicalPhase 旧阶段词汇到协议层规范阶段的映射
// 未识别的值按 LOBBY 处理
func CanonicalPhase(p LegacyPhase) protocol.Phase {
	switch p {
	case PhaseWaiting:
		return protocol.PhaseLobby
	case PhaseDealing, PhaseFlowerReplacement:
		return protocol.PhaseDealing
	case PhasePlaying:
		return protocol.PhasePlaying
	case PhaseClaiming:
		return protocol.PhaseClaiming
	case PhaseEnded:
		return protocol.PhaseEnded
	default:
		return protocol.PhaseLobby
	}
}

// 旧系统的鸣牌词汇
const (
	LegacyClaimChi  = "chi"
	LegacyClaimPong = "pong"
	LegacyClaimKong = "kong"
	LegacyClaimHu   = "hu"
	LegacyClaimPass = "pass"
)

// LegacyClaimOf 协议鸣牌类型映射到旧词汇，未识别的按 pass 处理
func LegacyClaimOf(c protocol.ClaimType) string {
	switch c {
	case protocol.ClaimChi:
		return LegacyClaimChi
	case protocol.ClaimPon:
		return LegacyClaimPong
	case protocol.ClaimKan:
		return LegacyClaimKong
	case protocol.ClaimHu:
		return LegacyClaimHu
	default:
		return LegacyClaimPass
	}
}

// ProtocolClaimOf 旧鸣牌词汇映射到协议类型
func ProtocolClaimOf(legacy string) protocol.ClaimType {
	switch legacy {
	case LegacyClaimChi:
		return protocol.ClaimChi
	case LegacyClaimPong:
		return protocol.ClaimPon
	case LegacyClaimKong:
		return protocol.ClaimKan
	case LegacyClaimHu:
		return protocol.ClaimHu
	default:
		return protocol.ClaimPass
	}
}

// 鸣牌优先级：胡 > 杠/碰 > 吃，一档一档地仲裁
const (
	PriorityChi  = 1
	PriorityPong = 2
	PriorityHu   = 3
)

// ClaimPriorityOf 旧鸣牌词汇对应的优先级
func ClaimPriorityOf(legacy string) int {
	switch legacy {
	case LegacyClaimHu:
		return PriorityHu
	case LegacyClaimKong, LegacyClaimPong:
		return PriorityPong
	default:
		return PriorityChi
	}
}

// Meld 副露
type Meld struct {
	Kind  string   // chi / pong / kong
	Tiles []string
	From  int
}

// Player 牌桌上一个座位的玩家
// Flags 由规则层在听牌/和牌判定时预先算好，核心只读
type Player struct {
	ID       string
	Seat     int
	Hand     []string // 暗牌
	Flowers  []string
	Melds    []Meld
	Discards []string
	Ready    bool
	Waiting  bool // 听牌（由规则层判定）
	Flags    taiwan.WinFlags
}

// HasTile 暗牌中是否有这张牌
func (p *Player) HasTile(tile string) bool {
	for _, t := range p.Hand {
		if t == tile {
			return true
		}
	}
	return false
}

// ClaimOptionState 仲裁中提供给某个座位的一种选择
type ClaimOptionState struct {
	Seat     int
	Claim    string // 旧词汇：chi/pong/kong/hu
	Tiles    []string
	Priority int
}

// ClaimingState 出牌后的鸣牌仲裁状态
// Pending 里的座位还欠一个决定；同一优先档全部表态后才降档
type ClaimingState struct {
	DiscardTile     string
	FromSeat        int
	Options         []ClaimOptionState
	CurrentPriority int
	Pending         map[int]bool
	Resolved        bool
	ResolvedSeat    int
	ResolvedClaim   string
	DeadlineAtMs    int64
}

// Table 牌桌快照对象
// 引擎只读它，所有改写都经由规则层的 LegacyActions 完成
type Table struct {
	ID            string
	Players       []*Player // 固定座位 0-3
	Wall          []string
	Turn          int
	Phase         LegacyPhase
	Claiming      *ClaimingState
	DealerIndex   int
	WindStart     int
	TurnDiscarded bool // 当前回合是否已经出过牌
	Settings      config.GameSettings
}

// SeatOf 查玩家座位
func (t *Table) SeatOf(playerID string) (int, bool) {
	for _, p := range t.Players {
		if p != nil && p.ID == playerID {
			return p.Seat, true
		}
	}
	return -1, false
}

// PlayerAt 按座位取玩家
func (t *Table) PlayerAt(seat int) *Player {
	for _, p := range t.Players {
		if p != nil && p.Seat == seat {
			return p
		}
	}
	return nil
}

// TaiInput 构造台数计算的输入视图
func (t *Table) TaiInput(seat int) (*taiwan.TableState, *taiwan.PlayerState) {
	ts := &taiwan.TableState{
		DealerIndex: t.DealerIndex,
		WindStart:   t.WindStart,
		CapPolicy:   t.Settings.TaiCapPolicy,
	}
	p := t.PlayerAt(seat)
	if p == nil {
		return ts, &taiwan.PlayerState{}
	}
	melds := make([]taiwan.Meld, 0, len(p.Melds))
	for _, m := range p.Melds {
		melds = append(melds, taiwan.Meld{Kind: m.Kind, Tiles: m.Tiles, From: m.From})
	}
	return ts, &taiwan.PlayerState{
		Hand:    p.Hand,
		Melds:   melds,
		Flowers: p.Flowers,
		Flags:   p.Flags,
	}
}
