package protocol

// EventType 服务端下行事件类型
type EventType string

const (
	EventWelcome       EventType = "WELCOME"
	EventTableSnapshot EventType = "TABLE_SNAPSHOT"
	EventTurnStart     EventType = "TURN_START"
	EventDiscarded     EventType = "DISCARDED"
	EventClaimWindow   EventType = "CLAIM_WINDOW"
	EventClaimResolved EventType = "CLAIM_RESOLVED"
	EventHandSync      EventType = "HAND_SYNC"
	EventScoreSettled  EventType = "SCORE_SETTLED"
	EventTableDissolve EventType = "TABLE_DISSOLVED"
	EventRejected      EventType = "REJECTED"
	EventPong          EventType = "PONG"
)

// RejectCode 拒绝码
type RejectCode string

const (
	RejectTableNotFound        RejectCode = "TABLE_NOT_FOUND"
	RejectNotInTable           RejectCode = "NOT_IN_TABLE"
	RejectNotPlayingTurn       RejectCode = "NOT_PLAYING_TURN"
	RejectNotYourTurn          RejectCode = "NOT_YOUR_TURN"
	RejectAlreadyDiscarded     RejectCode = "ALREADY_DISCARDED"
	RejectTileNotInHand        RejectCode = "TILE_NOT_IN_HAND"
	RejectNotClaiming          RejectCode = "NOT_CLAIMING"
	RejectClaimAlreadyResolved RejectCode = "CLAIM_ALREADY_RESOLVED"
	RejectDuplicate            RejectCode = "DUPLICATE"
	RejectUnsupportedIntent    RejectCode = "UNSUPPORTED_INTENT"
)

// Phase 对客户端可见的规范化牌局阶段
type Phase string

const (
	PhaseLobby    Phase = "LOBBY"
	PhaseDealing  Phase = "DEALING"
	PhasePlaying  Phase = "PLAYING_TURN"
	PhaseClaiming Phase = "CLAIMING"
	PhaseEnded    Phase = "ENDED"
)

// ClaimOption 响应窗口里提供给单个玩家的一种合法选择
type ClaimOption struct {
	Claim ClaimType `json:"claim"`
	Tiles []string  `json:"tiles"`
}

// MeldView 副露（已成型的面子）
type MeldView struct {
	Kind  string   `json:"kind"` // chi / pong / kong
	Tiles []string `json:"tiles"`
	From  int      `json:"from"` // 来源座位
}

// SeatView 快照中单个座位的公开信息
type SeatView struct {
	PlayerID  string     `json:"playerId"`
	Seat      int        `json:"seat"`
	HandCount int        `json:"handCount"`
	Melds     []MeldView `json:"melds"`
	Discards  []string   `json:"discards"`
	Flowers   []string   `json:"flowers"`
	Ready     bool       `json:"ready"`
}

// TableSnapshot 完整的公开+私有状态视图，供客户端对齐本地状态
type TableSnapshot struct {
	TableID    string     `json:"tableId"`
	Phase      Phase      `json:"phase"`
	DealerSeat int        `json:"dealerSeat"`
	Turn       int        `json:"turn"`
	WallCount  int        `json:"wallCount"`
	Seats      []SeatView `json:"seats"`
	MyHand     []string   `json:"myHand,omitempty"`
	MyFlowers  []string   `json:"myFlowers,omitempty"`
}

// SettlementView 一局结算
type SettlementView struct {
	WinnerSeat   int      `json:"winnerSeat"`
	LoserSeat    *int     `json:"loserSeat,omitempty"` // 自摸时为空
	HuType       string   `json:"huType"`
	TotalTai     int      `json:"totalTai"`
	OriginalTai  int      `json:"originalTai"`
	Patterns     []string `json:"patterns"`
	PatternNames []string `json:"patternNames"`
	Deltas       []int    `json:"deltas"` // 按座位的分数变动
}

// Event 服务端下行事件
// 除 PONG/WELCOME 外都携带 ServerSeq（每桌严格递增、不复用）
type Event struct {
	Type      EventType `json:"type"`
	ServerSeq int64     `json:"serverSeq,omitempty"`

	// WELCOME
	PlayerID string `json:"playerId,omitempty"`
	TableID  string `json:"tableId,omitempty"`

	// REJECTED
	Code      RejectCode `json:"code,omitempty"`
	Message   string     `json:"message,omitempty"`
	ClientSeq *int64     `json:"clientSeq,omitempty"`

	// DISCARDED / TURN_START / CLAIM_RESOLVED
	Seat  *int      `json:"seat,omitempty"`
	Tile  string    `json:"tile,omitempty"`
	Claim ClaimType `json:"claim,omitempty"`
	Tiles []string  `json:"tiles,omitempty"`

	// TABLE_SNAPSHOT
	Snapshot *TableSnapshot `json:"snapshot,omitempty"`

	// HAND_SYNC
	MyHand    []string `json:"myHand,omitempty"`
	MyFlowers []string `json:"myFlowers,omitempty"`

	// CLAIM_WINDOW
	OptionsForMe   []ClaimOption `json:"optionsForMe,omitempty"`
	DeadlinePolicy string        `json:"deadlinePolicy,omitempty"`
	DeadlineAtMs   int64         `json:"deadlineAtMs,omitempty"`

	// SCORE_SETTLED
	Settlement *SettlementView `json:"settlement,omitempty"`
}

// SeatOf 构造座位指针（seat 0 也要能上线路，不能依赖 omitempty 的零值语义）
func SeatOf(seat int) *int {
	return &seat
}
