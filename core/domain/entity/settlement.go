package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettlementRecord 单局结算记录（每次食胡/自摸一个文档）
type SettlementRecord struct {
	ID           primitive.ObjectID `bson:"_id"`
	TableID      string             `bson:"table_id"`
	WinnerSeat   int                `bson:"winner_seat"`
	LoserSeat    int                `bson:"loser_seat"` // 自摸时为 -1
	HuType       string             `bson:"hu_type"`    // zimo / discard
	TotalTai     int                `bson:"total_tai"`  // 封顶后的台数
	OriginalTai  int                `bson:"original_tai"`
	Patterns     []string           `bson:"patterns"`      // 内部稳定键
	PatternNames []string           `bson:"pattern_names"` // 展示名
	Deltas       []int              `bson:"deltas"`        // 按座位的分数变动
	PlayerIDs    []string           `bson:"player_ids"`    // 按座位的玩家 ID
	SettledAt    time.Time          `bson:"settled_at"`
	CreatedAt    time.Time          `bson:"created_at"`
}
