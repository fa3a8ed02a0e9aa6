package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tai16/core/domain/entity"
)

// SettlementRepository 结算记录仓储
type SettlementRepository interface {
	SaveSettlement(ctx context.Context, record *entity.SettlementRecord) error
	FindSettlement(ctx context.Context, id primitive.ObjectID) (*entity.SettlementRecord, error)
	FindByTable(ctx context.Context, tableID string, limit int) ([]*entity.SettlementRecord, error)
	FindByPlayer(ctx context.Context, playerID string, limit, offset int) ([]*entity.SettlementRecord, error)
}
