package persistence

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tai16/common/database"
	"tai16/common/log"
	"tai16/core/domain/entity"
	"tai16/core/domain/repository"
	"tai16/framework/game"
	"tai16/framework/protocol"
)

var ErrSettlementNotFound = errors.New("结算记录不存在")

const settlementCollection = "settlements"

type MongoSettlementRepository struct {
	mongo *database.MongoManager
}

func NewMongoSettlementRepository(mongo *database.MongoManager) repository.SettlementRepository {
	return &MongoSettlementRepository{mongo: mongo}
}

func (r *MongoSettlementRepository) SaveSettlement(ctx context.Context, record *entity.SettlementRecord) error {
	collection := r.mongo.Db.Collection(settlementCollection)
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if _, err := collection.InsertOne(ctx, record); err != nil {
		log.Error("保存结算记录失败, table=%s: %v", record.TableID, err)
		return err
	}
	return nil
}

func (r *MongoSettlementRepository) FindSettlement(ctx context.Context, id primitive.ObjectID) (*entity.SettlementRecord, error) {
	collection := r.mongo.Db.Collection(settlementCollection)

	var record entity.SettlementRecord
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSettlementNotFound
		}
		log.Error("查询结算记录失败: %v", err)
		return nil, err
	}
	return &record, nil
}

func (r *MongoSettlementRepository) FindByTable(ctx context.Context, tableID string, limit int) ([]*entity.SettlementRecord, error) {
	return r.find(ctx, bson.M{"table_id": tableID}, limit, 0)
}

func (r *MongoSettlementRepository) FindByPlayer(ctx context.Context, playerID string, limit, offset int) ([]*entity.SettlementRecord, error) {
	return r.find(ctx, bson.M{"player_ids": playerID}, limit, offset)
}

func (r *MongoSettlementRepository) find(ctx context.Context, filter bson.M, limit, offset int) ([]*entity.SettlementRecord, error) {
	collection := r.mongo.Db.Collection(settlementCollection)

	opts := options.Find().
		SetSort(bson.M{"settled_at": -1}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		log.Error("查询结算记录失败: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*entity.SettlementRecord
	if err := cursor.All(ctx, &records); err != nil {
		log.Error("解析结算记录失败: %v", err)
		return nil, err
	}
	return records, nil
}

// SettlementRecorder 把下行结算事件转成仓储文档
// 玩家 ID 从牌桌现场补齐，桌子已经不在时只存座位信息
type SettlementRecorder struct {
	repo  repository.SettlementRepository
	store game.TableStore
}

func NewSettlementRecorder(repo repository.SettlementRepository, store game.TableStore) *SettlementRecorder {
	return &SettlementRecorder{repo: repo, store: store}
}

func (s *SettlementRecorder) Save(ctx context.Context, tableID string, view *protocol.SettlementView) error {
	record := &entity.SettlementRecord{
		TableID:      tableID,
		WinnerSeat:   view.WinnerSeat,
		LoserSeat:    -1,
		HuType:       view.HuType,
		TotalTai:     view.TotalTai,
		OriginalTai:  view.OriginalTai,
		Patterns:     view.Patterns,
		PatternNames: view.PatternNames,
		Deltas:       view.Deltas,
		SettledAt:    time.Now(),
	}
	if view.LoserSeat != nil {
		record.LoserSeat = *view.LoserSeat
	}
	if table, ok := s.store.GetTable(tableID); ok {
		ids := make([]string, len(table.Players))
		for i, p := range table.Players {
			if p != nil {
				ids[i] = p.ID
			}
		}
		record.PlayerIDs = ids
	}
	return s.repo.SaveSettlement(ctx, record)
}
