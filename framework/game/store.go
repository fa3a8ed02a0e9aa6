package game

import "sync"

// TableStore 牌桌读取接口
// 引擎只通过它读取牌桌快照；写入始终发生在规则层动作里，
// 并且必须在该桌引擎的串行队列内执行（单写者约定）
type TableStore interface {
	GetTable(tableID string) (*Table, bool)
}

// MemoryTableStore 进程内牌桌表
// 房间生命周期层负责 Put/Remove，核心只消费 GetTable
type MemoryTableStore struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

func NewMemoryTableStore() *MemoryTableStore {
	return &MemoryTableStore{
		tables: make(map[string]*Table),
	}
}

func (s *MemoryTableStore) GetTable(tableID string) (*Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[tableID]
	return t, ok
}

func (s *MemoryTableStore) Put(table *Table) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[table.ID] = table
}

func (s *MemoryTableStore) Remove(tableID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tables, tableID)
}

func (s *MemoryTableStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.tables)
}
