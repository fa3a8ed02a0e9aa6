package game

import (
	"context"
	"sync"

	"tai16/common/log"
)

// Registry 引擎注册表：每个牌桌 id 在进程生命周期内至多一个引擎
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*TableEngine
	deps    *Deps
}

func NewRegistry(deps *Deps) *Registry {
	return &Registry{
		engines: make(map[string]*TableEngine),
		deps:    deps,
	}
}

// GetOrCreate 返回已有引擎，或惰性创建并登记一个新引擎
func (r *Registry) GetOrCreate(tableID string, ctx context.Context) *TableEngine {
	r.mu.RLock()
	engine, ok := r.engines[tableID]
	r.mu.RUnlock()
	if ok {
		return engine
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if engine, ok = r.engines[tableID]; ok {
		return engine
	}
	engine = newTableEngine(ctx, tableID, r.deps)
	r.engines[tableID] = engine
	log.Info("Registry 创建牌桌引擎: %s", tableID)
	return engine
}

// Remove 注销并停止某桌引擎
// 牌桌解散或废弃时由房间生命周期层调用，避免引擎与缓存无界增长
func (r *Registry) Remove(tableID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	engine, ok := r.engines[tableID]
	if !ok {
		return
	}
	engine.close()
	delete(r.engines, tableID)
	log.Info("Registry 注销牌桌引擎: %s", tableID)
}

// Stats 引擎数与积压任务总数（监控用）
func (r *Registry) Stats() (engineCount int, queuedJobs int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engineCount = len(r.engines)
	for _, e := range r.engines {
		queuedJobs += e.QueueDepth()
	}
	return engineCount, queuedJobs
}
