package game

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"tai16/common/log"
)

// Monitor 定期上报本节点负载：引擎数、积压任务、CPU、内存
type Monitor struct {
	registry       *Registry
	updateInterval time.Duration
	stopCh         chan struct{}
}

func NewMonitor(registry *Registry, updateInterval time.Duration) *Monitor {
	return &Monitor{
		registry:       registry,
		updateInterval: updateInterval,
		stopCh:         make(chan struct{}),
	}
}

// Start 在独立 goroutine 中周期上报
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.updateInterval)
	defer ticker.Stop()

	m.reportLoad()

	for {
		select {
		case <-ctx.Done():
			log.Info("Monitor 收到停止信号，退出监控")
			return
		case <-m.stopCh:
			log.Info("Monitor 收到停止信号，退出监控")
			return
		case <-ticker.C:
			m.reportLoad()
		}
	}
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

func (m *Monitor) reportLoad() {
	engines, queued := m.registry.Stats()

	cpuUsage := 0.0
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		cpuUsage = percents[0]
	}
	memUsage := 0.0
	if vm, err := mem.VirtualMemory(); err == nil {
		memUsage = vm.UsedPercent
	}

	log.Info("Monitor 负载上报: Engines=%d, Queued=%d, CPU=%.2f%%, Mem=%.2f%%",
		engines, queued, cpuUsage, memUsage)
}
