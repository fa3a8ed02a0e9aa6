package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tai16/common/config"
	"tai16/common/database"
	"tai16/common/log"
	"tai16/core/infrastructure/persistence"
	"tai16/framework/bridge"
	"tai16/framework/conn"
	"tai16/framework/game"
	"tai16/framework/game/rules"
	"tai16/framework/node"
	"tai16/framework/stream"
)

// fanOutDelivery 同一个下行包投给全部通道：本机 ws 连接 + NATS（跨节点 connector）
type fanOutDelivery struct {
	sinks []bridge.Delivery
}

func (f *fanOutDelivery) Deliver(pkt *stream.OutboundPacket) error {
	var firstErr error
	for _, sink := range f.sinks {
		if err := sink.Deliver(pkt); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func Run(ctx context.Context) error {
	cfg := config.TableNodeConfig

	redisManager := database.NewRedis(cfg.RedisConf)
	defer redisManager.Close()
	redisClient, err := redisManager.GetClient()
	if err != nil {
		return err
	}

	mongoManager := database.NewMongo(cfg.MongoConf)
	defer func() {
		if err := mongoManager.Close(); err != nil {
			log.Warn("关闭 mongo 失败: %v", err)
		}
	}()

	publisher, err := node.NewNatsPublisher(cfg.NatsConf.URL)
	if err != nil {
		return err
	}
	defer publisher.Close()

	store := game.NewMemoryTableStore()
	presence := game.NewRedisPresence(redisClient)
	defer presence.Close()
	actions := rules.NewActions(store, cfg.GameSettings)

	registry := game.NewRegistry(&game.Deps{
		Store:    store,
		Actions:  actions,
		Presence: presence,
	})

	settlementRepo := persistence.NewMongoSettlementRepository(mongoManager)
	recorder := persistence.NewSettlementRecorder(settlementRepo, store)

	delivery := &fanOutDelivery{}
	b := bridge.NewBridge(registry, store, delivery, recorder)
	manager := conn.NewManager(ctx, b, presence)
	delivery.sinks = []bridge.Delivery{manager, publisher}

	monitor := game.NewMonitor(registry, 30*time.Second)
	go monitor.Start(ctx)
	defer monitor.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", manager.ServeWS)
	server := &http.Server{Addr: cfg.WsConf.Addr, Handler: mux}
	go func() {
		log.Info("牌桌服务监听 ws://%s/ws", cfg.WsConf.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ws 服务启动失败: %v", err)
		}
	}()

	stop := func() {
		log.Info("正在关闭 table 服务...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		done := make(chan struct{})
		go func() {
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Warn("关闭 ws 服务失败: %v", err)
			}
			manager.CloseAll()
			close(done)
		}()

		select {
		case <-done:
			log.Info("table 服务已关闭")
		case <-shutdownCtx.Done():
			log.Warn("关闭 table 服务超时（5秒），defer 会确保资源最终被释放")
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)
	for {
		select {
		case <-ctx.Done():
			stop()
			return nil
		case s := <-c:
			switch s {
			case syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT:
				stop()
				log.Info("中断信号，服务停止")
				return nil
			case syscall.SIGHUP:
				stop()
				log.Info("挂起信号，服务停止")
				return nil
			default:
				return nil
			}
		}
	}
}
