package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/Kronicle-Debating-Society/ranking/common"
	"github.com/Kronicle-Debating-Society/ranking/common/logger"
	"github.com/Kronicle-Debating-Society/ranking/internal/config"
	infmysql "github.com/Kronicle-Debating-Society/ranking/internal/infra/mysql"
	infrds "github.com/Kronicle-Debating-Society/ranking/internal/infra/redis"
	infmq "github.com/Kronicle-Debating-Society/ranking/internal/infra/rocketmq"
	"github.com/Kronicle-Debating-Society/ranking/internal/worker"
	_ "github.com/Kronicle-Debating-Society/ranking/routers"

	beego "github.com/beego/beego/v2/server/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. 加载配置（Nacos 优先，本地文件兜底）
	cfg, err := config.Load(ctx)
	if err != nil {
		panic("load config failed: " + err.Error())
	}
	config.Set(cfg)
	config.SetCurrent(cfg)

	// 2. 初始化日志
	logger.InitLogger()
	if cfg.Server.LogLevel != "" {
		logger.SetLevel(cfg.Server.LogLevel)
	}
	defer logger.Sync()
	logger.Info("ranking service starting", zap.Int("port", cfg.Server.Port))

	// 3. 初始化 MySQL 连接池
	db := common.InitDB(cfg.Database.DSN, cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns)
	infmysql.UseDB(db.DB)

	// 4. 初始化 Redis（可选，addr 为空则跳过；缓存与限流自动降级）
	infrds.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := infrds.Ping(ctx, 2*time.Second); err != nil {
		logger.Warn("redis ping failed, cache degraded", zap.Error(err))
	}

	// 5. 配置热更新（Nacos 监听；日志级别即时生效）
	if err := config.StartWatch(ctx, func(oldCfg, newCfg *config.Config) {
		if newCfg != nil && newCfg.Server.LogLevel != "" {
			logger.SetLevel(newCfg.Server.LogLevel)
		}
		logger.Info("config reloaded")
	}); err != nil {
		logger.Warn("config watch not started", zap.Error(err))
	}

	// 6. Prometheus 指标端口（独立于业务端口）
	if cfg.Observability.EnableProm {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			addr := cfg.Observability.PromAddr
			if addr == "" {
				addr = ":9100"
			}
			logger.Info("prometheus metrics listening", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics server exited", zap.Error(err))
			}
		}()
	}

	// 7. 后台任务：Outbox 分发器
	var wg sync.WaitGroup
	worker.StartOutboxDispatcher(ctx, &wg)

	// 8. 信号处理：优雅退出后台任务
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		s := <-ch
		logger.Info("signal received, shutting down", zap.String("signal", s.String()))
		cancel()
		wg.Wait()
		infmq.Shutdown()
		logger.Sync()
		os.Exit(0)
	}()

	// 9. 启动 HTTP 服务
	beego.BConfig.CopyRequestBody = true
	beego.BConfig.RunMode = beego.PROD
	if rm := os.Getenv("BEEGO_RUNMODE"); rm != "" {
		beego.BConfig.RunMode = rm
	}
	port := cfg.Server.Port
	if port <= 0 {
		port = 8080
	}
	beego.Run(":" + strconv.Itoa(port))
}
