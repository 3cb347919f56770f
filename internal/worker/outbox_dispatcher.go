package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Kronicle-Debating-Society/ranking/common/logger"
	infmysql "github.com/Kronicle-Debating-Society/ranking/internal/infra/mysql"
	infmq "github.com/Kronicle-Debating-Society/ranking/internal/infra/rocketmq"
	"github.com/Kronicle-Debating-Society/ranking/internal/model"

	"go.uber.org/zap"
)

// StartOutboxDispatcher 启动 Outbox 分发器，支持通过 ctx 优雅退出
// 结算事件先落 outbox 表，由此协程轮询投递到 RocketMQ，失败累加 retry_count。
// 仅当 MQ 已启用时运行。
func StartOutboxDispatcher(ctx context.Context, wg *sync.WaitGroup) {
	if !infmq.Enabled() {
		return
	}
	wg.Add(1)
	pub := infmq.PublisherInstance()
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer wg.Done()

		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c, cancel := context.WithTimeout(ctx, 2*time.Second)
				rows, err := model.ListOutboxPending(c, infmysql.SQLX(), 100)
				cancel()
				if err != nil {
					logger.Warn("outbox: list pending failed", zap.Error(err))
					continue
				}
				for _, r := range rows {
					if err := pub.Publish(r.Topic, []byte(r.Payload)); err != nil {
						mc, mcancel := markCtx()
						if err := model.MarkOutboxFailed(mc, infmysql.SQLX(), r.ID, truncateErr(err)); err != nil {
							logger.Warn("outbox: mark failed failed", zap.Int64("id", r.ID), zap.Error(err))
						}
						mcancel()
						continue
					}
					// 已投递的消息必须落状态，否则下次轮询会重复投递
					mc, mcancel := markCtx()
					if err := model.MarkOutboxSent(mc, infmysql.SQLX(), r.ID); err != nil {
						logger.Warn("outbox: mark sent failed", zap.Int64("id", r.ID), zap.Error(err))
					}
					mcancel()
				}
			}
		}
	}()
}

// markCtx 状态更新使用独立的短超时上下文：
// 退出信号取消父 ctx 时，已投递消息的落状态仍需完成，否则重启后会重复投递。
func markCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Second)
}

func truncateErr(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	if len(b) > 240 {
		return string(b[:240])
	}
	return string(b)
}
