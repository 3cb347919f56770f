package model

import (
	"context"
	"time"

	"github.com/Kronicle-Debating-Society/ranking/common"
	"github.com/Kronicle-Debating-Society/ranking/common/constant"

	"github.com/jmoiron/sqlx"
)

// Outbox 对应 outbox 表（事务消息表）
// status: 1=待发送 2=已发送 3=失败
type Outbox struct {
	ID         int64  `db:"id"`          // 自增ID
	Topic      string `db:"topic"`       // 主题
	BizKey     string `db:"biz_key"`     // 业务键（去重/幂等用）
	Payload    string `db:"payload"`     // 消息体(JSON字符串)
	Status     int8   `db:"status"`      // 状态
	RetryCount int    `db:"retry_count"` // 重试次数
	LastError  string `db:"last_error"`  // 最后一次错误
	CreatedAt  int64  `db:"created_at"`  // 创建时间
	UpdatedAt  int64  `db:"updated_at"`  // 更新时间
}

// Insert 插入一条 Outbox 记录（状态默认 1）
func (o *Outbox) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()

	sqlStr := "INSERT INTO outbox (topic, biz_key, payload, status, retry_count, last_error, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := exec.ExecContext(ctx, sqlStr, o.Topic, o.BizKey, o.Payload, constant.OutboxStatusPending, 0, "", now, now)
	return err
}

// OutboxRow 是调度器扫描用的轻量投影
type OutboxRow struct {
	ID      int64  `db:"id"`
	Topic   string `db:"topic"`
	BizKey  string `db:"biz_key"`
	Payload string `db:"payload"`
}

// ListOutboxPending 查询待发送的 outbox 轻量投影
// 只取 status=1 且 retry_count < 10 的记录（避免无限重试）
func ListOutboxPending(ctx context.Context, exec sqlx.ExtContext, limit int) ([]OutboxRow, error) {
	sqlStr := "SELECT id, topic, biz_key, payload FROM outbox WHERE status = ? AND retry_count < ? ORDER BY id ASC LIMIT ?"

	var list []OutboxRow
	if err := sqlx.SelectContext(ctx, exec, &list, sqlStr, constant.OutboxStatusPending, constant.OutboxMaxRetry, limit); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkOutboxSent 标记一条 Outbox 为已发送
func MarkOutboxSent(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	now := time.Now().UnixMilli()

	sqlStr := "UPDATE outbox SET status = ?, updated_at = ? WHERE id = ?"
	_, err := exec.ExecContext(ctx, sqlStr, constant.OutboxStatusSent, now, id)
	return err
}

// MarkOutboxFailed 标记一条 Outbox 发送失败并记录最后错误
// retry_count 达到 10 次后置为永久失败（status=3），否则保持 status=1 继续重试
func MarkOutboxFailed(ctx context.Context, exec sqlx.ExtContext, id int64, lastError string) error {
	now := time.Now().UnixMilli()

	sqlStr := "UPDATE outbox SET status = CASE WHEN retry_count >= ? THEN ? ELSE ? END, last_error = ?, retry_count = retry_count + 1, updated_at = ? WHERE id = ?"
	_, err := exec.ExecContext(ctx, sqlStr, constant.OutboxMaxRetry-1, constant.OutboxStatusFailed, constant.OutboxStatusPending, lastError, now, id)
	return err
}

// CreateOutbox creates and inserts an outbox record from topic, bizKey and payload(any)
func CreateOutbox(ctx context.Context, exec sqlx.ExtContext, topic, bizKey string, payload any) error {
	b, err := common.JsonMarshal(payload)
	if err != nil {
		return err
	}
	o := &Outbox{Topic: topic, BizKey: bizKey, Payload: string(b)}
	return o.Insert(ctx, exec)
}
