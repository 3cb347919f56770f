package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// RatingUpdateLog 对应 rating_update_log 表（补偿日志）
// 结算前逐辩手写入意向行（applied=0），对应 UPDATE 成功后标记 applied=1。
// 结算中途失败时，applied=0 的行即未落库的增量，供人工回放/审计。
type RatingUpdateLog struct {
	ID        int64   `db:"id"`
	MatchNo   string  `db:"match_no"`   // 比赛编号
	DebaterID int64   `db:"debater_id"` // 辩手ID
	OldRating float64 `db:"old_rating"` // 结算前分数
	NewRating float64 `db:"new_rating"` // 结算后分数
	Applied   int8    `db:"applied"`    // 0=待应用 1=已应用
	TraceID   string  `db:"trace_id"`   // 链路追踪ID
	CreatedAt int64   `db:"created_at"` // 创建时间（毫秒时间戳）
}

// CreateRatingUpdateLogs 批量写入意向行（applied=0）
func CreateRatingUpdateLogs(ctx context.Context, exec sqlx.ExtContext, logs []RatingUpdateLog) error {
	now := time.Now().UnixMilli()

	sqlStr := `INSERT INTO rating_update_log (match_no, debater_id, old_rating, new_rating, applied, trace_id, created_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)`
	for i := range logs {
		logs[i].CreatedAt = now
		if _, err := exec.ExecContext(ctx, sqlStr,
			logs[i].MatchNo, logs[i].DebaterID, logs[i].OldRating, logs[i].NewRating, logs[i].TraceID, now); err != nil {
			return err
		}
	}
	return nil
}

// MarkRatingUpdateApplied 标记某辩手的增量已应用
func MarkRatingUpdateApplied(ctx context.Context, exec sqlx.ExtContext, matchNo string, debaterID int64) error {
	sqlStr := "UPDATE rating_update_log SET applied = 1 WHERE match_no = ? AND debater_id = ?"
	_, err := exec.ExecContext(ctx, sqlStr, matchNo, debaterID)
	return err
}

// ListPendingRatingUpdates 查询某场比赛未应用的增量（审计/回放用）
func ListPendingRatingUpdates(ctx context.Context, exec sqlx.ExtContext, matchNo string) ([]RatingUpdateLog, error) {
	sqlStr := `SELECT id, match_no, debater_id, old_rating, new_rating, applied, trace_id, created_at
		FROM rating_update_log WHERE match_no = ? AND applied = 0 ORDER BY id ASC`

	var list []RatingUpdateLog
	if err := sqlx.SelectContext(ctx, exec, &list, sqlStr, matchNo); err != nil {
		return nil, err
	}
	return list, nil
}
