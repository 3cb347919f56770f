package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Match 对应 matches 表（追加式，创建后不修改不删除）
// gov_team/opp_team 以提交时的 JSON 原样入库，弱引用辩手ID；
// 辩手被删除后历史记录不受影响。
// verdict: gov|opp
type Match struct {
	ID        int64  `db:"id" json:"-"`
	MatchNo   string `db:"match_no" json:"match_no"`     // 比赛编号（对外主键）
	GovTeam   string `db:"gov_team" json:"gov_team"`     // 正方队伍 JSON
	OppTeam   string `db:"opp_team" json:"opp_team"`     // 反方队伍 JSON
	Verdict   string `db:"verdict" json:"verdict"`       // 胜方
	TraceID   string `db:"trace_id" json:"trace_id"`     // 链路追踪ID
	CreatedAt int64  `db:"created_at" json:"created_at"` // 创建时间（毫秒时间戳）
}

// Insert 插入一条 Match 记录
func (m *Match) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()
	m.CreatedAt = now

	sqlStr := `INSERT INTO matches (match_no, gov_team, opp_team, verdict, trace_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := exec.ExecContext(ctx, sqlStr, m.MatchNo, m.GovTeam, m.OppTeam, m.Verdict, m.TraceID, now)
	return err
}

// GetMatchByNo 按比赛编号查询；未命中返回 sql.ErrNoRows
func GetMatchByNo(ctx context.Context, exec sqlx.ExtContext, matchNo string) (*Match, error) {
	sqlStr := `SELECT id, match_no, gov_team, opp_team, verdict, trace_id, created_at
		FROM matches WHERE match_no = ? LIMIT 1`

	var m Match
	if err := sqlx.GetContext(ctx, exec, &m, sqlStr, matchNo); err != nil {
		return nil, err
	}
	return &m, nil
}
