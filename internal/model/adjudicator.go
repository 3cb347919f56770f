package model

import (
	"context"
	"time"

	"github.com/Kronicle-Debating-Society/ranking/common"

	g "github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Adjudicator 对应 adjudicators 表
// verdict_accuracy 与 feedback_score 仅存储，结算公式不消费（预留字段）
type Adjudicator struct {
	ID              int64   `db:"id" json:"id"`                             // 评委ID(主键)
	Name            string  `db:"name" json:"name"`                         // 显示名
	Rating          float64 `db:"rating" json:"rating"`                     // 技能分
	VerdictAccuracy float64 `db:"verdict_accuracy" json:"verdict_accuracy"` // 判准率
	FeedbackScore   float64 `db:"feedback_score" json:"feedback_score"`     // 反馈评分
	CreatedAt       int64   `db:"created_at" json:"created_at"`             // 创建时间（毫秒时间戳）
	UpdatedAt       int64   `db:"updated_at" json:"updated_at"`             // 更新时间（毫秒时间戳）
}

// ListAdjudicators 全量查询评委，按 rating 降序
func ListAdjudicators(ctx context.Context, db *sqlx.DB) ([]Adjudicator, error) {
	sqlStr := `SELECT id, name, rating, verdict_accuracy, feedback_score, created_at, updated_at
		FROM adjudicators ORDER BY rating DESC`

	var list []Adjudicator
	if err := db.SelectContext(ctx, &list, sqlStr); err != nil {
		return nil, errors.Wrap(err, "list adjudicators")
	}
	return list, nil
}

// GetAdjudicator 按ID查询评委；未命中返回 sql.ErrNoRows
func GetAdjudicator(ctx context.Context, db *sqlx.DB, id int64) (*Adjudicator, error) {
	sqlStr := `SELECT id, name, rating, verdict_accuracy, feedback_score, created_at, updated_at
		FROM adjudicators WHERE id = ? LIMIT 1`

	var a Adjudicator
	if err := db.GetContext(ctx, &a, sqlStr, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// Insert 新增评委，回填自增ID
func (a *Adjudicator) Insert(ctx context.Context, db *sqlx.DB) error {
	now := time.Now().UnixMilli()
	a.CreatedAt = now
	a.UpdatedAt = now

	res, err := common.Insert(common.Conn{Db: db}, "adjudicators", g.Record{
		"name":             a.Name,
		"rating":           a.Rating,
		"verdict_accuracy": a.VerdictAccuracy,
		"feedback_score":   a.FeedbackScore,
		"created_at":       now,
		"updated_at":       now,
	})
	if err != nil {
		return errors.Wrap(err, "insert adjudicator")
	}
	id, _ := res.LastInsertId()
	a.ID = id
	return nil
}

// AdjudicatorUpdate 部分更新字段，nil 表示不更新
type AdjudicatorUpdate struct {
	Name            *string
	Rating          *float64
	VerdictAccuracy *float64
	FeedbackScore   *float64
}

// UpdateAdjudicator 按ID部分更新；返回受影响行数（0 表示未命中）
func UpdateAdjudicator(ctx context.Context, db *sqlx.DB, id int64, upd AdjudicatorUpdate) (int64, error) {
	rec := g.Record{"updated_at": time.Now().UnixMilli()}
	if upd.Name != nil {
		rec["name"] = *upd.Name
	}
	if upd.Rating != nil {
		rec["rating"] = *upd.Rating
	}
	if upd.VerdictAccuracy != nil {
		rec["verdict_accuracy"] = *upd.VerdictAccuracy
	}
	if upd.FeedbackScore != nil {
		rec["feedback_score"] = *upd.FeedbackScore
	}

	res, err := common.Update(common.Conn{Db: db}, "adjudicators", rec, g.C("id").Eq(id))
	if err != nil {
		return 0, errors.Wrap(err, "update adjudicator")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteAdjudicator 按ID删除；返回受影响行数（0 表示未命中）
func DeleteAdjudicator(ctx context.Context, db *sqlx.DB, id int64) (int64, error) {
	res, err := common.Delete(common.Conn{Db: db}, "adjudicators", g.C("id").Eq(id))
	if err != nil {
		return 0, errors.Wrap(err, "delete adjudicator")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
