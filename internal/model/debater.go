package model

import (
	"context"
	"time"

	"github.com/Kronicle-Debating-Society/ranking/common"

	g "github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Debater 对应 debaters 表
// 说明：rating 为浮点技能分，默认 1500，由比赛结算或后台直接修改；无上下界约束
type Debater struct {
	ID        int64   `db:"id" json:"id"`                 // 辩手ID(主键)
	Name      string  `db:"name" json:"name"`             // 显示名
	Rating    float64 `db:"rating" json:"rating"`         // 技能分
	CreatedAt int64   `db:"created_at" json:"created_at"` // 创建时间（毫秒时间戳）
	UpdatedAt int64   `db:"updated_at" json:"updated_at"` // 更新时间（毫秒时间戳）
}

// ListDebaters 全量查询辩手，按 rating 降序
func ListDebaters(ctx context.Context, db *sqlx.DB) ([]Debater, error) {
	sqlStr := `SELECT id, name, rating, created_at, updated_at FROM debaters ORDER BY rating DESC`

	var list []Debater
	if err := db.SelectContext(ctx, &list, sqlStr); err != nil {
		return nil, errors.Wrap(err, "list debaters")
	}
	return list, nil
}

// GetDebater 按ID查询辩手；未命中返回 sql.ErrNoRows
func GetDebater(ctx context.Context, db *sqlx.DB, id int64) (*Debater, error) {
	sqlStr := `SELECT id, name, rating, created_at, updated_at FROM debaters WHERE id = ? LIMIT 1`

	var d Debater
	if err := db.GetContext(ctx, &d, sqlStr, id); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDebatersByIDs 按ID集合查询辩手。
// 注意：IN (...) 的返回顺序不保证与入参一致，调用方需自行按输入顺序重排。
func ListDebatersByIDs(ctx context.Context, db *sqlx.DB, ids []int64) ([]Debater, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT id, name, rating, created_at, updated_at FROM debaters WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "build debaters IN query")
	}
	query = db.Rebind(query)

	var list []Debater
	if err := db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, errors.Wrap(err, "list debaters by ids")
	}
	return list, nil
}

// Insert 新增辩手，回填自增ID
func (d *Debater) Insert(ctx context.Context, db *sqlx.DB) error {
	now := time.Now().UnixMilli()
	d.CreatedAt = now
	d.UpdatedAt = now

	res, err := common.Insert(common.Conn{Db: db}, "debaters", g.Record{
		"name":       d.Name,
		"rating":     d.Rating,
		"created_at": now,
		"updated_at": now,
	})
	if err != nil {
		return errors.Wrap(err, "insert debater")
	}
	id, _ := res.LastInsertId()
	d.ID = id
	return nil
}

// DebaterUpdate 部分更新字段，nil 表示不更新
type DebaterUpdate struct {
	Name   *string
	Rating *float64
}

// UpdateDebater 按ID部分更新；返回受影响行数（0 表示未命中）
func UpdateDebater(ctx context.Context, db *sqlx.DB, id int64, upd DebaterUpdate) (int64, error) {
	rec := g.Record{"updated_at": time.Now().UnixMilli()}
	if upd.Name != nil {
		rec["name"] = *upd.Name
	}
	if upd.Rating != nil {
		rec["rating"] = *upd.Rating
	}

	res, err := common.Update(common.Conn{Db: db}, "debaters", rec, g.C("id").Eq(id))
	if err != nil {
		return 0, errors.Wrap(err, "update debater")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// UpdateDebaterRating 结算专用：仅覆盖 rating 字段。
// 每个辩手一行，互不相关，结算阶段并发调用。
func UpdateDebaterRating(ctx context.Context, exec sqlx.ExtContext, id int64, newRating float64) error {
	now := time.Now().UnixMilli()

	sqlStr := "UPDATE debaters SET rating = ?, updated_at = ? WHERE id = ?"
	_, err := exec.ExecContext(ctx, sqlStr, newRating, now, id)
	return err
}

// DeleteDebater 按ID删除；返回受影响行数（0 表示未命中）。
// 历史 matches 记录内嵌队伍数据，不随删除变化。
func DeleteDebater(ctx context.Context, db *sqlx.DB, id int64) (int64, error) {
	res, err := common.Delete(common.Conn{Db: db}, "debaters", g.C("id").Eq(id))
	if err != nil {
		return 0, errors.Wrap(err, "delete debater")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
