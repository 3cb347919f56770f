package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Kronicle-Debating-Society/ranking/common"
	"github.com/Kronicle-Debating-Society/ranking/common/logger"
	"github.com/Kronicle-Debating-Society/ranking/internal/config"
	infmysql "github.com/Kronicle-Debating-Society/ranking/internal/infra/mysql"
	infrds "github.com/Kronicle-Debating-Society/ranking/internal/infra/redis"
	"github.com/Kronicle-Debating-Society/ranking/internal/model"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 新建参与者时的默认技能分
const defaultRating = 1500.0

var ErrNotFound = errors.New("not found")

// DebaterInput 新建/更新辩手入参；指针字段为 nil 表示未提供
type DebaterInput struct {
	Name   string
	Rating *float64
}

type DebaterService interface {
	List(ctx context.Context) ([]model.Debater, error)
	Create(ctx context.Context, in DebaterInput) (*model.Debater, error)
	Get(ctx context.Context, id int64) (*model.Debater, error)
	Update(ctx context.Context, id int64, in DebaterInput) (*model.Debater, error)
	Delete(ctx context.Context, id int64) error
}

type debaterService struct{}

func NewDebaterService() DebaterService { return &debaterService{} }

// List 按 rating 降序返回全部辩手。
// 排行榜读多写少，经由 Redis 短 TTL 缓存；未命中回源数据库并回填。
func (s *debaterService) List(ctx context.Context) ([]model.Debater, error) {
	useCache := config.GetFeatureFlag("leaderboard_cache")
	key := infrds.LeaderboardKey("debater")
	if r := infrds.Client(); r != nil && useCache {
		if bs, err := r.Get(ctx, key).Bytes(); err == nil {
			var cached []model.Debater
			if common.JsonUnmarshal(bs, &cached) == nil {
				return cached, nil
			}
		} else if err != goredis.Nil {
			logger.WarnCtx(ctx, "[Debater] leaderboard cache read failed", zap.Error(err))
		}
	}

	list, err := model.ListDebaters(ctx, infmysql.SQLX())
	if err != nil {
		return nil, ErrPersistence
	}

	if r := infrds.Client(); r != nil && useCache {
		ttl := time.Duration(config.GetThreshold("leaderboard_ttl_sec", 20)) * time.Second
		if b, err := common.JsonMarshal(list); err == nil {
			_ = r.Set(ctx, key, b, ttl).Err()
		}
	}
	return list, nil
}

func (s *debaterService) Create(ctx context.Context, in DebaterInput) (*model.Debater, error) {
	rating := defaultRating
	if in.Rating != nil {
		rating = *in.Rating
	}

	d := &model.Debater{Name: in.Name, Rating: rating}
	if err := d.Insert(ctx, infmysql.SQLX()); err != nil {
		return nil, ErrPersistence
	}
	invalidateLeaderboard(ctx, "debater")
	return d, nil
}

func (s *debaterService) Get(ctx context.Context, id int64) (*model.Debater, error) {
	d, err := model.GetDebater(ctx, infmysql.SQLX(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, ErrPersistence
	}
	return d, nil
}

func (s *debaterService) Update(ctx context.Context, id int64, in DebaterInput) (*model.Debater, error) {
	db := infmysql.SQLX()
	if _, err := model.GetDebater(ctx, db, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, ErrPersistence
	}

	upd := model.DebaterUpdate{Rating: in.Rating}
	if in.Name != "" {
		upd.Name = &in.Name
	}
	if _, err := model.UpdateDebater(ctx, db, id, upd); err != nil {
		return nil, ErrPersistence
	}
	invalidateLeaderboard(ctx, "debater")

	d, err := model.GetDebater(ctx, db, id)
	if err != nil {
		return nil, ErrPersistence
	}
	return d, nil
}

func (s *debaterService) Delete(ctx context.Context, id int64) error {
	n, err := model.DeleteDebater(ctx, infmysql.SQLX(), id)
	if err != nil {
		return ErrPersistence
	}
	if n == 0 {
		return ErrNotFound
	}
	invalidateLeaderboard(ctx, "debater")
	return nil
}

// invalidateLeaderboard 删除排行榜缓存（写路径统一调用）
func invalidateLeaderboard(ctx context.Context, kind string) {
	if r := infrds.Client(); r != nil {
		_ = r.Del(ctx, infrds.LeaderboardKey(kind)).Err()
	}
}
