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

// AdjudicatorInput 新建/更新评委入参；指针字段为 nil 表示未提供
type AdjudicatorInput struct {
	Name            string
	Rating          *float64
	VerdictAccuracy *float64
	FeedbackScore   *float64
}

type AdjudicatorService interface {
	List(ctx context.Context) ([]model.Adjudicator, error)
	Create(ctx context.Context, in AdjudicatorInput) (*model.Adjudicator, error)
	Get(ctx context.Context, id int64) (*model.Adjudicator, error)
	Update(ctx context.Context, id int64, in AdjudicatorInput) (*model.Adjudicator, error)
	Delete(ctx context.Context, id int64) error
}

type adjudicatorService struct{}

func NewAdjudicatorService() AdjudicatorService { return &adjudicatorService{} }

// List 按 rating 降序返回全部评委（Redis 短 TTL 缓存）
func (s *adjudicatorService) List(ctx context.Context) ([]model.Adjudicator, error) {
	useCache := config.GetFeatureFlag("leaderboard_cache")
	key := infrds.LeaderboardKey("adjudicator")
	if r := infrds.Client(); r != nil && useCache {
		if bs, err := r.Get(ctx, key).Bytes(); err == nil {
			var cached []model.Adjudicator
			if common.JsonUnmarshal(bs, &cached) == nil {
				return cached, nil
			}
		} else if err != goredis.Nil {
			logger.WarnCtx(ctx, "[Adjudicator] leaderboard cache read failed", zap.Error(err))
		}
	}

	list, err := model.ListAdjudicators(ctx, infmysql.SQLX())
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

func (s *adjudicatorService) Create(ctx context.Context, in AdjudicatorInput) (*model.Adjudicator, error) {
	a := &model.Adjudicator{Name: in.Name, Rating: defaultRating}
	if in.Rating != nil {
		a.Rating = *in.Rating
	}
	if in.VerdictAccuracy != nil {
		a.VerdictAccuracy = *in.VerdictAccuracy
	}
	if in.FeedbackScore != nil {
		a.FeedbackScore = *in.FeedbackScore
	}

	if err := a.Insert(ctx, infmysql.SQLX()); err != nil {
		return nil, ErrPersistence
	}
	invalidateLeaderboard(ctx, "adjudicator")
	return a, nil
}

func (s *adjudicatorService) Get(ctx context.Context, id int64) (*model.Adjudicator, error) {
	a, err := model.GetAdjudicator(ctx, infmysql.SQLX(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, ErrPersistence
	}
	return a, nil
}

func (s *adjudicatorService) Update(ctx context.Context, id int64, in AdjudicatorInput) (*model.Adjudicator, error) {
	db := infmysql.SQLX()
	if _, err := model.GetAdjudicator(ctx, db, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, ErrPersistence
	}

	upd := model.AdjudicatorUpdate{
		Rating:          in.Rating,
		VerdictAccuracy: in.VerdictAccuracy,
		FeedbackScore:   in.FeedbackScore,
	}
	if in.Name != "" {
		upd.Name = &in.Name
	}
	if _, err := model.UpdateAdjudicator(ctx, db, id, upd); err != nil {
		return nil, ErrPersistence
	}
	invalidateLeaderboard(ctx, "adjudicator")

	a, err := model.GetAdjudicator(ctx, db, id)
	if err != nil {
		return nil, ErrPersistence
	}
	return a, nil
}

func (s *adjudicatorService) Delete(ctx context.Context, id int64) error {
	n, err := model.DeleteAdjudicator(ctx, infmysql.SQLX(), id)
	if err != nil {
		return ErrPersistence
	}
	if n == 0 {
		return ErrNotFound
	}
	invalidateLeaderboard(ctx, "adjudicator")
	return nil
}
