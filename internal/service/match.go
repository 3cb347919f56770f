package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Kronicle-Debating-Society/ranking/common"
	"github.com/Kronicle-Debating-Society/ranking/common/logger"
	infmysql "github.com/Kronicle-Debating-Society/ranking/internal/infra/mysql"
	infrds "github.com/Kronicle-Debating-Society/ranking/internal/infra/redis"
	"github.com/Kronicle-Debating-Society/ranking/internal/metrics"
	"github.com/Kronicle-Debating-Society/ranking/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 胜方取值
const (
	VerdictGov = "gov"
	VerdictOpp = "opp"
)

// TeamEntry 队伍成员：辩手ID + 本场表现分（约定 0~100 区间，系统不强制）
type TeamEntry struct {
	DebaterID int64   `json:"debater_id"`
	Score     float64 `json:"score"`
}

// MatchInput 比赛提交入参
type MatchInput struct {
	GovTeam []TeamEntry
	OppTeam []TeamEntry
	Verdict string // gov|opp
	TraceID string
}

// MatchOutput 提交结果
type MatchOutput struct {
	MatchNo string
}

type MatchService interface {
	SubmitMatch(ctx context.Context, in MatchInput) (*MatchOutput, error)
}

type matchService struct{}

func NewMatchService() MatchService { return &matchService{} }

var (
	ErrBadRequest      = errors.New("bad request")
	ErrDebaterNotFound = errors.New("debater not found")
	ErrPersistence     = errors.New("persistence failed")
)

// PartialSettleError 记录部分落库的结算：Applied 已写入新分，Failed 未写入。
// 补偿日志 rating_update_log 中 applied=0 的行与 Failed 对应，供回放/审计。
type PartialSettleError struct {
	MatchNo string
	Applied []int64
	Failed  []int64
}

func (e *PartialSettleError) Error() string {
	return fmt.Sprintf("partial rating settlement: match_no=%s applied=%v failed=%v", e.MatchNo, e.Applied, e.Failed)
}

func (e *PartialSettleError) Unwrap() error { return ErrPersistence }

// SubmitMatch: 结算一场比赛
// 步骤（顺序即数值语义，不可调整）：
//  1. 校验入参（任何变更发生前失败返回）
//  2. 按ID集合取两侧辩手，并按提交顺序重排（IN 查询不保证顺序）
//  3. 计算每位辩手的新分（见 rating.go）
//  4. 写入补偿日志意向行，随后对每位辩手并发覆盖 rating，逐行标记已应用
//  5. 插入不可变 Match 记录，写 outbox 事件，刷新缓存
//
// 无事务包裹：评分更新成功而比赛记录插入失败时系统处于部分落库状态，
// 依赖补偿日志保证可观测。重复提交会再次叠加增量（非幂等）。
func (s *matchService) SubmitMatch(ctx context.Context, in MatchInput) (*MatchOutput, error) {
	if len(in.GovTeam) == 0 || len(in.OppTeam) == 0 || strings.TrimSpace(in.Verdict) == "" {
		return nil, ErrBadRequest
	}
	if in.Verdict != VerdictGov && in.Verdict != VerdictOpp {
		return nil, ErrBadRequest
	}

	// 指标：在输入校验通过后开始计时
	start := time.Now()
	resultLabel := "fail"
	defer func() { metrics.RecordMatch(resultLabel, in.Verdict, start) }()

	db := infmysql.SQLX()

	// 取两侧辩手并重排为提交顺序；任何ID未命中则整单失败，不产生副作用
	govDebaters, missing, err := fetchTeam(ctx, in.GovTeam)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		logger.WarnCtx(ctx, "[SubmitMatch] gov team has unresolved debater ids", zap.Int64s("ids", missing))
		return nil, ErrDebaterNotFound
	}
	oppDebaters, missing, err := fetchTeam(ctx, in.OppTeam)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		logger.WarnCtx(ctx, "[SubmitMatch] opp team has unresolved debater ids", zap.Int64s("ids", missing))
		return nil, ErrDebaterNotFound
	}

	updates := computeRatingUpdates(in, govDebaters, oppDebaters)

	matchNo := newMatchNo()
	logger.InfoCtx(ctx, "[SubmitMatch] settling match",
		zap.String("match_no", matchNo),
		zap.String("verdict", in.Verdict),
		zap.Int("gov_size", len(in.GovTeam)),
		zap.Int("opp_size", len(in.OppTeam)))

	// 补偿日志：先写意向行，再应用增量
	intents := make([]model.RatingUpdateLog, 0, len(updates))
	for _, u := range updates {
		intents = append(intents, model.RatingUpdateLog{
			MatchNo:   matchNo,
			DebaterID: u.DebaterID,
			OldRating: u.OldRating,
			NewRating: u.NewRating,
			TraceID:   in.TraceID,
		})
	}
	if err := model.CreateRatingUpdateLogs(ctx, db, intents); err != nil {
		logger.ErrorCtx(ctx, "[SubmitMatch] write rating intent log failed",
			zap.String("match_no", matchNo), zap.Error(err))
		return nil, ErrPersistence
	}

	// 评分落库：每位辩手一行互不相关，并发应用，全部完成后统一判定
	var (
		mu      sync.Mutex
		applied []int64
		failed  []int64
		wg      sync.WaitGroup
	)
	for _, u := range updates {
		u := u
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := model.UpdateDebaterRating(ctx, db, u.DebaterID, u.NewRating); err != nil {
				logger.ErrorCtx(ctx, "[SubmitMatch] rating update failed",
					zap.String("match_no", matchNo), zap.Int64("debater_id", u.DebaterID), zap.Error(err))
				mu.Lock()
				failed = append(failed, u.DebaterID)
				mu.Unlock()
				return
			}
			if err := model.MarkRatingUpdateApplied(ctx, db, matchNo, u.DebaterID); err != nil {
				// 分数已生效，仅补偿日志标记失败：记录告警，不影响结算结果
				logger.WarnCtx(ctx, "[SubmitMatch] mark applied failed",
					zap.String("match_no", matchNo), zap.Int64("debater_id", u.DebaterID), zap.Error(err))
			}
			mu.Lock()
			applied = append(applied, u.DebaterID)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(failed) > 0 {
		// 不回滚已应用的增量，通过补偿日志暴露部分落库状态
		return nil, &PartialSettleError{MatchNo: matchNo, Applied: applied, Failed: failed}
	}

	// 插入不可变比赛记录（原始队伍数据按提交内容入库）
	govJSON, _ := common.JsonMarshal(in.GovTeam)
	oppJSON, _ := common.JsonMarshal(in.OppTeam)
	m := &model.Match{
		MatchNo: matchNo,
		GovTeam: string(govJSON),
		OppTeam: string(oppJSON),
		Verdict: in.Verdict,
		TraceID: in.TraceID,
	}
	if err := m.Insert(ctx, db); err != nil {
		// 评分已全部生效但记录缺失：保持现状并大声记录
		logger.ErrorCtx(ctx, "[SubmitMatch] insert match record failed after ratings applied",
			zap.String("match_no", matchNo), zap.Error(err))
		return nil, ErrPersistence
	}

	// outbox 事件：由调度器异步投递到 MQ，写失败不阻塞结算
	if err := model.CreateOutbox(ctx, db, "match_settled", matchNo, map[string]any{
		"event":    "match_settled",
		"match_no": matchNo,
		"verdict":  in.Verdict,
		"gov_team": in.GovTeam,
		"opp_team": in.OppTeam,
		"trace_id": in.TraceID,
	}); err != nil {
		logger.WarnCtx(ctx, "[SubmitMatch] write outbox failed",
			zap.String("match_no", matchNo), zap.Error(err))
	}

	refreshCaches(ctx, m)

	resultLabel = "success"
	logger.InfoCtx(ctx, "[SubmitMatch] match settled",
		zap.String("match_no", matchNo),
		zap.Int("updated", len(applied)))
	return &MatchOutput{MatchNo: matchNo}, nil
}

// fetchTeam 取一侧辩手并按提交顺序重排。
// 返回的 missing 为未解析到的辩手ID集合。
func fetchTeam(ctx context.Context, entries []TeamEntry) ([]model.Debater, []int64, error) {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.DebaterID)
	}

	rows, err := model.ListDebatersByIDs(ctx, infmysql.SQLX(), ids)
	if err != nil {
		return nil, nil, ErrPersistence
	}

	ordered, missing := reorderDebaters(entries, rows)
	if len(missing) > 0 {
		return nil, missing, nil
	}
	return ordered, nil, nil
}

// reorderDebaters 将查询结果重排为提交顺序，保证 entries[i] 与返回值[i] 配对。
// missing 为未解析到的辩手ID。
func reorderDebaters(entries []TeamEntry, rows []model.Debater) (ordered []model.Debater, missing []int64) {
	byID := make(map[int64]model.Debater, len(rows))
	for _, d := range rows {
		byID[d.ID] = d
	}

	ordered = make([]model.Debater, 0, len(entries))
	for _, e := range entries {
		d, ok := byID[e.DebaterID]
		if !ok {
			missing = append(missing, e.DebaterID)
			continue
		}
		ordered = append(ordered, d)
	}
	return ordered, missing
}

// newMatchNo 生成比赛编号：M + 去横线 UUID
func newMatchNo() string {
	return "M" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// MatchCachePayload 构造比赛查询的响应载荷，写缓存与回源 DB 共用同一形状。
// 队伍字段解码为数组，trace_id 不对外。
func MatchCachePayload(m *model.Match) map[string]interface{} {
	var govTeam, oppTeam []TeamEntry
	_ = common.JsonUnmarshal([]byte(m.GovTeam), &govTeam)
	_ = common.JsonUnmarshal([]byte(m.OppTeam), &oppTeam)
	return map[string]interface{}{
		"match_no":   m.MatchNo,
		"gov_team":   govTeam,
		"opp_team":   oppTeam,
		"verdict":    m.Verdict,
		"created_at": m.CreatedAt,
	}
}

// refreshCaches 结算成功后使排行榜缓存失效，并缓存比赛记录
func refreshCaches(ctx context.Context, m *model.Match) {
	r := infrds.Client()
	if r == nil {
		return
	}
	_ = r.Del(ctx, infrds.LeaderboardKey("debater")).Err()
	if b, err := common.JsonMarshal(MatchCachePayload(m)); err == nil {
		_ = r.Set(ctx, infrds.MatchResultKey(m.MatchNo), b, 2*time.Minute).Err()
	}
}
