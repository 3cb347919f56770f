package service

import (
	"math"

	"github.com/Kronicle-Debating-Society/ranking/internal/model"
)

// Elo 结算常量
// kFactor 控制单场分数交换幅度；scoreBaseline 为个人表现分基准线；
// scoreDiffWeight 为表现分差的权重
const (
	kFactor         = 20.0
	scoreBaseline   = 75.0
	scoreDiffWeight = 0.3
)

// RatingUpdate 单个辩手的结算结果
type RatingUpdate struct {
	DebaterID int64
	OldRating float64
	NewRating float64
}

// teamAverage 队伍平均分。
// 分母固定为提交的队伍长度，而非查到的人数（与线上行为保持一致）。
func teamAverage(debaters []model.Debater, submittedSize int) float64 {
	sum := 0.0
	for _, d := range debaters {
		sum += d.Rating
	}
	return sum / float64(submittedSize)
}

// expectedScore 预期胜率：1 / (1 + 10^((oppAvg - rating) / 400))
func expectedScore(rating, oppAvg float64) float64 {
	return 1 / (1 + math.Pow(10, (oppAvg-rating)/400))
}

// roundRating 四舍五入到整数分。
// 采用 round-half-away-from-zero（math.Round 语义），round(1485.5)=1486。
func roundRating(x float64) float64 {
	return math.Round(x)
}

// sideUpdates 计算单侧队伍的结算结果。
// entries[i] 与 debaters[i] 按提交顺序逐位配对（调用方负责预先重排）。
func sideUpdates(entries []TeamEntry, debaters []model.Debater, oppAvg float64, won bool) []RatingUpdate {
	actual := 0.0
	if won {
		actual = 1.0
	}

	out := make([]RatingUpdate, 0, len(debaters))
	for i, d := range debaters {
		expected := expectedScore(d.Rating, oppAvg)
		scoreDiff := entries[i].Score - scoreBaseline
		newRating := roundRating(d.Rating + kFactor*(actual-expected) + scoreDiff*scoreDiffWeight)
		out = append(out, RatingUpdate{
			DebaterID: d.ID,
			OldRating: d.Rating,
			NewRating: newRating,
		})
	}
	return out
}

// computeRatingUpdates 计算全场结算结果，正方在前反方在后。
// 结算顺序与公式：
//  1. govAvg/oppAvg 以对方队伍均分作为预期胜率的对手分
//  2. expected = 1 / (1 + 10^((oppAvg - rating) / 400))
//  3. newRating = round(rating + K*(actual - expected) + (score - 75) * 0.3)
func computeRatingUpdates(in MatchInput, govDebaters, oppDebaters []model.Debater) []RatingUpdate {
	govAvg := teamAverage(govDebaters, len(in.GovTeam))
	oppAvg := teamAverage(oppDebaters, len(in.OppTeam))

	updates := sideUpdates(in.GovTeam, govDebaters, oppAvg, in.Verdict == VerdictGov)
	updates = append(updates, sideUpdates(in.OppTeam, oppDebaters, govAvg, in.Verdict == VerdictOpp)...)
	return updates
}
