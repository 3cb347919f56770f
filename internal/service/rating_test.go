package service

import (
	"math"
	"testing"

	"github.com/Kronicle-Debating-Society/ranking/internal/model"
)

func TestComputeRatingUpdatesEqualRatings(t *testing.T) {
	// 1v1，双方均 1500 分，正方胜，表现分 90 vs 60
	in := MatchInput{
		GovTeam: []TeamEntry{{DebaterID: 1, Score: 90}},
		OppTeam: []TeamEntry{{DebaterID: 2, Score: 60}},
		Verdict: VerdictGov,
	}
	gov := []model.Debater{{ID: 1, Rating: 1500}}
	opp := []model.Debater{{ID: 2, Rating: 1500}}

	updates := computeRatingUpdates(in, gov, opp)
	if len(updates) != 2 {
		t.Fatalf("updates len = %d, want 2", len(updates))
	}
	// 胜方：1500 + 20*0.5 + 15*0.3 = 1514.5 -> 1515
	if updates[0].NewRating != 1515 {
		t.Fatalf("gov new rating = %v, want 1515", updates[0].NewRating)
	}
	// 败方：1500 - 10 - 4.5 = 1485.5 -> 1486
	if updates[1].NewRating != 1486 {
		t.Fatalf("opp new rating = %v, want 1486", updates[1].NewRating)
	}
}

func TestComputeRatingUpdatesAsymmetric(t *testing.T) {
	// 低分方爆冷取胜，表现分均在基准线上（无表现分修正）
	in := MatchInput{
		GovTeam: []TeamEntry{{DebaterID: 1, Score: 75}},
		OppTeam: []TeamEntry{{DebaterID: 2, Score: 75}},
		Verdict: VerdictGov,
	}
	gov := []model.Debater{{ID: 1, Rating: 1400}}
	opp := []model.Debater{{ID: 2, Rating: 1600}}

	updates := computeRatingUpdates(in, gov, opp)
	if updates[0].NewRating != 1415 {
		t.Fatalf("gov new rating = %v, want 1415", updates[0].NewRating)
	}
	if updates[1].NewRating != 1585 {
		t.Fatalf("opp new rating = %v, want 1585", updates[1].NewRating)
	}
}

func TestComputeRatingUpdatesTeams(t *testing.T) {
	// 2v2：每人以对方队伍均分计算预期胜率
	in := MatchInput{
		GovTeam: []TeamEntry{{DebaterID: 1, Score: 80}, {DebaterID: 2, Score: 70}},
		OppTeam: []TeamEntry{{DebaterID: 3, Score: 75}, {DebaterID: 4, Score: 75}},
		Verdict: VerdictGov,
	}
	gov := []model.Debater{{ID: 1, Rating: 1500}, {ID: 2, Rating: 1700}}
	opp := []model.Debater{{ID: 3, Rating: 1500}, {ID: 4, Rating: 1500}}

	updates := computeRatingUpdates(in, gov, opp)
	want := []struct {
		id     int64
		rating float64
	}{
		{1, 1512}, // 1500 + 20*0.5 + 5*0.3 = 1511.5 -> 1512
		{2, 1703}, // 1700 + 20*(1-0.75975) - 5*0.3 = 1703.305 -> 1703
		{3, 1493}, // 1500 - 20*0.35994 = 1492.80 -> 1493
		{4, 1493},
	}
	for i, w := range want {
		if updates[i].DebaterID != w.id {
			t.Fatalf("updates[%d].DebaterID = %d, want %d", i, updates[i].DebaterID, w.id)
		}
		if updates[i].NewRating != w.rating {
			t.Fatalf("updates[%d].NewRating = %v, want %v", i, updates[i].NewRating, w.rating)
		}
	}
}

func TestComputeRatingUpdatesOrder(t *testing.T) {
	// 输出顺序：正方在前，且与提交顺序一致
	in := MatchInput{
		GovTeam: []TeamEntry{{DebaterID: 7, Score: 75}, {DebaterID: 5, Score: 75}},
		OppTeam: []TeamEntry{{DebaterID: 9, Score: 75}},
		Verdict: VerdictOpp,
	}
	gov := []model.Debater{{ID: 7, Rating: 1500}, {ID: 5, Rating: 1500}}
	opp := []model.Debater{{ID: 9, Rating: 1500}}

	updates := computeRatingUpdates(in, gov, opp)
	wantIDs := []int64{7, 5, 9}
	for i, id := range wantIDs {
		if updates[i].DebaterID != id {
			t.Fatalf("updates[%d].DebaterID = %d, want %d", i, updates[i].DebaterID, id)
		}
	}
}

func TestExpectedScoreSymmetry(t *testing.T) {
	cases := [][2]float64{{1500, 1500}, {1400, 1600}, {1000, 2000}, {1485.5, 1514.5}}
	for _, c := range cases {
		sum := expectedScore(c[0], c[1]) + expectedScore(c[1], c[0])
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("expectedScore(%v,%v)+expectedScore(%v,%v) = %v, want 1", c[0], c[1], c[1], c[0], sum)
		}
	}
}

func TestRoundRatingHalfAwayFromZero(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{1485.5, 1486},
		{1514.5, 1515},
		{1485.4, 1485},
		{2.5, 3},
		{-2.5, -3},
	}
	for _, c := range cases {
		if got := roundRating(c.in); got != c.want {
			t.Fatalf("roundRating(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTeamAverageUsesSubmittedSize(t *testing.T) {
	debaters := []model.Debater{{Rating: 1400}, {Rating: 1600}}
	if avg := teamAverage(debaters, 2); avg != 1500 {
		t.Fatalf("teamAverage = %v, want 1500", avg)
	}
	// 分母固定为提交长度
	if avg := teamAverage(debaters, 4); avg != 750 {
		t.Fatalf("teamAverage with size 4 = %v, want 750", avg)
	}
}
