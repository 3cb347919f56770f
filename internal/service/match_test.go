package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/Kronicle-Debating-Society/ranking/common"
	"github.com/Kronicle-Debating-Society/ranking/internal/model"
)

func TestPartialSettleErrorUnwrap(t *testing.T) {
	var err error = &PartialSettleError{MatchNo: "M1", Applied: []int64{1}, Failed: []int64{2}}
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("PartialSettleError should unwrap to ErrPersistence")
	}
	var pse *PartialSettleError
	if !errors.As(err, &pse) {
		t.Fatalf("errors.As should match *PartialSettleError")
	}
	if pse.MatchNo != "M1" || len(pse.Applied) != 1 || len(pse.Failed) != 1 {
		t.Fatalf("unexpected PartialSettleError: %+v", pse)
	}
	if !strings.Contains(err.Error(), "M1") {
		t.Fatalf("Error() should contain match_no: %s", err.Error())
	}
}

func TestReorderDebaters(t *testing.T) {
	entries := []TeamEntry{{DebaterID: 3, Score: 80}, {DebaterID: 1, Score: 70}, {DebaterID: 2, Score: 90}}
	// 模拟 IN 查询乱序返回
	rows := []model.Debater{{ID: 1, Rating: 1500}, {ID: 2, Rating: 1600}, {ID: 3, Rating: 1400}}

	ordered, missing := reorderDebaters(entries, rows)
	if len(missing) != 0 {
		t.Fatalf("missing = %v, want empty", missing)
	}
	wantIDs := []int64{3, 1, 2}
	for i, id := range wantIDs {
		if ordered[i].ID != id {
			t.Fatalf("ordered[%d].ID = %d, want %d", i, ordered[i].ID, id)
		}
	}
}

func TestReorderDebatersMissing(t *testing.T) {
	entries := []TeamEntry{{DebaterID: 1}, {DebaterID: 42}, {DebaterID: 99}}
	rows := []model.Debater{{ID: 1, Rating: 1500}}

	_, missing := reorderDebaters(entries, rows)
	if len(missing) != 2 || missing[0] != 42 || missing[1] != 99 {
		t.Fatalf("missing = %v, want [42 99]", missing)
	}
}

func TestNewMatchNo(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		no := newMatchNo()
		if !strings.HasPrefix(no, "M") {
			t.Fatalf("match_no should start with M: %s", no)
		}
		if strings.Contains(no, "-") {
			t.Fatalf("match_no should not contain dashes: %s", no)
		}
		if len(no) != 33 {
			t.Fatalf("match_no len = %d, want 33: %s", len(no), no)
		}
		if seen[no] {
			t.Fatalf("duplicate match_no: %s", no)
		}
		seen[no] = true
	}
}

func TestMatchCachePayloadShape(t *testing.T) {
	m := &model.Match{
		MatchNo:   "Mdeadbeef",
		GovTeam:   `[{"debater_id":1,"score":88},{"debater_id":2,"score":79}]`,
		OppTeam:   `[{"debater_id":3,"score":70}]`,
		Verdict:   "gov",
		TraceID:   "trace-1",
		CreatedAt: 1700000000000,
	}

	data := MatchCachePayload(m)

	gov, ok := data["gov_team"].([]TeamEntry)
	if !ok {
		t.Fatalf("gov_team 应为解码后的数组, got %T", data["gov_team"])
	}
	if len(gov) != 2 || gov[0].DebaterID != 1 || gov[0].Score != 88 {
		t.Fatalf("gov_team 解码结果不符: %+v", gov)
	}
	opp, ok := data["opp_team"].([]TeamEntry)
	if !ok || len(opp) != 1 || opp[0].DebaterID != 3 {
		t.Fatalf("opp_team 解码结果不符: %v (%T)", data["opp_team"], data["opp_team"])
	}
	if _, has := data["trace_id"]; has {
		t.Fatalf("trace_id 不应出现在对外载荷中")
	}
	if _, has := data["pending_rating_updates"]; has {
		t.Fatalf("pending_rating_updates 为瞬态信息, 不应进入缓存载荷")
	}

	// 序列化后缓存命中与回源 DB 必须是同一形状: 队伍是数组而非字符串
	b, err := common.JsonMarshal(data)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var rt struct {
		MatchNo string      `json:"match_no"`
		GovTeam []TeamEntry `json:"gov_team"`
		OppTeam []TeamEntry `json:"opp_team"`
	}
	if err := common.JsonUnmarshal(b, &rt); err != nil {
		t.Fatalf("缓存载荷中队伍字段不是数组: %s", b)
	}
	if rt.MatchNo != "Mdeadbeef" || len(rt.GovTeam) != 2 || len(rt.OppTeam) != 1 {
		t.Fatalf("载荷往返结果不符: %s", b)
	}
}
