package helper

import (
	"strings"
	"testing"

	"github.com/Kronicle-Debating-Society/ranking/internal/service"
)

func TestParseMatchFromJSON(t *testing.T) {
	body := `{"gov_team":[{"debater_id":1,"score":90}],"opp_team":[{"debater_id":2,"score":60}],"verdict":"gov"}`
	mp, ok, msg := ParseMatchFromJSON(strings.NewReader(body))
	if !ok {
		t.Fatalf("parse failed: %s", msg)
	}
	if len(mp.GovTeam) != 1 || mp.GovTeam[0].DebaterID != 1 || mp.GovTeam[0].Score != 90 {
		t.Fatalf("gov_team parsed wrong: %+v", mp.GovTeam)
	}
	if mp.Verdict != "gov" {
		t.Fatalf("verdict = %q, want gov", mp.Verdict)
	}
}

func TestParseMatchFromJSONInvalid(t *testing.T) {
	if _, ok, _ := ParseMatchFromJSON(strings.NewReader("{not json")); ok {
		t.Fatalf("invalid json should fail")
	}
}

func validMatch() MatchParsed {
	return MatchParsed{
		GovTeam: []service.TeamEntry{{DebaterID: 1, Score: 90}},
		OppTeam: []service.TeamEntry{{DebaterID: 2, Score: 60}},
		Verdict: "gov",
	}
}

func TestValidateMatch(t *testing.T) {
	mp := validMatch()
	if ok, msg := ValidateMatch(&mp); !ok {
		t.Fatalf("valid match rejected: %s", msg)
	}

	cases := []struct {
		name   string
		mutate func(*MatchParsed)
	}{
		{"empty gov_team", func(m *MatchParsed) { m.GovTeam = nil }},
		{"empty opp_team", func(m *MatchParsed) { m.OppTeam = nil }},
		{"empty verdict", func(m *MatchParsed) { m.Verdict = "  " }},
		{"bad verdict", func(m *MatchParsed) { m.Verdict = "draw" }},
		{"bad debater_id", func(m *MatchParsed) { m.GovTeam[0].DebaterID = 0 }},
		{"oversized team", func(m *MatchParsed) {
			for i := 0; i < 20; i++ {
				m.GovTeam = append(m.GovTeam, service.TeamEntry{DebaterID: int64(i + 10), Score: 75})
			}
		}},
	}
	for _, c := range cases {
		m := validMatch()
		c.mutate(&m)
		if ok, _ := ValidateMatch(&m); ok {
			t.Fatalf("%s: should be rejected", c.name)
		}
	}
}

func TestValidateMatchNormalizesVerdict(t *testing.T) {
	mp := validMatch()
	mp.Verdict = " GOV "
	if ok, msg := ValidateMatch(&mp); !ok {
		t.Fatalf("verdict with case/space rejected: %s", msg)
	}
	if mp.Verdict != "gov" {
		t.Fatalf("verdict not normalized: %q", mp.Verdict)
	}
}

func TestValidateDebaterCreate(t *testing.T) {
	d := DebaterParsed{Name: "  Alice  "}
	if ok, msg := ValidateDebaterCreate(&d); !ok {
		t.Fatalf("valid debater rejected: %s", msg)
	}
	if d.Name != "Alice" {
		t.Fatalf("name not trimmed: %q", d.Name)
	}

	d = DebaterParsed{Name: "   "}
	if ok, _ := ValidateDebaterCreate(&d); ok {
		t.Fatalf("blank name should be rejected")
	}

	d = DebaterParsed{Name: strings.Repeat("x", 65)}
	if ok, _ := ValidateDebaterCreate(&d); ok {
		t.Fatalf("overlong name should be rejected")
	}
}

func TestValidateDebaterUpdate(t *testing.T) {
	d := DebaterParsed{}
	if ok, _ := ValidateDebaterUpdate(&d); ok {
		t.Fatalf("empty update should be rejected")
	}

	r := 1600.0
	d = DebaterParsed{Rating: &r}
	if ok, msg := ValidateDebaterUpdate(&d); !ok {
		t.Fatalf("rating-only update rejected: %s", msg)
	}

	d = DebaterParsed{Name: "Bob"}
	if ok, msg := ValidateDebaterUpdate(&d); !ok {
		t.Fatalf("name-only update rejected: %s", msg)
	}
}

func TestValidateAdjudicatorUpdate(t *testing.T) {
	a := AdjudicatorParsed{}
	if ok, _ := ValidateAdjudicatorUpdate(&a); ok {
		t.Fatalf("empty update should be rejected")
	}

	v := 0.85
	a = AdjudicatorParsed{VerdictAccuracy: &v}
	if ok, msg := ValidateAdjudicatorUpdate(&a); !ok {
		t.Fatalf("accuracy-only update rejected: %s", msg)
	}
}

func TestIsJSONContentType(t *testing.T) {
	cases := []struct {
		ct   string
		want bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"APPLICATION/JSON", true},
		{"text/plain", false},
		{"application/x-www-form-urlencoded", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsJSONContentType(c.ct); got != c.want {
			t.Fatalf("IsJSONContentType(%q) = %v, want %v", c.ct, got, c.want)
		}
	}
}
