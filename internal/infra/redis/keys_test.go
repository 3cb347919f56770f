package redis

import "testing"

func TestKeys(t *testing.T) {
	if k := LeaderboardKey("debater"); k != "rank:board:debater" {
		t.Fatalf("LeaderboardKey = %q", k)
	}
	if k := MatchResultKey("M123"); k != "rank:match:M123" {
		t.Fatalf("MatchResultKey = %q", k)
	}
}
