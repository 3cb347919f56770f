package redis

// Redis Key 定义与构造器
// 统一管理业务使用的 Redis Key，避免散落的魔法字符串。

const (
	// PrefixLeaderboard：排行榜缓存 Key 的前缀。
	// 缓存按 rating 降序的参与者列表 JSON，降低高频查询的数据库压力。
	PrefixLeaderboard = "rank:board:"

	// PrefixMatchResult：比赛记录缓存 Key 的前缀。
	// 提交成功后写入，供 GET /api/match/:match_no 快速查询。
	PrefixMatchResult = "rank:match:"
)

// LeaderboardKey：构造排行榜缓存 Key。形如：rank:board:{kind}，kind 为 debater|adjudicator
func LeaderboardKey(kind string) string { return PrefixLeaderboard + kind }

// MatchResultKey：构造比赛记录缓存 Key。形如：rank:match:{match_no}
func MatchResultKey(matchNo string) string { return PrefixMatchResult + matchNo }
