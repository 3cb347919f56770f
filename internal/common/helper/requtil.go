package helper

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Kronicle-Debating-Society/ranking/internal/service"

	beegocontext "github.com/beego/beego/v2/server/web/context"
)

// IsJSONContentType 判断是否为 JSON 请求
func IsJSONContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.Contains(ct, "json")
}

// 默认输入保护参数
const (
	defaultJSONMaxBytes int64         = 1 << 20 // 1MB
	defaultParseTimeout time.Duration = 1 * time.Second

	maxTeamSize = 16
	maxNameLen  = 64
)

type deadlineReader struct {
	r        io.Reader
	deadline time.Time
}

func (dr *deadlineReader) Read(p []byte) (int, error) {
	if time.Now().After(dr.deadline) {
		return 0, fmt.Errorf("read timeout")
	}
	return dr.r.Read(p)
}

// jsonBodyReader 为请求体增加大小限制与解析超时保护
func jsonBodyReader(ctx *beegocontext.Context) io.Reader {
	lr := io.LimitReader(ctx.Request.Body, defaultJSONMaxBytes)
	return &deadlineReader{r: lr, deadline: time.Now().Add(defaultParseTimeout)}
}

// GetTraceID 统一提取 trace_id：优先从中间件注入的数据取，其次从常见请求头降级
func GetTraceID(ctx *beegocontext.Context) string {
	if v := ctx.Input.GetData("trace_id"); v != nil {
		return fmt.Sprint(v)
	}
	if h := strings.TrimSpace(ctx.Input.Header("X-Trace-ID")); h != "" {
		return h
	}
	if h := strings.TrimSpace(ctx.Input.Header("Trace-Id")); h != "" {
		return h
	}
	return ""
}

// parseByContentType 按 Content-Type 选择解析函数
func parseByContentType[T any](ctx *beegocontext.Context,
	jsonParser func(io.Reader) (T, bool, string),
	formParser func(*beegocontext.Context) (T, bool, string),
) (T, bool, string) {
	ct := ctx.Input.Header("Content-Type")
	if IsJSONContentType(ct) {
		return jsonParser(jsonBodyReader(ctx))
	}
	return formParser(ctx)
}

// ParseIDParam 解析路径参数中的数字ID
func ParseIDParam(ctx *beegocontext.Context, name string) (int64, bool) {
	raw := strings.TrimSpace(ctx.Input.Param(name))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// -------- Match helpers --------

// MatchParsed 解析后的比赛提交入参（与控制器/服务层解耦）
type MatchParsed struct {
	GovTeam []service.TeamEntry `json:"gov_team"`
	OppTeam []service.TeamEntry `json:"opp_team"`
	Verdict string              `json:"verdict"`
}

// ParseMatchFromJSON 解析 JSON 到 MatchParsed。失败返回 false 与错误消息。
func ParseMatchFromJSON(r io.Reader) (MatchParsed, bool, string) {
	var out MatchParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return MatchParsed{}, false, "invalid json body"
	}
	return out, true, ""
}

// ValidateMatch 校验比赛提交入参。失败返回 false 与可读错误信息。
func ValidateMatch(in *MatchParsed) (bool, string) {
	if len(in.GovTeam) == 0 || len(in.OppTeam) == 0 || strings.TrimSpace(in.Verdict) == "" {
		return false, "missing required fields: gov_team/opp_team/verdict"
	}
	if len(in.GovTeam) > maxTeamSize || len(in.OppTeam) > maxTeamSize {
		return false, "team size exceeds limit"
	}
	v := strings.ToLower(strings.TrimSpace(in.Verdict))
	if v != "gov" && v != "opp" {
		return false, "verdict must be gov|opp"
	}
	in.Verdict = v
	for _, e := range append(append([]service.TeamEntry{}, in.GovTeam...), in.OppTeam...) {
		if e.DebaterID <= 0 {
			return false, "debater_id must be positive integer"
		}
	}
	return true, ""
}

// ParseAndValidateMatch 比赛提交仅接受 JSON 请求体
func ParseAndValidateMatch(ctx *beegocontext.Context) (MatchParsed, bool, string) {
	if !IsJSONContentType(ctx.Input.Header("Content-Type")) {
		return MatchParsed{}, false, "content-type must be application/json"
	}
	out, ok, msg := ParseMatchFromJSON(jsonBodyReader(ctx))
	if !ok {
		return MatchParsed{}, false, msg
	}
	if ok, msg := ValidateMatch(&out); !ok {
		return MatchParsed{}, false, msg
	}
	return out, true, ""
}

// -------- Debater helpers --------

// DebaterParsed 辩手创建/更新入参；Rating 为 nil 表示未提供
type DebaterParsed struct {
	Name   string   `json:"name"`
	Rating *float64 `json:"rating"`
}

func ParseDebaterFromJSON(r io.Reader) (DebaterParsed, bool, string) {
	var out DebaterParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return DebaterParsed{}, false, "invalid json body"
	}
	return out, true, ""
}

func ParseDebaterFromForm(ctx *beegocontext.Context) (DebaterParsed, bool, string) {
	var out DebaterParsed
	out.Name = strings.TrimSpace(ctx.Input.Query("name"))
	if rs := strings.TrimSpace(ctx.Input.Query("rating")); rs != "" {
		v, err := strconv.ParseFloat(rs, 64)
		if err != nil {
			return DebaterParsed{}, false, "rating must be numeric"
		}
		out.Rating = &v
	}
	return out, true, ""
}

// ValidateDebaterCreate 创建时 name 必填
func ValidateDebaterCreate(in *DebaterParsed) (bool, string) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return false, "name is required"
	}
	if len(in.Name) > maxNameLen {
		return false, "name too long"
	}
	return true, ""
}

// ValidateDebaterUpdate 更新允许部分字段，但至少提供一个
func ValidateDebaterUpdate(in *DebaterParsed) (bool, string) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" && in.Rating == nil {
		return false, "nothing to update"
	}
	if len(in.Name) > maxNameLen {
		return false, "name too long"
	}
	return true, ""
}

// ParseAndValidateDebaterCreate 按 Content-Type 自动解析并做创建校验
func ParseAndValidateDebaterCreate(ctx *beegocontext.Context) (DebaterParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseDebaterFromJSON, ParseDebaterFromForm)
	if !ok {
		return DebaterParsed{}, false, msg
	}
	if ok, msg := ValidateDebaterCreate(&out); !ok {
		return DebaterParsed{}, false, msg
	}
	return out, true, ""
}

// ParseAndValidateDebaterUpdate 按 Content-Type 自动解析并做更新校验
func ParseAndValidateDebaterUpdate(ctx *beegocontext.Context) (DebaterParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseDebaterFromJSON, ParseDebaterFromForm)
	if !ok {
		return DebaterParsed{}, false, msg
	}
	if ok, msg := ValidateDebaterUpdate(&out); !ok {
		return DebaterParsed{}, false, msg
	}
	return out, true, ""
}

// -------- Adjudicator helpers --------

// AdjudicatorParsed 评委创建/更新入参；指针字段为 nil 表示未提供
type AdjudicatorParsed struct {
	Name            string   `json:"name"`
	Rating          *float64 `json:"rating"`
	VerdictAccuracy *float64 `json:"verdict_accuracy"`
	FeedbackScore   *float64 `json:"feedback_score"`
}

func ParseAdjudicatorFromJSON(r io.Reader) (AdjudicatorParsed, bool, string) {
	var out AdjudicatorParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return AdjudicatorParsed{}, false, "invalid json body"
	}
	return out, true, ""
}

func ParseAdjudicatorFromForm(ctx *beegocontext.Context) (AdjudicatorParsed, bool, string) {
	var out AdjudicatorParsed
	out.Name = strings.TrimSpace(ctx.Input.Query("name"))
	for _, f := range []struct {
		key string
		dst **float64
	}{
		{"rating", &out.Rating},
		{"verdict_accuracy", &out.VerdictAccuracy},
		{"feedback_score", &out.FeedbackScore},
	} {
		if rs := strings.TrimSpace(ctx.Input.Query(f.key)); rs != "" {
			v, err := strconv.ParseFloat(rs, 64)
			if err != nil {
				return AdjudicatorParsed{}, false, f.key + " must be numeric"
			}
			*f.dst = &v
		}
	}
	return out, true, ""
}

// ValidateAdjudicatorCreate 创建时 name 必填
func ValidateAdjudicatorCreate(in *AdjudicatorParsed) (bool, string) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return false, "name is required"
	}
	if len(in.Name) > maxNameLen {
		return false, "name too long"
	}
	return true, ""
}

// ValidateAdjudicatorUpdate 更新允许部分字段，但至少提供一个
func ValidateAdjudicatorUpdate(in *AdjudicatorParsed) (bool, string) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" && in.Rating == nil && in.VerdictAccuracy == nil && in.FeedbackScore == nil {
		return false, "nothing to update"
	}
	if len(in.Name) > maxNameLen {
		return false, "name too long"
	}
	return true, ""
}

// ParseAndValidateAdjudicatorCreate 按 Content-Type 自动解析并做创建校验
func ParseAndValidateAdjudicatorCreate(ctx *beegocontext.Context) (AdjudicatorParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseAdjudicatorFromJSON, ParseAdjudicatorFromForm)
	if !ok {
		return AdjudicatorParsed{}, false, msg
	}
	if ok, msg := ValidateAdjudicatorCreate(&out); !ok {
		return AdjudicatorParsed{}, false, msg
	}
	return out, true, ""
}

// ParseAndValidateAdjudicatorUpdate 按 Content-Type 自动解析并做更新校验
func ParseAndValidateAdjudicatorUpdate(ctx *beegocontext.Context) (AdjudicatorParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseAdjudicatorFromJSON, ParseAdjudicatorFromForm)
	if !ok {
		return AdjudicatorParsed{}, false, msg
	}
	if ok, msg := ValidateAdjudicatorUpdate(&out); !ok {
		return AdjudicatorParsed{}, false, msg
	}
	return out, true, ""
}
