package api

import (
	"database/sql"
	"errors"
	"time"

	"github.com/Kronicle-Debating-Society/ranking/common"
	"github.com/Kronicle-Debating-Society/ranking/common/logger"
	helper "github.com/Kronicle-Debating-Society/ranking/internal/common/helper"
	"github.com/Kronicle-Debating-Society/ranking/internal/common/response"
	infmysql "github.com/Kronicle-Debating-Society/ranking/internal/infra/mysql"
	infrds "github.com/Kronicle-Debating-Society/ranking/internal/infra/redis"
	"github.com/Kronicle-Debating-Society/ranking/internal/model"
	"github.com/Kronicle-Debating-Society/ranking/internal/service"

	beego "github.com/beego/beego/v2/server/web"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var newMatchService = service.NewMatchService

// MatchController 比赛结算接口
// POST /api/match     提交比赛结果并结算双方评分
// GET  /api/match/:match_no  查询结算后的比赛记录（Redis 缓存优先，miss 回源 DB）
type MatchController struct{ beego.Controller }

// Submit 提交比赛结果
// 步骤：
// 1) 解析入参与基本校验（仅接受 JSON）
// 2) 调用 Service 层执行结算
// 3) 按错误类型映射 HTTP 状态码：400 参数错误；404 辩手不存在；500 落库失败
// 部分落库（评分已更新但后续写入失败）返回 500 + 业务码 2010，并附带明细
func (c *MatchController) Submit() {
	traceID := helper.GetTraceID(c.Ctx)
	mp, ok, msg := helper.ParseAndValidateMatch(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, traceID)
		return
	}

	out, err := newMatchService().SubmitMatch(c.Ctx.Request.Context(), service.MatchInput{
		GovTeam: mp.GovTeam,
		OppTeam: mp.OppTeam,
		Verdict: mp.Verdict,
		TraceID: traceID,
	})
	if err != nil {
		var pse *service.PartialSettleError
		switch {
		case errors.Is(err, service.ErrBadRequest):
			response.BadRequest(&c.Controller, "invalid request", traceID)
		case errors.Is(err, service.ErrDebaterNotFound):
			response.NotFound(&c.Controller, "debater not found", traceID)
		case errors.As(err, &pse):
			// 评分部分落库，返回明细供人工/回放补偿
			c.Ctx.Output.SetStatus(500)
			c.Data["json"] = response.APIResponse{
				Code:    response.CodePartialSettle,
				Message: "rating settlement partially applied",
				Data: map[string]interface{}{
					"match_no": pse.MatchNo,
					"applied":  pse.Applied,
					"failed":   pse.Failed,
				},
				TraceID:   traceID,
				Timestamp: time.Now().UnixMilli(),
			}
			_ = c.ServeJSON()
		default:
			response.InternalError(&c.Controller, traceID)
		}
		return
	}

	response.Success(&c.Controller, map[string]interface{}{
		"match_no": out.MatchNo,
	}, traceID)
}

// GetMatch 按比赛编号查询结算记录
func (c *MatchController) GetMatch() {
	traceID := helper.GetTraceID(c.Ctx)
	matchNo := c.Ctx.Input.Param(":match_no")
	if matchNo == "" {
		response.BadRequest(&c.Controller, "match_no is required", traceID)
		return
	}

	ctx := c.Ctx.Request.Context()

	// 读缓存；Redis 不可用或未命中均回源 DB
	if r := infrds.Client(); r != nil {
		if bs, err := r.Get(ctx, infrds.MatchResultKey(matchNo)).Bytes(); err == nil {
			var cached map[string]interface{}
			if common.JsonUnmarshal(bs, &cached) == nil {
				response.Success(&c.Controller, cached, traceID)
				return
			}
		} else if err != goredis.Nil {
			logger.WarnCtx(ctx, "[GetMatch] cache read failed", zap.Error(err))
		}
	}

	// DB fallback：读取并回填 Redis
	m, err := model.GetMatchByNo(ctx, infmysql.SQLX(), matchNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.NotFound(&c.Controller, "match not found", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	data := service.MatchCachePayload(m)

	if r := infrds.Client(); r != nil {
		if b, e := common.JsonMarshal(data); e == nil {
			_ = r.Set(ctx, infrds.MatchResultKey(matchNo), b, 2*time.Minute).Err()
		}
	}

	// 补偿日志中尚未应用的评分意向行（瞬态审计信息，逐次实时查询，不进缓存）
	if pending, err := model.ListPendingRatingUpdates(ctx, infmysql.SQLX(), matchNo); err == nil && len(pending) > 0 {
		ids := make([]int64, 0, len(pending))
		for _, p := range pending {
			ids = append(ids, p.DebaterID)
		}
		data["pending_rating_updates"] = ids
	}

	response.Success(&c.Controller, data, traceID)
}
