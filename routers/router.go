package routers

import (
	"github.com/Kronicle-Debating-Society/ranking/internal/controller/api"
	"github.com/Kronicle-Debating-Society/ranking/internal/metrics"
	"github.com/Kronicle-Debating-Society/ranking/internal/middleware"

	beego "github.com/beego/beego/v2/server/web"
)

// init 注册HTTP路由与全局过滤器
// 注意：此 init 在 main 加载配置之前执行，CORS/限流过滤器注册后
// 在请求期自行判断配置开关，未启用时直接放行
func init() {
	// 全局过滤器（按执行顺序）
	// 1. Panic Recovery（最先执行，捕获所有 panic）
	beego.InsertFilter("/*", beego.BeforeRouter, middleware.RecoveryFilter)

	// 2. 请求ID注入
	beego.InsertFilter("/*", beego.BeforeRouter, middleware.RequestIDFilter)

	// 3. CORS 处理（如果启用）
	beego.InsertFilter("/*", beego.BeforeExec, middleware.CORSFilter)

	// 4. HTTP 指标收集
	beego.InsertFilter("/*", beego.BeforeExec, metrics.HTTPMetricsFilter)
	beego.InsertFilter("/*", beego.FinishRouter, metrics.HTTPMetricsAfter)

	// 健康检查
	beego.Router("/healthz", &api.HealthController{}, "get:Healthz")
	beego.Router("/readyz", &api.HealthController{}, "get:Readyz")

	// ========== 业务 API ==========

	// 辩手管理
	beego.Router("/api/debaters", &api.DebaterController{}, "get:List;post:Create")
	beego.Router("/api/debaters/:id", &api.DebaterController{}, "get:Get;put:Put;delete:Delete")

	// 评委管理
	beego.Router("/api/adjudicators", &api.AdjudicatorController{}, "get:List;post:Create")
	beego.Router("/api/adjudicators/:id", &api.AdjudicatorController{}, "get:Get;put:Put;delete:Delete")

	// 比赛结算接口：限流（写入路径，叠加评分更新，代价最高）
	beego.InsertFilter("/api/match", beego.BeforeExec, middleware.RateLimitFilter)
	beego.Router("/api/match", &api.MatchController{}, "post:Submit")

	// 比赛查询接口：从 Redis 读取结算缓存，miss 回源 DB
	beego.Router("/api/match/:match_no", &api.MatchController{}, "get:GetMatch")
}
