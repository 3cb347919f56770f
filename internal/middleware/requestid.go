package middleware

import (
	"github.com/Kronicle-Debating-Society/ranking/common/logger"

	"github.com/beego/beego/v2/server/web/context"
	"github.com/google/uuid"
)

// RequestIDFilter 为每个请求注入并返回一个 X-Request-Id，用于链路追踪的最小闭环
// trace_id 同时写入请求 context，服务层的 *Ctx 日志由此带上 trace 字段
func RequestIDFilter(ctx *context.Context) {
	id := ctx.Input.Header("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	ctx.Input.SetData("trace_id", id)
	ctx.Output.Header("X-Request-Id", id)
	ctx.Request = ctx.Request.WithContext(logger.WithTraceID(ctx.Request.Context(), id))
}
