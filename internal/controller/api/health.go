package api

import (
	"context"
	"time"

	infmysql "github.com/Kronicle-Debating-Society/ranking/internal/infra/mysql"
	infrds "github.com/Kronicle-Debating-Society/ranking/internal/infra/redis"

	beego "github.com/beego/beego/v2/server/web"
)

// HealthController 提供健康检查端点：/healthz 与 /readyz
// readyz 探测 MySQL/Redis 连通性，任一不可用返回 503

type HealthController struct{ beego.Controller }

// Healthz 存活探针：仅返回进程存活
func (c *HealthController) Healthz() {
	c.Ctx.Output.SetStatus(200)
	_ = c.Ctx.Output.Body([]byte("ok"))
}

// Readyz 就绪探针
func (c *HealthController) Readyz() {
	ctx, cancel := context.WithTimeout(c.Ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if db := infmysql.DB(); db != nil {
		if err := db.PingContext(ctx); err != nil {
			c.Ctx.Output.SetStatus(503)
			_ = c.Ctx.Output.Body([]byte("mysql unavailable"))
			return
		}
	}
	if err := infrds.Ping(ctx, 1*time.Second); err != nil {
		c.Ctx.Output.SetStatus(503)
		_ = c.Ctx.Output.Body([]byte("redis unavailable"))
		return
	}

	c.Ctx.Output.SetStatus(200)
	_ = c.Ctx.Output.Body([]byte("ready"))
}
