package api

import (
	"errors"

	helper "github.com/Kronicle-Debating-Society/ranking/internal/common/helper"
	"github.com/Kronicle-Debating-Society/ranking/internal/common/response"
	"github.com/Kronicle-Debating-Society/ranking/internal/service"

	beego "github.com/beego/beego/v2/server/web"
)

var newDebaterService = service.NewDebaterService

// DebaterController 辩手管理接口：/api/debaters
// - List 按 rating 降序返回排行榜（走 Redis 缓存，miss 时回源 DB）
// - Create 新建辩手，rating 缺省 1500
// - Get/Put/Delete 按ID操作
type DebaterController struct{ beego.Controller }

// List GET /api/debaters
func (c *DebaterController) List() {
	traceID := helper.GetTraceID(c.Ctx)
	list, err := newDebaterService().List(c.Ctx.Request.Context())
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}
	response.Success(&c.Controller, list, traceID)
}

// Create POST /api/debaters
func (c *DebaterController) Create() {
	traceID := helper.GetTraceID(c.Ctx)
	dp, ok, msg := helper.ParseAndValidateDebaterCreate(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, traceID)
		return
	}
	d, err := newDebaterService().Create(c.Ctx.Request.Context(), service.DebaterInput{
		Name:   dp.Name,
		Rating: dp.Rating,
	})
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}
	response.Created(&c.Controller, d, traceID)
}

// Get GET /api/debaters/:id
func (c *DebaterController) Get() {
	traceID := helper.GetTraceID(c.Ctx)
	id, ok := helper.ParseIDParam(c.Ctx, ":id")
	if !ok {
		response.BadRequest(&c.Controller, "invalid id", traceID)
		return
	}
	d, err := newDebaterService().Get(c.Ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(&c.Controller, "debater not found", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}
	response.Success(&c.Controller, d, traceID)
}

// Put PUT /api/debaters/:id
func (c *DebaterController) Put() {
	traceID := helper.GetTraceID(c.Ctx)
	id, ok := helper.ParseIDParam(c.Ctx, ":id")
	if !ok {
		response.BadRequest(&c.Controller, "invalid id", traceID)
		return
	}
	dp, ok, msg := helper.ParseAndValidateDebaterUpdate(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, traceID)
		return
	}
	d, err := newDebaterService().Update(c.Ctx.Request.Context(), id, service.DebaterInput{
		Name:   dp.Name,
		Rating: dp.Rating,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(&c.Controller, "debater not found", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}
	response.Success(&c.Controller, d, traceID)
}

// Delete DELETE /api/debaters/:id
func (c *DebaterController) Delete() {
	traceID := helper.GetTraceID(c.Ctx)
	id, ok := helper.ParseIDParam(c.Ctx, ":id")
	if !ok {
		response.BadRequest(&c.Controller, "invalid id", traceID)
		return
	}
	if err := newDebaterService().Delete(c.Ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(&c.Controller, "debater not found", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}
	response.Success(&c.Controller, nil, traceID)
}
