package api

import (
	"errors"

	helper "github.com/Kronicle-Debating-Society/ranking/internal/common/helper"
	"github.com/Kronicle-Debating-Society/ranking/internal/common/response"
	"github.com/Kronicle-Debating-Society/ranking/internal/service"

	beego "github.com/beego/beego/v2/server/web"
)

var newAdjudicatorService = service.NewAdjudicatorService

// AdjudicatorController 评委管理接口：/api/adjudicators
// 结构与 DebaterController 对称，评委额外携带 verdict_accuracy / feedback_score
type AdjudicatorController struct{ beego.Controller }

// List GET /api/adjudicators
func (c *AdjudicatorController) List() {
	traceID := helper.GetTraceID(c.Ctx)
	list, err := newAdjudicatorService().List(c.Ctx.Request.Context())
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}
	response.Success(&c.Controller, list, traceID)
}

// Create POST /api/adjudicators
func (c *AdjudicatorController) Create() {
	traceID := helper.GetTraceID(c.Ctx)
	ap, ok, msg := helper.ParseAndValidateAdjudicatorCreate(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, traceID)
		return
	}
	a, err := newAdjudicatorService().Create(c.Ctx.Request.Context(), service.AdjudicatorInput{
		Name:            ap.Name,
		Rating:          ap.Rating,
		VerdictAccuracy: ap.VerdictAccuracy,
		FeedbackScore:   ap.FeedbackScore,
	})
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}
	response.Created(&c.Controller, a, traceID)
}

// Get GET /api/adjudicators/:id
func (c *AdjudicatorController) Get() {
	traceID := helper.GetTraceID(c.Ctx)
	id, ok := helper.ParseIDParam(c.Ctx, ":id")
	if !ok {
		response.BadRequest(&c.Controller, "invalid id", traceID)
		return
	}
	a, err := newAdjudicatorService().Get(c.Ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(&c.Controller, "adjudicator not found", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}
	response.Success(&c.Controller, a, traceID)
}

// Put PUT /api/adjudicators/:id
func (c *AdjudicatorController) Put() {
	traceID := helper.GetTraceID(c.Ctx)
	id, ok := helper.ParseIDParam(c.Ctx, ":id")
	if !ok {
		response.BadRequest(&c.Controller, "invalid id", traceID)
		return
	}
	ap, ok, msg := helper.ParseAndValidateAdjudicatorUpdate(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, traceID)
		return
	}
	a, err := newAdjudicatorService().Update(c.Ctx.Request.Context(), id, service.AdjudicatorInput{
		Name:            ap.Name,
		Rating:          ap.Rating,
		VerdictAccuracy: ap.VerdictAccuracy,
		FeedbackScore:   ap.FeedbackScore,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(&c.Controller, "adjudicator not found", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}
	response.Success(&c.Controller, a, traceID)
}

// Delete DELETE /api/adjudicators/:id
func (c *AdjudicatorController) Delete() {
	traceID := helper.GetTraceID(c.Ctx)
	id, ok := helper.ParseIDParam(c.Ctx, ":id")
	if !ok {
		response.BadRequest(&c.Controller, "invalid id", traceID)
		return
	}
	if err := newAdjudicatorService().Delete(c.Ctx.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(&c.Controller, "adjudicator not found", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}
	response.Success(&c.Controller, nil, traceID)
}
