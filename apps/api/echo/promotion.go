package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/promotion"
)

type promotionApi struct {
	auth    *authenticator
	svc     promotion.Service
	reports promotion.ReportGenerator
}

func registerPromotionAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc promotion.Service, reports promotion.ReportGenerator) {
	api := promotionApi{auth: auth, svc: svc, reports: reports}

	pg := g.Group("/promotions", jwt, auth.staffMiddleware())
	pg.POST("/batch", api.promoteBatch, auth.adminMiddleware())
	pg.POST("/:id", api.promote, auth.adminMiddleware())
	pg.GET("/:id/preview", api.preview)
	pg.GET("/:id/history", api.history)
	pg.GET("/:id/report", api.report)
}

type (
	PromoteRequest struct {
		AcademicYear string `json:"academic_year"`
		Notes        string `json:"notes"`
	}

	BatchRequest struct {
		AcademicYear string   `json:"academic_year"`
		StudentIDs   []string `json:"student_ids"`
	}
)

// refuse answers an expected refusal (missing data, unmet precondition, invalid argument)
// with an unsuccessful Envelope; other errors go through the HTTP error handler.
func refuse(ctx echo.Context, err error) error {
	if !promotion.IsRefusal(err) {
		return err
	}
	code := statusCode(err)
	if code == 0 {
		code = http.StatusBadRequest
	}
	return ctx.JSON(code, Envelope{Success: false, Message: errors.Cause(err).Error()})
}

func (api *promotionApi) preview(ctx echo.Context) error {
	ev, err := api.svc.Preview(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("academic_year"))
	if err != nil {
		return refuse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: fmt.Sprintf("evaluated: %s", ev.Status),
		Data:    ev,
	})
}

func (api *promotionApi) promote(ctx echo.Context) error {
	var data PromoteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PromoteRequest")
	}

	claims, err := api.auth.contextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ev, err := api.svc.Promote(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data.AcademicYear, data.Notes)
	if err != nil {
		return refuse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: fmt.Sprintf("%s: %s", ev.StudentName, ev.Status),
		Data:    ev,
	})
}

func (api *promotionApi) promoteBatch(ctx echo.Context) error {
	var data BatchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BatchRequest")
	}

	claims, err := api.auth.contextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	res, err := api.svc.PromoteBatch(ctx.Request().Context(), claims.Subject, data.AcademicYear, data.StudentIDs)
	if err != nil {
		return refuse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: fmt.Sprintf("processed %d students: %d errors", res.Total, res.Counts.Errors),
		Data:    res,
	})
}

func (api *promotionApi) history(ctx echo.Context) error {
	recs, err := api.svc.History(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return refuse(ctx, err)
	}
	return ctx.JSON(http.StatusOK, Envelope{
		Success: true,
		Message: fmt.Sprintf("%d promotion records", len(recs)),
		Data:    recs,
	})
}

func (api *promotionApi) report(ctx echo.Context) error {
	if api.reports == nil {
		return errHttpNotFound
	}

	ev, err := api.svc.Preview(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("academic_year"))
	if err != nil {
		return refuse(ctx, err)
	}

	var buf bytes.Buffer
	if err = api.reports.WritePromotionReport(&buf, ev); err != nil {
		return errors.Wrap(err, "rendering promotion report")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", promotion.ReportFilename(ev)))
	return ctx.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
