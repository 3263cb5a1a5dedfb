package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/grade"
)

type gradeApi struct {
	auth *authenticator
	svc  grade.Service
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc grade.Service) {
	api := gradeApi{auth: auth, svc: svc}

	gg := g.Group("/students/:id/grades", jwt, auth.staffMiddleware())
	gg.PUT("", api.save)
	gg.GET("", api.query)
}

func (api *gradeApi) save(ctx echo.Context) error {
	var data grade.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}

	claims, err := api.auth.contextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rec, err := api.svc.Save(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "saving grade record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *gradeApi) query(ctx echo.Context) error {
	recs, err := api.svc.Query(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("academic_year"))
	if err != nil {
		return errors.Wrap(err, "querying grade records")
	}
	return ctx.JSON(http.StatusOK, recs)
}
