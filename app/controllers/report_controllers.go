package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/bodega/app/reports"
	"github.com/shashiranjanraj/bodega/pkg/ctx"
	"github.com/shashiranjanraj/bodega/pkg/database"
)

type ReportController struct {
	svc *reports.Service
}

// NewReportController runs reports on the global connection.
func NewReportController() *ReportController {
	return &ReportController{svc: reports.NewService(database.DB)}
}

// Run handles GET /reports/{name}?source=orm|sql&...
func (rc *ReportController) Run(c *ctx.Context) {
	name := c.Param("name")
	source, err := reports.ParseSource(c.Query("source"))
	if err != nil {
		rc.fail(c, err)
		return
	}
	params, err := reports.ParseParams(name, c.R.URL.Query())
	if err != nil {
		rc.fail(c, err)
		return
	}
	res, err := rc.svc.Run(c.Context(), name, source, params)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.Success(res)
}

func (rc *ReportController) fail(c *ctx.Context, err error) {
	var pe *reports.ParamError
	switch {
	case errors.As(err, &pe):
		c.ValidationError(map[string]string{pe.Field: pe.Message})
	case errors.Is(err, reports.ErrUnknownReport):
		c.NotFound("unknown report")
	case errors.Is(err, reports.ErrUnsupportedSource):
		c.BadRequest(err.Error())
	default:
		c.Log().Error("report failed", "report", c.Param("name"), "error", err)
		c.Error(http.StatusInternalServerError, "internal server error")
	}
}
