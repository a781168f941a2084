package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	finpay "github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay"
	model2 "github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/api/model"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/apierror"
)

// RunSettlement starts the two-leg distribution for one settlement date.
// A date already covered by an active lot answers 409; broken reference
// data answers 422 without moving money.
func (a Api) RunSettlement(c *gin.Context) {
	var req model2.RunSettlement
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := req.ValidateRunSettlement(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	date, err := req.ToDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	lot, err := a.finpay.ExecuteSettlement(c.Request.Context(), date)
	if err != nil {
		c.JSON(mapRunError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, lot)
}

// GetLots lists every lot recorded for a settlement date, newest first.
func (a Api) GetLots(c *gin.Context) {
	raw, passed := c.Params.Get("date")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required. pass it in the route /lots/:date"})
		return
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please format the date as '2006-01-02'"})
		return
	}

	lots, err := a.finpay.GetLotsByDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lots)
}

// InitiateDebin starts the pull phase for one settlement date.
func (a Api) InitiateDebin(c *gin.Context) {
	var req model2.RunSettlement
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := req.ValidateRunSettlement(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	date, err := req.ToDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	pull, err := a.finpay.InitiateDebinPull(c.Request.Context(), date)
	if err != nil {
		c.JSON(mapRunError(err), gin.H{"error": err.Error()})
		return
	}
	if pull == nil {
		c.JSON(http.StatusOK, gin.H{"message": "nothing pending for this date"})
		return
	}
	c.JSON(http.StatusCreated, pull)
}

// MonitorDebins runs one polling cycle over the open pulls.
func (a Api) MonitorDebins(c *gin.Context) {
	if err := a.finpay.MonitorPendingPulls(c.Request.Context()); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "monitor cycle completed"})
}

// RunSweep drains the funding account.
func (a Api) RunSweep(c *gin.Context) {
	lot, err := a.finpay.ExecuteSweep(c.Request.Context())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	if lot == nil {
		c.JSON(http.StatusOK, gin.H{"message": "nothing to sweep"})
		return
	}
	c.JSON(http.StatusCreated, lot)
}

// MonthlyReport returns the aggregated sweep figures for a month.
func (a Api) MonthlyReport(c *gin.Context) {
	raw, passed := c.Params.Get("period")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period is required. pass it in the route /reports/monthly/:period"})
		return
	}
	query := model2.MonthlyReportQuery{Period: raw}
	if err := query.ValidateMonthlyReportQuery(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	period, err := query.ToPeriod()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	html, summary, err := a.finpay.GenerateMonthlyReport(c.Request.Context(), period)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary, "html": html})
}

func mapRunError(err error) int {
	var dup *finpay.DuplicateRunError
	if errors.As(err, &dup) {
		return http.StatusConflict
	}
	var cfg *finpay.ConfigIntegrityError
	if errors.As(err, &cfg) {
		return http.StatusUnprocessableEntity
	}
	return apierror.MapErrorToHTTPStatus(err)
}
