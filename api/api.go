package api

import (
	"github.com/gin-gonic/gin"

	finpay "github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay"
)

type Api struct {
	finpay *finpay.Finpay
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/settlements", a.RunSettlement)
	router.GET("/lots/:date", a.GetLots)

	router.POST("/debins", a.InitiateDebin)
	router.POST("/debins/monitor", a.MonitorDebins)

	router.POST("/sweeps", a.RunSweep)
	router.GET("/reports/monthly/:period", a.MonthlyReport)
	return a.router
}

func NewAPI(f *finpay.Finpay) *Api {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return &Api{finpay: f, router: r}
}
