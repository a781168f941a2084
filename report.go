package finpay

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/notification"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

var reportTemplate = template.Must(template.New("monthly").Parse(`
<html>
<body>
<h2>Resumen mensual de barridos - {{.Period}}</h2>
<table border="1" cellpadding="6" cellspacing="0">
	<tr><td>Barridos completados</td><td>{{.LotCount}}</td></tr>
	<tr><td>Saldo barrido total</td><td>$ {{.GrossTotal}}</td></tr>
	<tr><td>Comisión retenida</td><td>$ {{.CommissionTotal}}</td></tr>
	<tr><td>IVA sobre comisión</td><td>$ {{.VATTotal}}</td></tr>
	<tr><td>Neto distribuido</td><td>$ {{.NetTotal}}</td></tr>
	<tr><td>Transferido al socio</td><td>$ {{.PartnerTotal}}</td></tr>
	<tr><td>Transferido a la plataforma</td><td>$ {{.PlatformTotal}}</td></tr>
</table>
</body>
</html>
`))

type reportData struct {
	Period          string
	LotCount        int
	GrossTotal      string
	CommissionTotal string
	VATTotal        string
	NetTotal        string
	PartnerTotal    string
	PlatformTotal   string
}

// GenerateMonthlyReport renders the HTML summary of the month's sweeps.
func (f *Finpay) GenerateMonthlyReport(ctx context.Context, period time.Time) (string, *model.MonthlySweepSummary, error) {
	summary, err := f.datasource.GetMonthlySweepSummary(ctx, period)
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	err = reportTemplate.Execute(&buf, reportData{
		Period:          summary.Period.Format("01/2006"),
		LotCount:        summary.LotCount,
		GrossTotal:      summary.GrossTotal.StringFixed(2),
		CommissionTotal: summary.CommissionTotal.StringFixed(2),
		VATTotal:        summary.VATTotal.StringFixed(2),
		NetTotal:        summary.NetTotal.StringFixed(2),
		PartnerTotal:    summary.PartnerTotal.StringFixed(2),
		PlatformTotal:   summary.PlatformTotal.StringFixed(2),
	})
	if err != nil {
		return "", nil, err
	}
	return buf.String(), summary, nil
}

// SendMonthlyReport renders and emails the monthly sweep summary. A
// month with no completed sweeps sends nothing.
func (f *Finpay) SendMonthlyReport(ctx context.Context, period time.Time) error {
	html, summary, err := f.GenerateMonthlyReport(ctx, period)
	if err != nil {
		return err
	}
	if summary.LotCount == 0 {
		logrus.WithField("period", summary.Period.Format("01/2006")).Info("no completed sweeps, monthly report skipped")
		return nil
	}
	subject := fmt.Sprintf("Resumen mensual de barridos %s", summary.Period.Format("01/2006"))
	notification.SendHTMLEmail(subject, html)
	return nil
}
