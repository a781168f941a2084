package finpay

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/notification"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

const (
	SweepProcessing = "PROCESSING"
	SweepCompleted  = "COMPLETED"
	SweepFailed     = "FAILED"
)

var (
	oneHundred    = decimal.NewFromInt(100)
	partnerFactor = decimal.RequireFromString("0.90")
)

// ExecuteSweep drains the funding account: the commission and its VAT
// stay behind, 90% of the remaining net goes to the partner account and
// whatever is left of the net goes to the platform account. Commission
// and VAT are carried at four decimals; the partner amount is truncated,
// never rounded up, so the sweep can never overdraw.
func (f *Finpay) ExecuteSweep(ctx context.Context) (*model.SweepLot, error) {
	ctx, span := tracer.Start(ctx, "Executing balance sweep")
	defer span.End()

	balance, err := f.gateway.GetAccountBalance(ctx, f.sweep.OriginCVU)
	if err != nil {
		return nil, err
	}
	if balance.LessThanOrEqual(decimal.Zero) {
		logrus.WithField("balance", balance.StringFixed(2)).Info("nothing to sweep")
		return nil, nil
	}

	commission := balance.Mul(decimal.NewFromFloat(f.sweep.CommissionPercent)).Div(oneHundred).Round(4)
	vat := commission.Mul(decimal.NewFromFloat(f.sweep.VATPercent)).Div(oneHundred).Round(4)
	net := model.RoundMoney(balance.Sub(commission).Sub(vat))
	if net.IsNegative() {
		err := fmt.Errorf("sweep commission and VAT (%s) exceed the swept balance (%s); check sweep configuration",
			commission.Add(vat).StringFixed(2), balance.StringFixed(2))
		notification.NotifyError(err)
		return nil, err
	}
	partner := model.TruncateMoney(net.Mul(partnerFactor))
	platform := net.Sub(partner)

	lot, err := f.datasource.RecordSweep(ctx, &model.SweepLot{
		InitialBalance:   balance,
		CommissionAmount: model.RoundMoney(commission),
		VATAmount:        model.RoundMoney(vat),
		NetAmount:        net,
		PartnerAmount:    partner,
		PlatformAmount:   platform,
		Status:           SweepProcessing,
	})
	if err != nil {
		return nil, err
	}

	// Same rule as settlement: once the first transfer goes out the
	// run must complete.
	legCtx := context.WithoutCancel(ctx)

	references := map[string]string{}
	if err := f.sweepTransfer(legCtx, "partner", f.sweep.PartnerCVU, partner, references); err != nil {
		return nil, f.failSweep(legCtx, lot, references, err)
	}
	if err := f.sweepTransfer(legCtx, "platform", f.sweep.PlatformCVU, platform, references); err != nil {
		return nil, f.failSweep(legCtx, lot, references, err)
	}

	if err := f.datasource.UpdateSweep(legCtx, lot.SweepID, SweepCompleted, "", references); err != nil {
		return nil, err
	}
	lot.Status = SweepCompleted
	lot.References = references

	logrus.WithFields(logrus.Fields{
		"sweep_id":        lot.SweepID,
		"initial_balance": balance.StringFixed(2),
		"partner_amount":  partner.StringFixed(2),
		"platform_amount": platform.StringFixed(2),
	}).Info("balance sweep completed")

	f.sendSweepSummary(lot)
	return lot, nil
}

// sendSweepSummary mails the day's sweep figures to the operators. The
// subject is prefixed when the run was a rehearsal so a simulated sweep
// can never be mistaken for a real one.
func (f *Finpay) sendSweepSummary(lot *model.SweepLot) {
	subject := fmt.Sprintf("Barrido diario %s", lot.CreatedAt.Format("02/01/2006"))
	if !f.live {
		subject = "[SIMULACION] " + subject
	}
	body := fmt.Sprintf(
		"Saldo barrido: $ %s\nComision: $ %s\nIVA: $ %s\nNeto: $ %s\nSocio: $ %s\nPlataforma: $ %s\n",
		lot.InitialBalance.StringFixed(2), lot.CommissionAmount.StringFixed(2),
		lot.VATAmount.StringFixed(2), lot.NetAmount.StringFixed(2),
		lot.PartnerAmount.StringFixed(2), lot.PlatformAmount.StringFixed(2))
	notification.SendFailureEmail(subject, body, "")
}

func (f *Finpay) sweepTransfer(ctx context.Context, name, destination string, amount decimal.Decimal, references map[string]string) error {
	if amount.IsZero() {
		references[name] = string(model.OutcomeOmitted)
		return nil
	}
	if destination == "" {
		return fmt.Errorf("no %s account configured for sweep", name)
	}

	result, err := f.gateway.TransferToThirdParty(ctx, destination, amount, f.sweep.OriginCVU, f.live)
	if err != nil {
		return err
	}
	if result.ComprobanteID != "" {
		references[name] = result.ComprobanteID
	} else {
		references[name] = string(result.Outcome)
	}
	return nil
}

func (f *Finpay) failSweep(ctx context.Context, lot *model.SweepLot, references map[string]string, cause error) error {
	notification.NotifyError(fmt.Errorf("balance sweep %s failed: %w", lot.SweepID, cause))
	if err := f.datasource.UpdateSweep(ctx, lot.SweepID, SweepFailed, cause.Error(), references); err != nil {
		logrus.WithError(err).WithField("sweep_id", lot.SweepID).Error("failed to record sweep failure")
	}
	return cause
}
