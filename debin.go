package finpay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/notification"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

// InitiateDebinPull starts the pull phase of the pull-then-push flow:
// it computes the day's total and asks the gateway to debit it from the
// funding account. The distribution itself waits until the monitor sees
// the pull settle. A nil request with nil error means the date had
// nothing pending.
func (f *Finpay) InitiateDebinPull(ctx context.Context, settlementDate time.Time) (*model.DebinRequest, error) {
	ctx, span := tracer.Start(ctx, "Initiating debit pull")
	defer span.End()

	active, err := f.datasource.GetActiveDebin(ctx, settlementDate)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, &DuplicateRunError{SettlementDate: settlementDate, LotID: active.DebinID}
	}

	breakdown, err := f.computeBreakdown(ctx, settlementDate)
	if err != nil {
		if isConfigFault(err) {
			return nil, &ConfigIntegrityError{Cause: err}
		}
		return nil, err
	}
	if breakdown.IsEmpty() {
		logrus.WithField("settlement_date", settlementDate.Format("2006-01-02")).Info("nothing pending, no pull initiated")
		return nil, nil
	}

	reference := "LIQ-" + settlementDate.Format("20060102")
	result, err := f.gateway.InitiateDebin(ctx, breakdown.TotalAmount, reference)
	if err != nil {
		notification.NotifyError(fmt.Errorf("debit pull for %s failed: %w", settlementDate.Format("2006-01-02"), err))
		return nil, err
	}

	return f.datasource.CreateDebin(ctx, &model.DebinRequest{
		SettlementDate:     settlementDate,
		ComprobanteID:      result.ComprobanteID,
		PDVAmount:          breakdown.PDVTotal,
		ManufacturerAmount: breakdown.ManufacturerTotal,
		Status:             result.Status,
		TransactionIDs:     breakdown.TransactionIDs,
	})
}

// MonitorPendingPulls polls every open pull and advances the ones whose
// funds have landed. Meant to run from a short-interval scheduler.
func (f *Finpay) MonitorPendingPulls(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Monitoring pending pulls")
	defer span.End()

	pending, err := f.datasource.GetPendingDebins(ctx)
	if err != nil {
		return err
	}
	for _, req := range pending {
		f.monitorPull(ctx, req)
	}
	return nil
}

func (f *Finpay) monitorPull(ctx context.Context, req *model.DebinRequest) {
	status := req.Status
	if status != model.DebinCompleted {
		polled, err := f.gateway.GetDebinStatus(ctx, req.ComprobanteID)
		if err != nil {
			// A transient query failure proves nothing about the pull.
			// Leave the record as is and look again next cycle.
			logrus.WithError(err).WithField("debin_id", req.DebinID).Warn("debin status query failed, leaving record untouched")
			return
		}
		if polled != status {
			if err := f.datasource.UpdateDebinStatus(ctx, req.DebinID, polled); err != nil {
				logrus.WithError(err).WithField("debin_id", req.DebinID).Error("failed to persist debin status")
				return
			}
		}
		status = polled
	}

	switch status {
	case model.DebinCompleted:
		f.dispatchPush(ctx, req)
	case model.DebinPending:
		logrus.WithField("debin_id", req.DebinID).Info("pull still pending")
	case model.DebinRejected:
		logrus.WithField("debin_id", req.DebinID).Warn("pull rejected, date freed for a new attempt")
	default:
		// UNKNOWN and UNKNOWN_FOREVER: the gateway cannot account for
		// the pull. Park it and page an operator.
		err := fmt.Errorf("debin %s (comprobante %s) in unaccountable state %s", req.DebinID, req.ComprobanteID, status)
		notification.NotifyError(err)
		if updErr := f.datasource.UpdateDebinStatus(ctx, req.DebinID, model.DebinUnknownForever); updErr != nil {
			logrus.WithError(updErr).WithField("debin_id", req.DebinID).Error("failed to park unaccountable debin")
		}
	}
}

// dispatchPush runs the two-leg distribution now that the pulled funds
// are on the funding account, then flags the pull so it is never pushed
// twice.
func (f *Finpay) dispatchPush(ctx context.Context, req *model.DebinRequest) {
	if _, err := f.ExecuteSettlement(ctx, req.SettlementDate); err != nil {
		var dup *DuplicateRunError
		if !errors.As(err, &dup) {
			logrus.WithError(err).WithField("debin_id", req.DebinID).Error("push phase failed")
			return
		}
		// An earlier cycle already ran the distribution; only the flag
		// is missing.
	}
	if err := f.datasource.MarkDebinPushed(ctx, req.DebinID); err != nil {
		logrus.WithError(err).WithField("debin_id", req.DebinID).Error("failed to flag debin pushed")
	}
}
