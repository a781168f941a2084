package finpay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/gateway"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/apierror"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/notification"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

var tracer = otel.Tracer("finpay.settlement")

// ExecuteSettlement runs the two-leg fund distribution for a settlement
// date: merchants first, then manufacturers. The lot is created up front
// in PROCESSING so a concurrent run for the same date loses at the
// database, and is always closed before returning, whatever happened in
// between.
func (f *Finpay) ExecuteSettlement(ctx context.Context, settlementDate time.Time) (lot *model.SettlementLot, err error) {
	ctx, span := tracer.Start(ctx, "Executing settlement")
	defer span.End()

	active, lookupErr := f.datasource.GetActiveLot(ctx, settlementDate)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if active != nil {
		status := active.PDVStatus
		if !status.Blocking() {
			status = active.ManufacturerStatus
		}
		return nil, &DuplicateRunError{SettlementDate: settlementDate, LotID: active.LotID, Status: status}
	}

	lot, err = f.datasource.CreateLot(ctx, &model.SettlementLot{
		SettlementDate:     settlementDate,
		PDVStatus:          model.LegProcessing,
		ManufacturerStatus: model.LegProcessing,
	})
	if err != nil {
		if apierror.Is(err, apierror.ErrConflict) {
			return nil, &DuplicateRunError{SettlementDate: settlementDate}
		}
		return nil, err
	}

	// The lot must never be left in PROCESSING. A panic mid-leg closes
	// it in ERROR on both legs so the date can be retried.
	defer func() {
		if r := recover(); r != nil {
			f.forceCloseLot(lot.LotID, r)
			lot = nil
			err = fmt.Errorf("settlement run aborted: %v", r)
		}
	}()

	breakdown, err := f.computeBreakdown(ctx, settlementDate)
	if err != nil {
		f.forceCloseLot(lot.LotID, err)
		if isConfigFault(err) {
			return nil, &ConfigIntegrityError{Cause: err}
		}
		return nil, err
	}

	if breakdown.IsEmpty() {
		status := model.SuccessStatus(f.live)
		if closeErr := f.datasource.CloseLot(ctx, lot.LotID, status, status, map[string]string{}); closeErr != nil {
			return nil, closeErr
		}
		lot.PDVStatus = status
		lot.ManufacturerStatus = status
		logrus.WithField("settlement_date", settlementDate.Format("2006-01-02")).Info("nothing pending, lot closed clean")
		return lot, nil
	}

	if err := f.datasource.UpdateLotAmounts(ctx, lot.LotID, breakdown.TotalAmount, breakdown.PDVTotal, breakdown.ManufacturerTotal, breakdown.TransactionIDs); err != nil {
		f.forceCloseLot(lot.LotID, err)
		return nil, err
	}
	lot.RequestedAmount = breakdown.TotalAmount
	lot.PDVAmount = breakdown.PDVTotal
	lot.ManufacturerAmount = breakdown.ManufacturerTotal
	lot.TransactionIDs = breakdown.TransactionIDs

	// Once money starts moving the run must finish even if the caller
	// goes away.
	legCtx := context.WithoutCancel(ctx)

	detail := map[string]string{}
	pdvErrs, pdvPayable, pdvNoAccount := f.runPDVLeg(legCtx, breakdown.PDVTransfers, detail)
	pdvStatus := model.DeriveLegStatus(pdvErrs, pdvPayable, f.live)

	// The PDV outcome is persisted before the manufacturer leg starts so
	// a crash mid-run still leaves an accurate record of what was paid.
	if err := f.datasource.UpdateLegStatus(legCtx, lot.LotID, pdvStatus, model.LegProcessing); err != nil {
		logrus.WithError(err).WithField("lot_id", lot.LotID).Warn("failed to persist PDV leg status mid-run")
	}

	var mfrStatus model.LegStatus
	var mfrErrs int
	if pdvStatus == model.LegError {
		// Every merchant transfer failed: something systemic is wrong,
		// holding the manufacturer funds is safer than pushing them.
		mfrStatus = model.LegAbortedByPDVError
		for _, tr := range breakdown.UnitTransfers {
			detail[unitDetailKey(tr.UnitName)] = string(model.LegAbortedByPDVError)
		}
	} else {
		var mfrPayable int
		mfrErrs, mfrPayable = f.runManufacturerLeg(legCtx, breakdown.UnitTransfers, detail)
		mfrStatus = model.DeriveLegStatus(mfrErrs, mfrPayable, f.live)
	}

	if err := f.datasource.CloseLot(legCtx, lot.LotID, pdvStatus, mfrStatus, detail); err != nil {
		return nil, err
	}
	lot.PDVStatus = pdvStatus
	lot.ManufacturerStatus = mfrStatus
	lot.UnitDetail = detail

	logrus.WithFields(logrus.Fields{
		"lot_id":              lot.LotID,
		"settlement_date":     settlementDate.Format("2006-01-02"),
		"pdv_status":          pdvStatus,
		"manufacturer_status": mfrStatus,
		"requested_amount":    breakdown.TotalAmount.StringFixed(2),
		"trace_id":            trace.SpanFromContext(ctx).SpanContext().TraceID().String(),
	}).Info("settlement lot closed")

	if !pdvStatus.Clean() || !mfrStatus.Clean() {
		f.alertSettlementOutcome(settlementDate, lot.LotID, pdvStatus, mfrStatus, pdvErrs, mfrErrs, detail)
	}

	// Money is owed to merchants but not one of them has an account on
	// file. That is broken reference data, not a transfer failure, and
	// the caller has to hear about it.
	if pdvPayable > 0 && pdvNoAccount == pdvPayable {
		return nil, &ConfigIntegrityError{Cause: fmt.Errorf("no destination account configured for any merchant owed funds on %s", settlementDate.Format("2006-01-02"))}
	}
	return lot, nil
}

// alertSettlementOutcome pages the operators about a lot that did not
// close clean: Slack for the short version, mail with the error counts
// and the per-destination outcomes for the full picture.
func (f *Finpay) alertSettlementOutcome(settlementDate time.Time, lotID string, pdvStatus, mfrStatus model.LegStatus, pdvErrs, mfrErrs int, detail map[string]string) {
	notification.NotifyError(fmt.Errorf("settlement %s closed with PDV=%s manufacturer=%s", settlementDate.Format("2006-01-02"), pdvStatus, mfrStatus))

	detailJSON, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		detailJSON = []byte(fmt.Sprintf("%v", detail))
	}
	subject := fmt.Sprintf("Liquidacion %s con errores", settlementDate.Format("02/01/2006"))
	body := fmt.Sprintf(
		"Lote: %s\nEstado PDV: %s (%d errores)\nEstado fabricante: %s (%d errores)\nDetalle por destino:\n%s\n",
		lotID, pdvStatus, pdvErrs, mfrStatus, mfrErrs, detailJSON)
	notification.SendFailureEmail(subject, body, "")
}

// runPDVLeg dispatches one transfer per merchant destination and flags
// the covered transactions processed on success. A failed destination
// leaves its transactions untouched so the next run retries exactly
// those. Amounts at or below zero never reach the gateway: a
// refund-heavy merchant can aggregate negative.
func (f *Finpay) runPDVLeg(ctx context.Context, transfers []model.PDVTransfer, detail map[string]string) (errCount, payable, noAccount int) {
	for _, tr := range transfers {
		key := pdvDetailKey(tr.LegalName)

		if !tr.Amount.IsPositive() {
			detail[key] = string(model.OutcomeOmitted)
			f.markPDVProcessed(ctx, tr.TransactionIDs, model.OutcomeOmitted, "", "")
			continue
		}
		payable++

		if tr.CBU == "" {
			detail[key] = string(model.OutcomeNoAccount)
			errCount++
			noAccount++
			logrus.WithField("point_of_sale", tr.LegalName).Error("merchant has no account configured, transfer skipped")
			continue
		}

		result, err := f.gateway.TransferToThirdParty(ctx, tr.CBU, tr.Amount, "", f.live)
		if err != nil {
			detail[key] = string(model.OutcomeError)
			errCount++
			logrus.WithError(err).WithField("point_of_sale", tr.LegalName).Error("merchant transfer failed")
			continue
		}
		if result.Outcome == gateway.OutcomeRejected {
			detail[key] = string(model.OutcomeError)
			errCount++
			logrus.WithFields(logrus.Fields{"point_of_sale": tr.LegalName, "reason": result.Reason}).Error("merchant transfer rejected")
			continue
		}

		outcome := model.OutcomeSent
		if result.Outcome == gateway.OutcomeSimulated {
			outcome = model.OutcomeSimulated
		}
		detail[key] = string(outcome)
		f.markPDVProcessed(ctx, tr.TransactionIDs, outcome, result.ComprobanteID, marshalResult(result))
	}
	return errCount, payable, noAccount
}

// runManufacturerLeg dispatches one transfer per business unit.
func (f *Finpay) runManufacturerLeg(ctx context.Context, transfers []model.UnitTransfer, detail map[string]string) (errCount, payable int) {
	for _, tr := range transfers {
		key := unitDetailKey(tr.UnitName)

		if !tr.Amount.IsPositive() {
			detail[key] = string(model.OutcomeOmitted)
			f.markManufacturerProcessed(ctx, tr.TransactionIDs, "")
			continue
		}
		payable++

		if tr.CBU == "" {
			detail[key] = string(model.OutcomeNoAccount)
			errCount++
			logrus.WithField("business_unit", tr.UnitName).Error("business unit has no account configured, transfer skipped")
			continue
		}

		result, err := f.gateway.TransferToThirdParty(ctx, tr.CBU, tr.Amount, "", f.live)
		if err != nil {
			detail[key] = string(model.OutcomeError)
			errCount++
			logrus.WithError(err).WithField("business_unit", tr.UnitName).Error("manufacturer transfer failed")
			continue
		}
		if result.Outcome == gateway.OutcomeRejected {
			detail[key] = string(model.OutcomeError)
			errCount++
			logrus.WithFields(logrus.Fields{"business_unit": tr.UnitName, "reason": result.Reason}).Error("manufacturer transfer rejected")
			continue
		}

		outcome := model.OutcomeSent
		if result.Outcome == gateway.OutcomeSimulated {
			outcome = model.OutcomeSimulated
		}
		detail[key] = string(outcome)
		f.markManufacturerProcessed(ctx, tr.TransactionIDs, marshalResult(result))
	}
	return errCount, payable
}

func (f *Finpay) markPDVProcessed(ctx context.Context, ids []int64, outcome model.DestinationOutcome, reference, response string) {
	if err := f.datasource.MarkPDVLegProcessed(ctx, ids, string(outcome), reference, response); err != nil {
		// Money moved but the flag did not stick: this needs a human
		// before the next run double-pays.
		logrus.WithError(err).WithField("transaction_ids", ids).Error("failed to flag PDV leg processed after transfer")
		notification.NotifyError(fmt.Errorf("transfer dispatched but PDV flags not persisted for %v: %w", ids, err))
	}
}

func (f *Finpay) markManufacturerProcessed(ctx context.Context, ids []int64, response string) {
	if err := f.datasource.MarkManufacturerLegProcessed(ctx, ids, response); err != nil {
		logrus.WithError(err).WithField("transaction_ids", ids).Error("failed to flag manufacturer leg processed after transfer")
		notification.NotifyError(fmt.Errorf("transfer dispatched but manufacturer flags not persisted for %v: %w", ids, err))
	}
}

// forceCloseLot closes the lot in ERROR on both legs outside the caller's
// context so a cancelled request cannot leave a lot stuck in PROCESSING.
func (f *Finpay) forceCloseLot(lotID string, cause interface{}) {
	err := fmt.Errorf("settlement lot %s closed in error: %v", lotID, cause)
	logrus.Error(err)
	notification.NotifyError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if closeErr := f.datasource.CloseLot(ctx, lotID, model.LegError, model.LegError, nil); closeErr != nil {
		logrus.WithError(closeErr).WithField("lot_id", lotID).Error("failed to force-close lot")
	}
}

func isConfigFault(err error) bool {
	var missing *model.MissingSplitRateError
	var negative *model.NegativeUnitAmountError
	return errors.As(err, &missing) || errors.As(err, &negative)
}

func pdvDetailKey(name string) string  { return "PDV " + name }
func unitDetailKey(name string) string { return "Unidad " + name }

func marshalResult(result *gateway.TransferResult) string {
	raw, err := json.Marshal(result)
	if err != nil {
		return ""
	}
	return string(raw)
}
