package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/internal/request"
	"github.com/nicoegiaian/AutomatizacionDeTransferenciasFinPay/model"
)

const (
	transferEndpoint    = "/walletentidad-operaciones/v1/api/v1.201/transferir"
	accountInfoEndpoint = "/walletentidad-cuenta/v1/api/v1.201/CuentaCVUByCbuCvuOrAlias"
	debinEndpoint       = "/walletentidad-operaciones/v1/api/v1.201/debin"
)

// Outcome tags a TransferResult. Consumers switch over it exhaustively;
// dry-run is a value here, never an exception.
type Outcome string

const (
	OutcomeCompleted Outcome = "COMPLETED"
	OutcomeSimulated Outcome = "SIMULATED"
	OutcomeRejected  Outcome = "REJECTED"
)

// TransferPayload is the exact request body sent (or, in dry-run, the
// body that would have been sent) to the transfer endpoint.
type TransferPayload struct {
	OriginCVU      string `json:"cvu_origen"`
	DestinationCBU string `json:"cbu_cvu_destino"`
	Amount         string `json:"importe"`
	Reference      string `json:"referencia"`
	Concept        string `json:"concepto"`
}

// TransferResult is the tagged outcome of a transfer call.
//   - Completed carries the external comprobante and coelsa ids.
//   - Simulated carries the payload for audit logging; no network I/O
//     happened.
//   - Rejected carries the gateway's stated reason.
type TransferResult struct {
	Outcome       Outcome          `json:"outcome"`
	ComprobanteID string           `json:"comprobante_id,omitempty"`
	CoelsaID      string           `json:"coelsa_id,omitempty"`
	Payload       *TransferPayload `json:"payload,omitempty"`
	Reason        string           `json:"reason,omitempty"`
}

// DebinResult is the outcome of initiating a debit pull.
type DebinResult struct {
	ComprobanteID string            `json:"comprobante_id"`
	Status        model.DebinStatus `json:"status"`
}

// Client talks to the BIND wallet API. Every call, real or simulated, is
// logged with its full request and response payloads: this log is the
// system of record for what the bank was told to do.
type Client struct {
	apiURL    string
	originCVU string
	tokens    *TokenProvider
}

func NewClient(apiURL, originCVU string, tokens *TokenProvider) *Client {
	return &Client{apiURL: apiURL, originCVU: originCVU, tokens: tokens}
}

// GetAccountBalance returns the available balance of a CVU account.
func (c *Client) GetAccountBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	url := fmt.Sprintf("%s%s/%s", c.apiURL, accountInfoEndpoint, account)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, &QueryError{Detail: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var data map[string]interface{}
	resp, err := request.Call(req, &data)
	if err != nil {
		return decimal.Zero, &QueryError{Detail: err.Error()}
	}

	logrus.WithFields(logrus.Fields{
		"account":  account,
		"status":   resp.StatusCode,
		"response": data,
	}).Info("gateway balance query")

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, &QueryError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}

	if balance, ok := balanceField(data); ok {
		return balance, nil
	}
	return decimal.Zero, &QueryError{StatusCode: resp.StatusCode, Detail: "balance field missing from account response"}
}

// TransferToThirdParty moves funds to a destination CBU/CVU. With
// live=false no network call is made: a structurally identical Simulated
// result is returned so every downstream status-derivation and
// persistence path runs exactly as in live mode. origin overrides the
// client's default origin CVU when non-empty.
func (c *Client) TransferToThirdParty(ctx context.Context, destination string, amount decimal.Decimal, origin string, live bool) (*TransferResult, error) {
	if origin == "" {
		origin = c.originCVU
	}
	payload := &TransferPayload{
		OriginCVU:      origin,
		DestinationCBU: destination,
		Amount:         amount.StringFixed(2),
		Reference:      fmt.Sprintf("TRF-%d", time.Now().UnixNano()),
		Concept:        "VAR",
	}

	if !live {
		logrus.WithFields(logrus.Fields{"payload": payload, "mode": "dry-run"}).Info("gateway transfer simulated")
		return &TransferResult{Outcome: OutcomeSimulated, Payload: payload}, nil
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	body, err := request.ToJsonReq(payload)
	if err != nil {
		return nil, &TransferError{Detail: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+transferEndpoint, body)
	if err != nil {
		return nil, &TransferError{Detail: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var data map[string]interface{}
	resp, err := request.Call(req, &data)
	if err != nil {
		return nil, &TransferError{Detail: err.Error()}
	}

	logrus.WithFields(logrus.Fields{
		"payload":  payload,
		"status":   resp.StatusCode,
		"response": data,
	}).Info("gateway transfer")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &TransferError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}

	if estado, ok := data["estado"].(string); ok && estado == "RECHAZADA" {
		return &TransferResult{Outcome: OutcomeRejected, Reason: errorDetail(data)}, nil
	}

	result := &TransferResult{Outcome: OutcomeCompleted, Payload: payload}
	if id, ok := data["comprobanteId"].(string); ok {
		result.ComprobanteID = id
	}
	if id, ok := data["coelsaId"].(string); ok {
		result.CoelsaID = id
	}
	return result, nil
}

// InitiateDebin requests a debit pull against the funding account.
func (c *Client) InitiateDebin(ctx context.Context, amount decimal.Decimal, reference string) (*DebinResult, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"cvu_origen": c.originCVU,
		"importe":    amount.StringFixed(2),
		"referencia": reference,
	}
	body, err := request.ToJsonReq(payload)
	if err != nil {
		return nil, &TransferError{Detail: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+debinEndpoint, body)
	if err != nil {
		return nil, &TransferError{Detail: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var data map[string]interface{}
	resp, err := request.Call(req, &data)
	if err != nil {
		return nil, &TransferError{Detail: err.Error()}
	}

	logrus.WithFields(logrus.Fields{
		"payload":  payload,
		"status":   resp.StatusCode,
		"response": data,
	}).Info("gateway debin pull")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &TransferError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}

	result := &DebinResult{Status: model.DebinPending}
	if id, ok := data["idComprobante"].(string); ok {
		result.ComprobanteID = id
	}
	if estado, ok := data["estado"].(string); ok {
		result.Status = model.ParseDebinStatus(estado)
	}
	return result, nil
}

// GetDebinStatus polls the status of a previously initiated debit pull.
func (c *Client) GetDebinStatus(ctx context.Context, comprobanteID string) (model.DebinStatus, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s%s/%s", c.apiURL, debinEndpoint, comprobanteID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &QueryError{Detail: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var data map[string]interface{}
	resp, err := request.Call(req, &data)
	if err != nil {
		return "", &QueryError{Detail: err.Error()}
	}

	logrus.WithFields(logrus.Fields{
		"comprobante_id": comprobanteID,
		"status":         resp.StatusCode,
		"response":       data,
	}).Info("gateway debin status")

	if resp.StatusCode != http.StatusOK {
		return "", &QueryError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}

	estado, ok := data["estado"].(string)
	if !ok {
		return "", &QueryError{StatusCode: resp.StatusCode, Detail: "estado field missing from debin response"}
	}
	return model.ParseDebinStatus(estado), nil
}

// balanceField digs the balance out of the account response; BIND
// returns it either top-level or nested under "cuenta".
func balanceField(data map[string]interface{}) (decimal.Decimal, bool) {
	if saldo, ok := data["saldo"]; ok {
		return toDecimal(saldo)
	}
	if cuenta, ok := data["cuenta"].(map[string]interface{}); ok {
		if saldo, ok := cuenta["saldo"]; ok {
			return toDecimal(saldo)
		}
	}
	return decimal.Zero, false
}

func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), true
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

func errorDetail(data map[string]interface{}) string {
	if msg, ok := data["mensaje"].(string); ok {
		return msg
	}
	if errs, ok := data["errores"].([]interface{}); ok && len(errs) > 0 {
		if e, ok := errs[0].(map[string]interface{}); ok {
			if detail, ok := e["detalle"].(string); ok {
				return detail
			}
		}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "unparseable gateway error"
	}
	return string(raw)
}
