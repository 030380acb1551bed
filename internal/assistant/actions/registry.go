package actions

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// ErrUnknownAction is returned by Invoke for an action name outside the
// supported set. The HTTP layer maps it to a client error.
var ErrUnknownAction = errors.New("invalid mock action")

// Names lists the supported direct-action names, in the order the operations
// are defined. The names are part of the wire contract.
var Names = []string{
	"freezeCard",
	"unfreezeCard",
	"checkDeliveryStatus",
	"getTransactions",
	"payBill",
	"convertToEMI",
	"generateStatement",
	"raiseDispute",
}

// Invoke runs the named operation and returns its raw result. Parameterized
// operations read optional query-style params, falling back to the same
// defaults the intent dispatcher uses:
//
//   - payBill:           amount (default 0)
//   - convertToEMI:      amount (default 1000), tenure (default 6)
//   - generateStatement: month (default "January")
//   - raiseDispute:      txnId (may be empty), reason (default
//     "user reported an issue")
//
// An unrecognized name returns ErrUnknownAction.
func (s *Service) Invoke(ctx context.Context, name string, params url.Values) (any, error) {
	switch name {
	case "freezeCard":
		return s.FreezeCard(ctx), nil
	case "unfreezeCard":
		return s.UnfreezeCard(ctx), nil
	case "checkDeliveryStatus":
		return s.CheckDeliveryStatus(ctx), nil
	case "getTransactions":
		return s.GetTransactions(ctx), nil
	case "payBill":
		return s.PayBill(ctx, int64Param(params, "amount", 0)), nil
	case "convertToEMI":
		amount := int64Param(params, "amount", 1000)
		tenure := intParam(params, "tenure", defaultTenure)
		return s.ConvertToEMI(ctx, amount, tenure), nil
	case "generateStatement":
		month := params.Get("month")
		if month == "" {
			month = "January"
		}
		return s.GenerateStatement(ctx, month), nil
	case "raiseDispute":
		txnID := strings.ToUpper(params.Get("txnId"))
		reason := params.Get("reason")
		if reason == "" {
			reason = "user reported an issue"
		}
		return s.RaiseDispute(ctx, txnID, reason), nil
	default:
		return nil, ErrUnknownAction
	}
}

func int64Param(params url.Values, key string, fallback int64) int64 {
	v := params.Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func intParam(params url.Values, key string, fallback int) int {
	v := params.Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
