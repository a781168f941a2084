package model

// LegStatus is the closed set of states a settlement leg can be in.
// COMPLETED is terminal success in live mode, AUDIT_COMPLETED in dry-run
// mode; the two are never interchangeable so a rehearsal can always be
// told apart from a real run.
type LegStatus string

const (
	LegProcessing        LegStatus = "PROCESSING"
	LegCompleted         LegStatus = "COMPLETED"
	LegAuditCompleted    LegStatus = "AUDIT_COMPLETED"
	LegPartialError      LegStatus = "PARTIAL_ERROR"
	LegError             LegStatus = "ERROR"
	LegAbortedByPDVError LegStatus = "ABORTED_BY_PDV_ERROR"
)

// Blocking reports whether a lot leg in this state blocks a new
// orchestration run for the same date. Terminal failure states do not:
// the only recovery primitive is "run again".
func (s LegStatus) Blocking() bool {
	switch s {
	case LegProcessing, LegCompleted, LegAuditCompleted:
		return true
	}
	return false
}

// Clean reports whether the leg ended in its clean-success state.
func (s LegStatus) Clean() bool {
	return s == LegCompleted || s == LegAuditCompleted
}

// SuccessStatus returns the terminal success state for the run mode.
func SuccessStatus(live bool) LegStatus {
	if live {
		return LegCompleted
	}
	return LegAuditCompleted
}

// DeriveLegStatus maps a leg's error count over its destinations with a
// non-zero amount to the leg's final state. A leg with no payable
// destinations is trivially successful.
func DeriveLegStatus(errCount, totalWithAmount int, live bool) LegStatus {
	switch {
	case totalWithAmount == 0:
		return SuccessStatus(live)
	case errCount == 0:
		return SuccessStatus(live)
	case errCount < totalWithAmount:
		return LegPartialError
	default:
		return LegError
	}
}

// DebinStatus is the closed set of states of a debit-pull tracking record.
type DebinStatus string

const (
	DebinPending        DebinStatus = "PENDING"
	DebinCompleted      DebinStatus = "COMPLETED"
	DebinRejected       DebinStatus = "RECHAZADO"
	DebinUnknown        DebinStatus = "UNKNOWN"
	DebinUnknownForever DebinStatus = "UNKNOWN_FOREVER"
)

// BlocksNewPull reports whether an existing record for a date forbids
// creating a new pull attempt. Only a rejected pull permits a retry.
func (s DebinStatus) BlocksNewPull() bool {
	return s != DebinRejected
}

// ParseDebinStatus maps a gateway-reported status string onto the closed
// enumeration. IN_PROGRESS is an alias the gateway uses for PENDING.
// Anything unrecognized maps to UNKNOWN, which the monitor treats as a
// terminal failure.
func ParseDebinStatus(raw string) DebinStatus {
	switch raw {
	case "PENDING", "IN_PROGRESS":
		return DebinPending
	case "COMPLETED":
		return DebinCompleted
	case "RECHAZADO":
		return DebinRejected
	case "UNKNOWN_FOREVER":
		return DebinUnknownForever
	default:
		return DebinUnknown
	}
}
