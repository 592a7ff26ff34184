package enums

import "strings"

// FlowType tags a cash-flow ledger entry with its sign contribution.
// Values are compared case-insensitively; unrecognized values are stored
// as-is and contribute nothing to the balance.
type FlowType string

const (
	FlowTypeSales         FlowType = "SALES"
	FlowTypeExpense       FlowType = "EXPENSE"
	FlowTypeAdjustmentIn  FlowType = "ADJUSTMENT_IN"
	FlowTypeAdjustmentOut FlowType = "ADJUSTMENT_OUT"
)

var knownFlowTypes = []FlowType{
	FlowTypeSales,
	FlowTypeExpense,
	FlowTypeAdjustmentIn,
	FlowTypeAdjustmentOut,
}

// Normalize upper-cases raw input for sign comparison.
func NormalizeFlowType(value string) FlowType {
	return FlowType(strings.ToUpper(strings.TrimSpace(value)))
}

// IsKnown reports whether the value matches one of the four canonical flow
// types after normalization.
func (t FlowType) IsKnown() bool {
	normalized := NormalizeFlowType(string(t))
	for _, candidate := range knownFlowTypes {
		if candidate == normalized {
			return true
		}
	}
	return false
}

// Sign returns +1 for inflows, -1 for outflows and 0 for unrecognized types.
func (t FlowType) Sign() int {
	switch NormalizeFlowType(string(t)) {
	case FlowTypeSales, FlowTypeAdjustmentIn:
		return 1
	case FlowTypeExpense, FlowTypeAdjustmentOut:
		return -1
	}
	return 0
}

func (t FlowType) String() string {
	return string(t)
}
