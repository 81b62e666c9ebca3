package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		dispensed int64
		used      int64
		want      DiscrepancyStatus
	}{
		{"equal totals match", 50, 50, StatusMatched},
		{"both zero match", 0, 0, StatusMatched},
		{"usage without dispense", 0, 5, StatusUsedWithoutDispense},
		{"dispensed never used", 20, 0, StatusDispensedNotUsed},
		{"dispense exceeds usage", 20, 12, StatusDispenseExceedsUse},
		{"usage exceeds dispense", 12, 20, StatusUsageExceedsDisp},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.dispensed, tc.used))
		})
	}
}

func TestPriorityOrdering(t *testing.T) {
	ordered := []DiscrepancyStatus{
		StatusUsageExceedsDisp,
		StatusUsedWithoutDispense,
		StatusDispenseExceedsUse,
		StatusDispensedNotUsed,
		StatusMatched,
	}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, Priority(ordered[i-1]), Priority(ordered[i]))
	}
	assert.Greater(t, Priority(DiscrepancyStatus("UNKNOWN")), Priority(StatusMatched))
}
