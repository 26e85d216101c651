package enums

import "fmt"

// RedemptionStatus tracks the lifecycle of a coupon redemption.
type RedemptionStatus string

const (
	RedemptionStatusPending  RedemptionStatus = "pending"
	RedemptionStatusApproved RedemptionStatus = "approved"
	RedemptionStatusRejected RedemptionStatus = "rejected"
)

var validRedemptionStatuses = []RedemptionStatus{
	RedemptionStatusPending,
	RedemptionStatusApproved,
	RedemptionStatusRejected,
}

// IsValid reports whether the value matches the canonical redemption status enum.
func (s RedemptionStatus) IsValid() bool {
	for _, candidate := range validRedemptionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s RedemptionStatus) IsTerminal() bool {
	return s == RedemptionStatusApproved || s == RedemptionStatusRejected
}

// ParseRedemptionStatus converts raw input into RedemptionStatus.
func ParseRedemptionStatus(value string) (RedemptionStatus, error) {
	for _, candidate := range validRedemptionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid redemption status %q", value)
}
