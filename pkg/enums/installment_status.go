package enums

import "fmt"

// InstallmentStatus tracks one scheduled payment.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "Pending"
	InstallmentStatusPaid    InstallmentStatus = "Paid"
	InstallmentStatusOverdue InstallmentStatus = "Overdue"
)

var validInstallmentStatuses = []InstallmentStatus{
	InstallmentStatusPending,
	InstallmentStatusPaid,
	InstallmentStatusOverdue,
}

// String implements fmt.Stringer.
func (s InstallmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InstallmentStatus.
func (s InstallmentStatus) IsValid() bool {
	for _, candidate := range validInstallmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsOutstanding reports whether money is still owed on the installment.
func (s InstallmentStatus) IsOutstanding() bool {
	return s == InstallmentStatusPending || s == InstallmentStatusOverdue
}

// ParseInstallmentStatus converts raw input into an InstallmentStatus.
func ParseInstallmentStatus(value string) (InstallmentStatus, error) {
	for _, candidate := range validInstallmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid installment status %q", value)
}

var installmentStatusLabels = map[InstallmentStatus]string{
	InstallmentStatusPending: "مطلوب دفعه",
	InstallmentStatusPaid:    "تم السداد",
	InstallmentStatusOverdue: "متأخر",
}

// Label returns the status as printed on receipts and exports.
func (s InstallmentStatus) Label() string {
	if label, ok := installmentStatusLabels[s]; ok {
		return label
	}
	return string(s)
}
