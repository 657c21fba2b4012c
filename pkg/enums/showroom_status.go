package enums

import "fmt"

// ShowroomStatus tracks a consigned vehicle held for its owner.
type ShowroomStatus string

const (
	ShowroomStatusReceived ShowroomStatus = "received"
	ShowroomStatusSold     ShowroomStatus = "sold"
	ShowroomStatusReturned ShowroomStatus = "returned"
)

var validShowroomStatuses = []ShowroomStatus{
	ShowroomStatusReceived,
	ShowroomStatusSold,
	ShowroomStatusReturned,
}

func (s ShowroomStatus) String() string {
	return string(s)
}

func (s ShowroomStatus) IsValid() bool {
	for _, candidate := range validShowroomStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShowroomStatus converts raw input into a ShowroomStatus.
func ParseShowroomStatus(value string) (ShowroomStatus, error) {
	for _, candidate := range validShowroomStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid showroom status %q", value)
}
