package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateContract    OutboxAggregateType = "contract"
	AggregateInstallment OutboxAggregateType = "installment"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateContract,
	AggregateInstallment,
}

func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType names a domain event.
type OutboxEventType string

const (
	EventContractCreated     OutboxEventType = "contract_created"
	EventInstallmentPaid     OutboxEventType = "installment_paid"
	EventInstallmentsOverdue OutboxEventType = "installments_overdue"
)

var validOutboxEventTypes = []OutboxEventType{
	EventContractCreated,
	EventInstallmentPaid,
	EventInstallmentsOverdue,
}

func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
