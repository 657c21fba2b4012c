package enums

import "fmt"

// ContractType is the paper instrument backing an installment contract.
type ContractType string

const (
	ContractTypeTrustReceipt      ContractType = "trust_receipt"
	ContractTypeDirectInstallment ContractType = "direct_installment"
	ContractTypeBankCheques       ContractType = "bank_cheques"
)

var validContractTypes = []ContractType{
	ContractTypeTrustReceipt,
	ContractTypeDirectInstallment,
	ContractTypeBankCheques,
}

var contractTypeLabels = map[ContractType]string{
	ContractTypeTrustReceipt:      "إيصال أمانة",
	ContractTypeDirectInstallment: "عقد تقسيط مباشر",
	ContractTypeBankCheques:       "شيكات بنكية",
}

func (c ContractType) String() string {
	return string(c)
}

// Label returns the printed label used on the paper contract.
func (c ContractType) Label() string {
	return contractTypeLabels[c]
}

func (c ContractType) IsValid() bool {
	for _, candidate := range validContractTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContractType accepts either the stored value or the printed label.
func ParseContractType(value string) (ContractType, error) {
	for _, candidate := range validContractTypes {
		if string(candidate) == value || contractTypeLabels[candidate] == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contract type %q", value)
}

// ContractStatus is active for every issued contract; closed is reserved.
type ContractStatus string

const (
	ContractStatusActive ContractStatus = "active"
	ContractStatusClosed ContractStatus = "closed"
)

func (s ContractStatus) IsValid() bool {
	return s == ContractStatusActive || s == ContractStatusClosed
}

// PaymentMode selects how the schedule is generated.
type PaymentMode string

const (
	PaymentModeInstallment PaymentMode = "installment"
	PaymentModeCredit      PaymentMode = "credit"
)

func (m PaymentMode) IsValid() bool {
	return m == PaymentModeInstallment || m == PaymentModeCredit
}

// ParsePaymentMode converts raw input into a PaymentMode. Empty means installment.
func ParsePaymentMode(value string) (PaymentMode, error) {
	switch PaymentMode(value) {
	case "", PaymentModeInstallment:
		return PaymentModeInstallment, nil
	case PaymentModeCredit:
		return PaymentModeCredit, nil
	}
	return "", fmt.Errorf("invalid payment mode %q", value)
}
