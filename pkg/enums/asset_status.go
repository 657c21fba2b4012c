package enums

import "fmt"

// AssetStatus is the registry-level vocabulary shared by owned and consigned
// vehicles. Each variant maps it onto its own column values.
type AssetStatus string

const (
	AssetStatusAvailable AssetStatus = "available"
	AssetStatusSold      AssetStatus = "sold"
)

func (s AssetStatus) IsValid() bool {
	return s == AssetStatusAvailable || s == AssetStatusSold
}

// ParseAssetStatus converts raw input into an AssetStatus.
func ParseAssetStatus(value string) (AssetStatus, error) {
	s := AssetStatus(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid asset status %q", value)
	}
	return s, nil
}

// InventoryStatus maps the registry status onto the inventory vocabulary.
func (s AssetStatus) InventoryStatus() InventoryStatus {
	if s == AssetStatusSold {
		return InventoryStatusSold
	}
	return InventoryStatusAvailable
}

// ShowroomStatus maps the registry status onto the consignment vocabulary:
// available becomes received.
func (s AssetStatus) ShowroomStatus() ShowroomStatus {
	if s == AssetStatusSold {
		return ShowroomStatusSold
	}
	return ShowroomStatusReceived
}
