package models

// Storage modes reported by StorageStatus.
const (
	ModeDual = "dual"
)

// StorageStatus reports which stores are reachable.
// swagger:model StorageStatus
type StorageStatus struct {
	// Primary store name, e.g. file
	Primary string `json:"primary"`
	// Primary store reachability
	PrimaryAvailable bool `json:"primaryAvailable"`
	// Secondary store name, empty when none is configured
	Secondary string `json:"secondary,omitempty"`
	// Secondary store reachability
	SecondaryAvailable bool `json:"secondaryAvailable"`
	// Either "dual" or "<primary>-only"
	Mode string `json:"mode"`
}

// SingleMode returns the degraded mode tag for a primary store, e.g. file-only.
func SingleMode(primary string) string {
	return primary + "-only"
}
