package inventory

// UnitStatus describes the disposition of stock units at a location.
// Returned units are routed into a status bucket by the return engine;
// only AVAILABLE and AVAILABLE_USED stock can be sold or rented out.
type UnitStatus string

const (
	UnitStatusAvailable           UnitStatus = "AVAILABLE"
	UnitStatusAvailableUsed       UnitStatus = "AVAILABLE_USED"
	UnitStatusRequiresCleaning    UnitStatus = "REQUIRES_CLEANING"
	UnitStatusRequiresInspection  UnitStatus = "REQUIRES_INSPECTION"
	UnitStatusInTransitToSupplier UnitStatus = "IN_TRANSIT_TO_SUPPLIER"
)

// IsValid checks if the status is a known UnitStatus
func (s UnitStatus) IsValid() bool {
	switch s {
	case UnitStatusAvailable, UnitStatusAvailableUsed, UnitStatusRequiresCleaning,
		UnitStatusRequiresInspection, UnitStatusInTransitToSupplier:
		return true
	}
	return false
}

// String returns the string representation of UnitStatus
func (s UnitStatus) String() string {
	return string(s)
}

// OnSite reports whether units in this status are physically at the location.
// In-transit units have left the building and do not count as on-hand.
func (s UnitStatus) OnSite() bool {
	return s != UnitStatusInTransitToSupplier
}

// Rentable reports whether units in this status can be allocated to new
// sales or rentals without further handling
func (s UnitStatus) Rentable() bool {
	return s == UnitStatusAvailable || s == UnitStatusAvailableUsed
}

// AllUnitStatuses returns every defined unit status
func AllUnitStatuses() []UnitStatus {
	return []UnitStatus{
		UnitStatusAvailable,
		UnitStatusAvailableUsed,
		UnitStatusRequiresCleaning,
		UnitStatusRequiresInspection,
		UnitStatusInTransitToSupplier,
	}
}
