package kits

import "time"

// Kit is a medical kit carried on an ambulance. Contents and stock levels
// live elsewhere; this service owns the kit records themselves.
type Kit struct {
	ID        string
	Name      string
	VehicleID string
	CreatedAt time.Time
	UpdatedAt time.Time
}
