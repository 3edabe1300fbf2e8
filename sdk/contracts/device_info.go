package contracts

import "fmt"

// DeviceInfo describes a MIDI input a performance can be recorded from.
type DeviceInfo struct {
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer,omitempty"`
	EntityName   string `json:"entity,omitempty"`
}

// String formats the device for listings: "Name (Manufacturer)".
func (d DeviceInfo) String() string {
	if d.Manufacturer == "" {
		return d.Name
	}
	return fmt.Sprintf("%s (%s)", d.Name, d.Manufacturer)
}
