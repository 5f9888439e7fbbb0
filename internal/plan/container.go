package plan

import (
	"fmt"
	"strings"
	"unicode"
)

// ReleaseApproved is the cargo release status that clears a container for
// destuffing. Backend values are compared after NormalizeReleaseStatus.
const ReleaseApproved = "APPROVED"

// CargoUnit is one house bill assigned into a container within a plan.
type CargoUnit struct {
	UnitID      string `json:"unitId"`
	Code        string `json:"code"`
	ManifestRef string `json:"manifestRef"`
}

// OrderContainer is a physical container known to the yard, independent of
// any plan. Its cargo units are the full set available for assignment.
type OrderContainer struct {
	ID                        string      `json:"id"`
	Number                    string      `json:"number"`
	AllowStuffingOrDestuffing bool        `json:"allowStuffingOrDestuffing"`
	CargoReleaseStatus        string      `json:"cargoReleaseStatus"`
	CargoUnits                []CargoUnit `json:"cargoUnits"`
}

// PlanContainer is the assignment of one order container into a plan. ID is
// the persisted join-row identifier; it is empty until the assignment has
// been saved. The selected cargo units may lag behind the order container's
// full list when units changed after the assignment was made.
type PlanContainer struct {
	ID             string         `json:"id"`
	OrderContainer OrderContainer `json:"orderContainer"`
	CargoUnits     []CargoUnit    `json:"cargoUnits"`
}

// Label returns the container number for display, falling back to a
// placeholder built from the order-container or join-row ID when the number
// is not set.
func (c *PlanContainer) Label() string {
	if label := c.OrderContainer.Label(); label != "" {
		return label
	}
	return fmt.Sprintf("container %s", c.ID)
}

// Label returns the container number, or a placeholder from the ID when the
// number is not set. Empty when neither is available.
func (o *OrderContainer) Label() string {
	if o.Number != "" {
		return o.Number
	}
	if o.ID != "" {
		return fmt.Sprintf("container %s", o.ID)
	}
	return ""
}

// UnitIDs returns the IDs of the container's full cargo-unit list.
func (o *OrderContainer) UnitIDs() []string {
	ids := make([]string, len(o.CargoUnits))
	for i, u := range o.CargoUnits {
		ids[i] = u.UnitID
	}
	return ids
}

// UnitIDs returns the IDs of the cargo units selected into the plan.
func (c *PlanContainer) UnitIDs() []string {
	ids := make([]string, len(c.CargoUnits))
	for i, u := range c.CargoUnits {
		ids[i] = u.UnitID
	}
	return ids
}

// ReleaseApproved reports whether the container's cargo release status,
// after normalization, equals ReleaseApproved.
func (o *OrderContainer) ReleaseApproved() bool {
	return NormalizeReleaseStatus(o.CargoReleaseStatus) == ReleaseApproved
}

// NormalizeReleaseStatus canonicalizes a backend release status: trims,
// uppercases, and collapses runs of whitespace or hyphens to a single
// underscore. Backend values are not guaranteed pre-normalized.
func NormalizeReleaseStatus(s string) string {
	upper := strings.ToUpper(strings.TrimSpace(s))
	fields := strings.FieldsFunc(upper, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	})
	return strings.Join(fields, "_")
}
