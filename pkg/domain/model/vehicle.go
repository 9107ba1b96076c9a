package model

import "strings"

// VehicleProfile describes the vehicle the assistant is twinned to.
// It is rendered into the persona line of every composed prompt.
type VehicleProfile struct {
	Make  string
	Model string
	Year  int
}

// DisplayName renders the profile as "MAKE MODEL", empty parts omitted
func (v VehicleProfile) DisplayName() string {
	parts := []string{}
	if v.Make != "" {
		parts = append(parts, strings.ToUpper(v.Make))
	}
	if v.Model != "" {
		parts = append(parts, strings.ToUpper(v.Model))
	}
	return strings.Join(parts, " ")
}
