// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package lamarzocco

import (
	"fmt"
	"time"
)

// IsOn reports whether the machine is powered on, based on the
// machine-status widget. Missing or malformed widgets read as off.
func (s *MachineStatus) IsOn() bool {
	for _, widget := range s.Widgets {
		if widget.Code != widgetMachineStatus || widget.Output == nil {
			continue
		}
		if widget.Output.Status == "" {
			continue
		}
		return widget.Output.Status != statusStandBy
	}
	return false
}

// IsReady reports whether the machine is powered on and the coffee
// boiler is at temperature.
func (s *MachineStatus) IsReady() bool {
	if !s.IsOn() {
		return false
	}
	for _, widget := range s.Widgets {
		if widget.Code != widgetCoffeeBoiler || widget.Output == nil {
			continue
		}
		return widget.Output.Status == statusReady
	}
	return false
}

// StatusString renders the machine state for display, using now to
// phrase the boiler's time-to-ready:
//
//	"Standby", "On (Ready)", "On (Ready in N mins)",
//	"On (Ready in 1 min)", "On (Ready in < 1 min)",
//	"On (Ready soon)", "On", "Unknown"
func (s *MachineStatus) StatusString(now time.Time) string {
	poweredOn := false
	for _, widget := range s.Widgets {
		if widget.Code != widgetMachineStatus || widget.Output == nil {
			continue
		}
		switch widget.Output.Status {
		case "":
			continue
		case statusStandBy:
			return "Standby"
		case statusPoweredOn:
			poweredOn = true
		default:
			// An unrecognized machine state is shown verbatim rather
			// than masked as Unknown.
			return widget.Output.Status
		}
		break
	}

	if !poweredOn {
		return "Unknown"
	}

	for _, widget := range s.Widgets {
		if widget.Code != widgetCoffeeBoiler || widget.Output == nil {
			continue
		}
		output := widget.Output
		if output.Status == "" {
			continue
		}
		if output.Status == statusReady {
			return "On (Ready)"
		}
		if output.ReadyStartTime == 0 {
			return "On (Ready soon)"
		}

		nowMillis := now.UnixMilli()
		if output.ReadyStartTime <= nowMillis {
			return "On (Ready in < 1 min)"
		}
		minutesRemaining := (output.ReadyStartTime - nowMillis) / 1000 / 60
		switch minutesRemaining {
		case 0:
			return "On (Ready in < 1 min)"
		case 1:
			return "On (Ready in 1 min)"
		default:
			return fmt.Sprintf("On (Ready in %d mins)", minutesRemaining)
		}
	}

	return "On"
}
