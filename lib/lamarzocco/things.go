// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package lamarzocco

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Machine is one device on the account, as returned by the things
// listing. Name and model are optional in the API.
type Machine struct {
	SerialNumber string `json:"serialNumber"`
	Name         string `json:"name"`
	Model        string `json:"modelName"`
	Location     string `json:"location"`
	Connected    bool   `json:"connected"`
}

// DisplayName returns the best human label for the machine: the name,
// falling back to the model, falling back to the serial number.
func (m Machine) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	if m.Model != "" {
		return m.Model
	}
	return m.SerialNumber
}

// MachineStatus is the dashboard widget list for one machine. Each
// widget reports one subsystem; the client reads the machine-status
// and coffee-boiler widgets.
type MachineStatus struct {
	Widgets []Widget `json:"widgets"`
}

// Widget is one dashboard entry, identified by its code.
type Widget struct {
	Code   string        `json:"code"`
	Output *WidgetOutput `json:"output"`
}

// WidgetOutput is the union of output fields across the widget codes
// the client reads. ReadyStartTime is milliseconds since the Unix
// epoch, set by the boiler widget while heating.
type WidgetOutput struct {
	Status         string `json:"status"`
	Mode           string `json:"mode"`
	ReadyStartTime int64  `json:"readyStartTime"`
}

// Widget codes and status values used by the power and readiness
// logic.
const (
	widgetMachineStatus = "CMMachineStatus"
	widgetCoffeeBoiler  = "CMCoffeeBoiler"

	statusStandBy   = "StandBy"
	statusPoweredOn = "PoweredOn"
	statusReady     = "Ready"

	modeBrewing = "BrewingMode"
	modeStandBy = "StandBy"
)

// Machines lists the devices on the authenticated account. The API has
// returned both a bare array and a {"things": [...]} wrapper across
// versions; both are accepted.
func (client *Client) Machines(ctx context.Context) ([]Machine, error) {
	header, err := client.authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	body, err := client.doRaw(ctx, http.MethodGet, "/things", nil, header)
	if err != nil {
		return nil, fmt.Errorf("lamarzocco: listing machines: %w", err)
	}

	var machines []Machine
	if err := json.Unmarshal(body, &machines); err == nil {
		return machines, nil
	}

	var wrapped struct {
		Things []Machine `json:"things"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("lamarzocco: decoding machines response: %w", err)
	}
	return wrapped.Things, nil
}

// Dashboard fetches the current widget status for one machine.
func (client *Client) Dashboard(ctx context.Context, serialNumber string) (*MachineStatus, error) {
	header, err := client.authHeaders(ctx)
	if err != nil {
		return nil, err
	}

	path := "/things/" + url.PathEscape(serialNumber) + "/dashboard"
	var status MachineStatus
	if err := client.do(ctx, http.MethodGet, path, nil, &status, header); err != nil {
		return nil, fmt.Errorf("lamarzocco: fetching dashboard for %s: %w", serialNumber, err)
	}
	return &status, nil
}

// SetPower switches a machine between brewing mode and standby.
func (client *Client) SetPower(ctx context.Context, serialNumber string, on bool) error {
	header, err := client.authHeaders(ctx)
	if err != nil {
		return err
	}

	mode := modeStandBy
	if on {
		mode = modeBrewing
	}

	path := "/things/" + url.PathEscape(serialNumber) + "/command/CoffeeMachineChangeMode"
	requestBody := map[string]string{"mode": mode}
	if err := client.do(ctx, http.MethodPost, path, requestBody, nil, header); err != nil {
		return fmt.Errorf("lamarzocco: setting power for %s: %w", serialNumber, err)
	}

	client.logger.Debug("power command sent", "serial", serialNumber, "mode", mode)
	return nil
}
