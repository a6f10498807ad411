package vehicle

import (
	"context"

	"github.com/ownerapi/tesla-owner/pkg/protocol"
)

// Valid charge limits, as percentages of full capacity.
const (
	ChargeLimitMin = 50
	ChargeLimitMax = 100
)

// StartCharging starts charging. The vehicle must be plugged in.
func (v *Vehicle) StartCharging(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "charge_start", nil)
}

// StopCharging stops an in-progress charge.
func (v *Vehicle) StopCharging(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "charge_stop", nil)
}

// OpenChargePort opens the charge port door.
func (v *Vehicle) OpenChargePort(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "charge_port_door_open", nil)
}

// CloseChargePort closes the charge port door on vehicles with a motorized door.
func (v *Vehicle) CloseChargePort(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "charge_port_door_close", nil)
}

// SetChargeLimit sets the charge limit to the given percentage. The API accepts values between
// ChargeLimitMin and ChargeLimitMax inclusive; out-of-range values are rejected locally rather
// than clamped.
func (v *Vehicle) SetChargeLimit(ctx context.Context, percent int) error {
	if percent < ChargeLimitMin || percent > ChargeLimitMax {
		return protocol.NewValidationError("percent", "must be in [%d, %d]", ChargeLimitMin, ChargeLimitMax)
	}
	body := struct {
		Percent int `json:"percent"`
	}{Percent: percent}
	return v.conn.ExecuteCommand(ctx, "set_charge_limit", &body)
}
