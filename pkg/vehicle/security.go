package vehicle

import (
	"context"

	"github.com/ownerapi/tesla-owner/pkg/protocol"
)

// Lock locks the vehicle's doors.
func (v *Vehicle) Lock(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "door_lock", nil)
}

// Unlock unlocks the vehicle's doors.
func (v *Vehicle) Unlock(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "door_unlock", nil)
}

// Wakeup brings the vehicle online. Vehicles that are asleep reject most commands; clients
// should wake the vehicle and poll its state until it reports "online" before retrying.
func (v *Vehicle) Wakeup(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "wake_up", nil)
}

// IsValidPIN returns true if the string is a valid four-digit PIN.
func IsValidPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

type valetCommand struct {
	On       string `json:"on"`
	Password string `json:"password,omitempty"`
}

// EnableValetMode enables valet mode. The pin is optional; when provided it must be a four-digit
// numeric string (leading zeros are significant) and is required later to disable valet mode
// from the vehicle's touchscreen.
func (v *Vehicle) EnableValetMode(ctx context.Context, pin string) error {
	if pin != "" && !IsValidPIN(pin) {
		return protocol.NewValidationError("pin", "must be a four-digit numeric string")
	}
	return v.conn.ExecuteCommand(ctx, "set_valet_mode", &valetCommand{On: "true", Password: pin})
}

// DisableValetMode disables valet mode.
func (v *Vehicle) DisableValetMode(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "set_valet_mode", &valetCommand{On: "false"})
}

// ResetValetPIN clears the saved valet PIN.
func (v *Vehicle) ResetValetPIN(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "reset_valet_pin", nil)
}

// RemoteStart allows the vehicle to be driven without a key fob for the next two minutes. The
// password is the account's login password, not an API token; the request body is excluded from
// debug logs.
func (v *Vehicle) RemoteStart(ctx context.Context, password string) error {
	if password == "" {
		return protocol.NewValidationError("password", "must not be empty")
	}
	body := struct {
		Password string `json:"password"`
	}{Password: password}
	return v.conn.ExecuteCommand(ctx, "remote_start_drive", &body)
}
