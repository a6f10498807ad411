package vehicle

import "context"

// HonkHorn honks the vehicle's horn.
func (v *Vehicle) HonkHorn(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "honk_horn", nil)
}

// FlashLights flashes the vehicle's headlights.
func (v *Vehicle) FlashLights(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "flash_lights", nil)
}
