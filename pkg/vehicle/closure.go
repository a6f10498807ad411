package vehicle

import "context"

type sunroofCommand struct {
	State string `json:"state"`
}

// VentSunroof opens the panoramic sunroof to the vent position.
func (v *Vehicle) VentSunroof(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "sun_roof_control", &sunroofCommand{State: "vent"})
}

// CloseSunroof closes the panoramic sunroof.
func (v *Vehicle) CloseSunroof(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "sun_roof_control", &sunroofCommand{State: "close"})
}
