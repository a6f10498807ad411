package vehicle

import (
	"context"
	"math"

	"github.com/ownerapi/tesla-owner/pkg/protocol"
)

// Temperature bands accepted by the API. The vehicle's thermostat takes Celsius values at half-
// degree resolution; Fahrenheit inputs are accepted as whole degrees and converted before
// transmission.
const (
	TempCelsiusMin    = 15.0
	TempCelsiusMax    = 28.0
	TempFahrenheitMin = 59.0
	TempFahrenheitMax = 82.0
)

// ClimateOn turns on the climate control system.
func (v *Vehicle) ClimateOn(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "auto_conditioning_start", nil)
}

// ClimateOff turns off the climate control system.
func (v *Vehicle) ClimateOff(ctx context.Context) error {
	return v.conn.ExecuteCommand(ctx, "auto_conditioning_stop", nil)
}

// celsiusSetting validates a temperature setting and normalizes it to Celsius. Values at or
// below TempCelsiusMax are interpreted as Celsius and must fall on half-degree increments;
// larger values are interpreted as whole-degree Fahrenheit. The unit inference is part of the
// API surface and intentionally ambiguous at the band boundaries.
func celsiusSetting(field string, value float64) (float64, error) {
	if value <= TempCelsiusMax {
		if value < TempCelsiusMin {
			return 0, protocol.NewValidationError(field, "Celsius values must be in [%g, %g]", TempCelsiusMin, TempCelsiusMax)
		}
		if math.Mod(value*2, 1) != 0 {
			return 0, protocol.NewValidationError(field, "Celsius values must be in half-degree increments")
		}
		return value, nil
	}
	if value < TempFahrenheitMin || value > TempFahrenheitMax {
		return 0, protocol.NewValidationError(field, "Fahrenheit values must be in [%g, %g]", TempFahrenheitMin, TempFahrenheitMax)
	}
	if value != math.Trunc(value) {
		return 0, protocol.NewValidationError(field, "Fahrenheit values must be whole degrees")
	}
	return math.Round((value - 32) * 5 / 9), nil
}

type setTempsCommand struct {
	DriverTemp    float64 `json:"driver_temp"`
	PassengerTemp float64 `json:"passenger_temp"`
}

// SetTemperatures sets the driver and passenger temperature setpoints. At least one of driver
// and passenger must be non-nil; the API requires both fields, so a missing side is filled from
// the vehicle's current climate settings, which costs one extra state read.
func (v *Vehicle) SetTemperatures(ctx context.Context, driver, passenger *float64) error {
	if driver == nil && passenger == nil {
		return protocol.NewValidationError("temperature", "at least one of driver and passenger must be set")
	}

	var cmd setTempsCommand
	var err error
	if driver != nil {
		if cmd.DriverTemp, err = celsiusSetting("driver temperature", *driver); err != nil {
			return err
		}
	}
	if passenger != nil {
		if cmd.PassengerTemp, err = celsiusSetting("passenger temperature", *passenger); err != nil {
			return err
		}
	}

	if driver == nil || passenger == nil {
		climate, err := v.ClimateState(ctx)
		if err != nil {
			return err
		}
		if driver == nil {
			cmd.DriverTemp = climate.DriverTempSetting
		}
		if passenger == nil {
			cmd.PassengerTemp = climate.PassengerTempSetting
		}
	}

	return v.conn.ExecuteCommand(ctx, "set_temps", &cmd)
}
