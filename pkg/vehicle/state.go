package vehicle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TimeFromMillis converts a millisecond-epoch timestamp, as used throughout Owner API state
// payloads, to an absolute UTC time.
func TimeFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Timestamp decodes the millisecond-epoch integers the Owner API uses for timestamp fields.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("invalid timestamp: %s", err)
	}
	t.Time = TimeFromMillis(ms)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UnixMilli())
}

// ChargeState reports the battery and charging status.
type ChargeState struct {
	ChargingState            string    `json:"charging_state"`
	ChargeLimitSoc           int       `json:"charge_limit_soc"`
	ChargeLimitSocStd        int       `json:"charge_limit_soc_std"`
	ChargeLimitSocMin        int       `json:"charge_limit_soc_min"`
	ChargeLimitSocMax        int       `json:"charge_limit_soc_max"`
	BatteryLevel             int       `json:"battery_level"`
	UsableBatteryLevel       int       `json:"usable_battery_level"`
	BatteryRange             float64   `json:"battery_range"`
	EstBatteryRange          float64   `json:"est_battery_range"`
	ChargeRate               float64   `json:"charge_rate"`
	ChargerVoltage           int       `json:"charger_voltage"`
	ChargerActualCurrent     int       `json:"charger_actual_current"`
	ChargerPower             int       `json:"charger_power"`
	TimeToFullCharge         float64   `json:"time_to_full_charge"`
	ChargePortDoorOpen       bool      `json:"charge_port_door_open"`
	ChargePortLatch          string    `json:"charge_port_latch"`
	ScheduledChargingPending bool      `json:"scheduled_charging_pending"`
	Timestamp                Timestamp `json:"timestamp"`
}

// ClimateState reports cabin temperatures and HVAC status. Temperatures are in Celsius
// regardless of the vehicle's GUI settings.
type ClimateState struct {
	InsideTemp           float64   `json:"inside_temp"`
	OutsideTemp          float64   `json:"outside_temp"`
	DriverTempSetting    float64   `json:"driver_temp_setting"`
	PassengerTempSetting float64   `json:"passenger_temp_setting"`
	IsAutoConditioningOn bool      `json:"is_auto_conditioning_on"`
	IsClimateOn          bool      `json:"is_climate_on"`
	IsFrontDefrosterOn   bool      `json:"is_front_defroster_on"`
	IsRearDefrosterOn    bool      `json:"is_rear_defroster_on"`
	FanStatus            int       `json:"fan_status"`
	MinAvailTemp         float64   `json:"min_avail_temp"`
	MaxAvailTemp         float64   `json:"max_avail_temp"`
	SeatHeaterLeft       int       `json:"seat_heater_left"`
	SeatHeaterRight      int       `json:"seat_heater_right"`
	SmartPreconditioning bool      `json:"smart_preconditioning"`
	Timestamp            Timestamp `json:"timestamp"`
}

// DriveState reports the vehicle's position and motion. GpsAsOf is in whole seconds, unlike the
// millisecond Timestamp field.
type DriveState struct {
	ShiftState *string   `json:"shift_state"`
	Speed      *float64  `json:"speed"`
	Power      int       `json:"power"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Heading    int       `json:"heading"`
	GpsAsOf    int64     `json:"gps_as_of"`
	Timestamp  Timestamp `json:"timestamp"`
}

// GuiSettings reports the unit preferences shown on the vehicle's touchscreen.
type GuiSettings struct {
	GuiDistanceUnits    string    `json:"gui_distance_units"`
	GuiTemperatureUnits string    `json:"gui_temperature_units"`
	GuiChargeRateUnits  string    `json:"gui_charge_rate_units"`
	Gui24HourTime       bool      `json:"gui_24_hour_time"`
	GuiRangeDisplay     string    `json:"gui_range_display"`
	Timestamp           Timestamp `json:"timestamp"`
}

// VehicleState reports doors, locks, and software information.
type VehicleState struct {
	APIVersion             int       `json:"api_version"`
	Locked                 bool      `json:"locked"`
	ValetMode              bool      `json:"valet_mode"`
	ValetPinNeeded         bool      `json:"valet_pin_needed"`
	RemoteStart            bool      `json:"remote_start"`
	RemoteStartSupported   bool      `json:"remote_start_supported"`
	Odometer               float64   `json:"odometer"`
	CarVersion             string    `json:"car_version"`
	DriverFrontDoor        int       `json:"df"`
	DriverRearDoor         int       `json:"dr"`
	PassengerFrontDoor     int       `json:"pf"`
	PassengerRearDoor      int       `json:"pr"`
	FrontTrunk             int       `json:"ft"`
	RearTrunk              int       `json:"rt"`
	SunRoofPercentOpen     *int      `json:"sun_roof_percent_open"`
	SunRoofState           string    `json:"sun_roof_state"`
	CenterDisplayState     int       `json:"center_display_state"`
	NotificationsSupported bool      `json:"notifications_supported"`
	Timestamp              Timestamp `json:"timestamp"`
}

// Data is the combined state bundle returned by the vehicle data endpoint: the vehicle's list
// entry plus every state category in a single response.
type Data struct {
	Summary
	ChargeState  ChargeState  `json:"charge_state"`
	ClimateState ClimateState `json:"climate_state"`
	DriveState   DriveState   `json:"drive_state"`
	GuiSettings  GuiSettings  `json:"gui_settings"`
	VehicleState VehicleState `json:"vehicle_state"`
}

const dataEndpoint = "data?vehicle_summary&climate_state&charge_state&drive_state&gui_settings&vehicle_state"

// Data fetches the combined state bundle in a single request. This is much cheaper than
// querying state categories individually and can serve cached data when the vehicle is asleep.
func (v *Vehicle) Data(ctx context.Context) (*Data, error) {
	payload, err := v.conn.GetData(ctx, dataEndpoint)
	if err != nil {
		return nil, err
	}
	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("error parsing vehicle data: %s", err)
	}
	return &data, nil
}

// ClimateState fetches the vehicle's current climate settings.
func (v *Vehicle) ClimateState(ctx context.Context) (*ClimateState, error) {
	payload, err := v.conn.GetData(ctx, "data_request/climate_state")
	if err != nil {
		return nil, err
	}
	var climate ClimateState
	if err := json.Unmarshal(payload, &climate); err != nil {
		return nil, fmt.Errorf("error parsing climate state: %s", err)
	}
	return &climate, nil
}
