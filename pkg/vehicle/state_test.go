package vehicle

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
)

func TestTimeFromMillis(t *testing.T) {
	got := TimeFromMillis(1508766510148)
	want := time.Date(2017, time.October, 23, 12, 48, 30, 148000000, time.UTC)
	if !got.Equal(want) {
		t.Errorf("TimeFromMillis(1508766510148) = %s, want %s", got, want)
	}
}

func TestTimestampJSON(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte("1508766510148"), &ts); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if !ts.Equal(TimeFromMillis(1508766510148)) {
		t.Errorf("unexpected time %s", ts)
	}

	encoded, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal: %s", err)
	}
	if string(encoded) != "1508766510148" {
		t.Errorf("round trip produced %s", encoded)
	}

	if err := json.Unmarshal([]byte("null"), &ts); err != nil {
		t.Fatalf("unmarshal null: %s", err)
	}
	if !ts.IsZero() {
		t.Errorf("null should decode to the zero time, got %s", ts)
	}
	if encoded, err = json.Marshal(ts); err != nil {
		t.Fatalf("marshal zero: %s", err)
	}
	if string(encoded) != "null" {
		t.Errorf("the zero time should encode as null, got %s", encoded)
	}

	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Error("expected error decoding a non-numeric timestamp")
	}
}

func TestVehicleData(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	payload := `{"response":{
		"id": 42,
		"vin": "5YJSA1CN5DFP00001",
		"display_name": "Nikola",
		"state": "online",
		"charge_state": {"battery_level": 64, "charging_state": "Disconnected", "timestamp": 1508766510148},
		"climate_state": {"inside_temp": 21.6, "driver_temp_setting": 21.6},
		"drive_state": {"shift_state": null, "speed": null, "latitude": 37.548271, "gps_as_of": 1508766508},
		"gui_settings": {"gui_distance_units": "mi/hr"},
		"vehicle_state": {"locked": true, "sun_roof_percent_open": 20, "odometer": 4188.31}
	}}`
	httpmock.RegisterResponder(http.MethodGet,
		testBaseURL+"/vehicles/42/"+dataEndpoint,
		httpmock.NewStringResponder(http.StatusOK, payload))

	car := newTestVehicle(42)
	data, err := car.Data(context.Background())
	if err != nil {
		t.Fatalf("Data: %s", err)
	}

	if data.VIN != "5YJSA1CN5DFP00001" {
		t.Errorf("VIN = %q", data.VIN)
	}
	if data.ChargeState.BatteryLevel != 64 {
		t.Errorf("battery level = %d", data.ChargeState.BatteryLevel)
	}
	if !data.ChargeState.Timestamp.Equal(TimeFromMillis(1508766510148)) {
		t.Errorf("charge state timestamp = %s", data.ChargeState.Timestamp)
	}
	if data.DriveState.ShiftState != nil {
		t.Errorf("shift state should be nil when parked, got %q", *data.DriveState.ShiftState)
	}
	if data.DriveState.GpsAsOf != 1508766508 {
		t.Errorf("gps_as_of = %d", data.DriveState.GpsAsOf)
	}
	if !data.VehicleState.Locked {
		t.Error("vehicle should be locked")
	}
	if open := data.VehicleState.SunRoofPercentOpen; open == nil || *open != 20 {
		t.Errorf("sun roof percent open = %v", open)
	}
}
