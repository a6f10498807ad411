package vehicle

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/ownerapi/tesla-owner/pkg/protocol"
)

func TestCelsiusSetting(t *testing.T) {
	valid := []struct {
		input float64
		want  float64
	}{
		{15, 15},
		{20.5, 20.5},
		{28, 28},
		{59, 15}, // Fahrenheit lower bound
		{78, 26}, // 25.55C rounds up
		{82, 28}, // Fahrenheit upper bound
		{72, 22}, // 22.22C rounds down
	}
	for _, test := range valid {
		got, err := celsiusSetting("driver temperature", test.input)
		if err != nil {
			t.Errorf("celsiusSetting(%v): %s", test.input, err)
			continue
		}
		if got != test.want {
			t.Errorf("celsiusSetting(%v) = %v, want %v", test.input, got, test.want)
		}
	}

	invalid := []float64{14.5, 20.3, 28.5, 58, 83, 72.5, -40}
	for _, input := range invalid {
		if _, err := celsiusSetting("driver temperature", input); !protocol.IsValidation(err) {
			t.Errorf("celsiusSetting(%v) = %v, expected validation error", input, err)
		}
	}
}

func TestSetTemperaturesRequiresASide(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	car := newTestVehicle(42)
	if err := car.SetTemperatures(context.Background(), nil, nil); !protocol.IsValidation(err) {
		t.Errorf("expected validation error when both sides are nil, got %v", err)
	}
	if count := httpmock.GetTotalCallCount(); count != 0 {
		t.Errorf("validation failure should not reach the network, saw %d calls", count)
	}
}

func TestSetTemperaturesBothSides(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/vehicles/42/command/set_temps",
		func(r *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"driver_temp":21.5,"passenger_temp":19}` {
				t.Errorf("unexpected body: %s", body)
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"response":{"result":true,"reason":""}}`), nil
		})

	car := newTestVehicle(42)
	driver, passenger := 21.5, 19.0
	if err := car.SetTemperatures(context.Background(), &driver, &passenger); err != nil {
		t.Fatalf("SetTemperatures: %s", err)
	}
	if count := httpmock.GetTotalCallCount(); count != 1 {
		t.Errorf("expected exactly one request, saw %d", count)
	}
}

func TestSetTemperaturesFillsMissingSide(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/vehicles/42/data_request/climate_state",
		httpmock.NewStringResponder(http.StatusOK,
			`{"response":{"driver_temp_setting":20,"passenger_temp_setting":23.5}}`))
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/vehicles/42/command/set_temps",
		func(r *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"driver_temp":21,"passenger_temp":23.5}` {
				t.Errorf("unexpected body: %s", body)
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"response":{"result":true,"reason":""}}`), nil
		})

	car := newTestVehicle(42)
	driver := 21.0
	if err := car.SetTemperatures(context.Background(), &driver, nil); err != nil {
		t.Fatalf("SetTemperatures: %s", err)
	}

	info := httpmock.GetCallCountInfo()
	if n := info["GET "+testBaseURL+"/vehicles/42/data_request/climate_state"]; n != 1 {
		t.Errorf("expected exactly one climate_state read, saw %d", n)
	}
}

func TestClimateOnOff(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	for _, name := range []string{"auto_conditioning_start", "auto_conditioning_stop"} {
		httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/vehicles/42/command/"+name,
			httpmock.NewStringResponder(http.StatusOK, `{"response":{"result":true,"reason":""}}`))
	}

	car := newTestVehicle(42)
	if err := car.ClimateOn(context.Background()); err != nil {
		t.Errorf("ClimateOn: %s", err)
	}
	if err := car.ClimateOff(context.Background()); err != nil {
		t.Errorf("ClimateOff: %s", err)
	}
}
