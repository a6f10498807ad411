package vehicle

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/ownerapi/tesla-owner/pkg/connector/inet"
	"github.com/ownerapi/tesla-owner/pkg/protocol"
)

const testBaseURL = "https://owner-api.example.com/api/1"

func newTestVehicle(id int64) *Vehicle {
	conn := inet.NewConnection(id, "Bearer test-token", testBaseURL, "test-agent")
	return New(conn, Summary{ID: id})
}

func TestValidPIN(t *testing.T) {
	validPINs := []string{
		"0000",
		"0123",
		"4569",
		"9999",
	}
	invalidPINs := []string{
		"",
		"123a",
		"12345",
		"10000",
		"1",
		"four",
	}
	for _, p := range validPINs {
		if !IsValidPIN(p) {
			t.Errorf("%s is a valid PIN", p)
		}
	}
	for _, p := range invalidPINs {
		if IsValidPIN(p) {
			t.Errorf("%s is not a valid PIN", p)
		}
	}
}

func TestValetPINValidatedBeforeSending(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	car := newTestVehicle(42)
	err := car.EnableValetMode(context.Background(), "10000")
	if !protocol.IsValidation(err) {
		t.Fatalf("expected validation error for out-of-range PIN, got %v", err)
	}
	if count := httpmock.GetTotalCallCount(); count != 0 {
		t.Errorf("validation failure should not reach the network, saw %d calls", count)
	}
}

func TestValetModeBodies(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var bodies []string
	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/vehicles/42/command/set_valet_mode",
		func(r *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(r.Body)
			bodies = append(bodies, string(body))
			return httpmock.NewStringResponse(http.StatusOK, `{"response":{"result":true,"reason":""}}`), nil
		})

	car := newTestVehicle(42)
	if err := car.EnableValetMode(context.Background(), "0231"); err != nil {
		t.Fatalf("EnableValetMode: %s", err)
	}
	if err := car.EnableValetMode(context.Background(), ""); err != nil {
		t.Fatalf("EnableValetMode without PIN: %s", err)
	}
	if err := car.DisableValetMode(context.Background()); err != nil {
		t.Fatalf("DisableValetMode: %s", err)
	}

	want := []string{
		`{"on":"true","password":"0231"}`,
		`{"on":"true"}`,
		`{"on":"false"}`,
	}
	for i, body := range want {
		if bodies[i] != body {
			t.Errorf("request %d body = %s, want %s", i, bodies[i], body)
		}
	}
}

func TestRemoteStartRequiresPassword(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	car := newTestVehicle(42)
	if err := car.RemoteStart(context.Background(), ""); !protocol.IsValidation(err) {
		t.Errorf("expected validation error for empty password, got %v", err)
	}
	if count := httpmock.GetTotalCallCount(); count != 0 {
		t.Errorf("validation failure should not reach the network, saw %d calls", count)
	}

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/vehicles/42/command/remote_start_drive",
		func(r *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"password":"hunter2"}` {
				t.Errorf("unexpected body: %s", body)
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"response":{"result":true,"reason":""}}`), nil
		})
	if err := car.RemoteStart(context.Background(), "hunter2"); err != nil {
		t.Errorf("RemoteStart: %s", err)
	}
}
