package connector

import "context"

// MaxResponseLength caps the maximum byte-length of responses that connectors must support.
const MaxResponseLength = 100000

// Connector issues authenticated Owner API requests on behalf of a single vehicle.
type Connector interface {
	// ExecuteCommand sends a command to the vehicle and reports whether the vehicle executed
	// it. A nil body sends an empty request. The command names and body schemas are listed in
	// the Owner API documentation; bodies must support JSON serialization.
	//
	// A nil error means the vehicle reported success. Rejections are returned as
	// [protocol.CommandError] and transport failures as a distinct error kind; see the
	// protocol package.
	ExecuteCommand(ctx context.Context, name string, body interface{}) error

	// GetData fetches a vehicle-scoped data endpoint, such as "data_request/climate_state",
	// and returns the payload with the response envelope already removed.
	GetData(ctx context.Context, endpoint string) ([]byte, error)

	// VehicleID returns the API-internal id used in request paths. This is not the VIN and
	// not the manufacturer-assigned vehicle_id.
	VehicleID() int64

	// Close releases the connection. Repeated calls must be idempotent.
	Close()
}
