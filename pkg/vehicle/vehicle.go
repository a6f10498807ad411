// Package vehicle implements commands and state queries for a single vehicle on an Owner API
// account.
//
// Command methods return nil when the vehicle reports that it executed the command. A vehicle
// may decline a command for reasons that are perfectly normal, such as closing a charge port
// that is already closed; these rejections are reported as [protocol.CommandError] carrying the
// reason supplied by the API. Parameters are validated locally before any network traffic, and
// failures there are reported as [protocol.ValidationError].
package vehicle

import (
	"strings"

	"github.com/ownerapi/tesla-owner/pkg/connector"
)

// Summary describes a vehicle as returned by the account's vehicle list endpoint.
//
// ID is the API-internal identifier used in request paths. VehicleID is a separate identifier
// used by the streaming and push services. The two are easy to conflate and not interchangeable.
type Summary struct {
	ID                     int64      `json:"id"`
	VehicleID              int64      `json:"vehicle_id"`
	VIN                    string     `json:"vin"`
	DisplayName            string     `json:"display_name"`
	OptionCodes            string     `json:"option_codes"`
	Color                  *string    `json:"color"`
	Tokens                 []string   `json:"tokens"`
	State                  string     `json:"state"`
	IDString               string     `json:"id_s"`
	RemoteStartEnabled     bool       `json:"remote_start_enabled"`
	CalendarEnabled        bool       `json:"calendar_enabled"`
	NotificationsEnabled   bool       `json:"notifications_enabled"`
	InService              bool       `json:"in_service"`
	BackseatToken          *string    `json:"backseat_token"`
	BackseatTokenUpdatedAt *Timestamp `json:"backseat_token_updated_at"`
}

// OwnerAPIID returns the identifier used in Owner API request paths.
func (s *Summary) OwnerAPIID() int64 {
	return s.ID
}

// TokenList returns the vehicle's streaming tokens joined with commas, for display.
func (s *Summary) TokenList() string {
	return strings.Join(s.Tokens, ",")
}

// A Vehicle represents a car bound to an Owner API account.
type Vehicle struct {
	conn    connector.Connector
	summary Summary
}

// New creates a Vehicle that sends commands through conn. The summary may be zero-valued apart
// from its ID when the caller skipped the vehicle list endpoint.
func New(conn connector.Connector, summary Summary) *Vehicle {
	return &Vehicle{conn: conn, summary: summary}
}

// ID returns the API-internal vehicle id used in request paths.
func (v *Vehicle) ID() int64 {
	return v.conn.VehicleID()
}

func (v *Vehicle) VIN() string {
	return v.summary.VIN
}

func (v *Vehicle) DisplayName() string {
	return v.summary.DisplayName
}

// Summary returns the vehicle list entry this Vehicle was constructed from.
func (v *Vehicle) Summary() Summary {
	return v.summary
}

// Disconnect releases the vehicle's connection. The Vehicle is unusable afterwards.
func (v *Vehicle) Disconnect() {
	v.conn.Close()
}
