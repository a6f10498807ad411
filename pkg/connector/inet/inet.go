// Package inet sends commands to vehicles over the Owner API's REST interface.
package inet

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ownerapi/tesla-owner/internal/log"
	"github.com/ownerapi/tesla-owner/pkg/connector"
	"github.com/ownerapi/tesla-owner/pkg/protocol"
)

// DefaultBaseURL is the production Owner API endpoint.
const DefaultBaseURL = "https://owner-api.teslamotors.com/api/1"

// ErrVehicleNotAwake indicates a command could not be delivered because the vehicle is offline
// or asleep. Send a wake_up command and try again.
var ErrVehicleNotAwake = protocol.NewTransportError(errors.New("vehicle unavailable: vehicle is offline or asleep"), false, true)

// sensitiveCommands lists commands whose bodies carry plaintext secrets. Their request bodies
// are kept out of debug logs.
var sensitiveCommands = map[string]bool{
	"remote_start_drive": true,
}

func ReadWithContext(ctx context.Context, r io.Reader, p []byte) ([]byte, error) {
	bytesRead := 0
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		n, err := r.Read(p[bytesRead:])
		bytesRead += n
		if err == io.EOF {
			return p[:bytesRead], nil
		}
		if err != nil {
			return p[:bytesRead], err
		}
		if bytesRead == len(p) {
			return p[:bytesRead], nil
		}
	}
}

type HttpError struct {
	Code    int
	Message string
}

func (e *HttpError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Code)
	}
	return e.Message
}

func (e *HttpError) MayHaveSucceeded() bool {
	if e.Code >= 400 && e.Code < 500 {
		return false
	}
	return e.Code != http.StatusServiceUnavailable
}

func (e *HttpError) Temporary() bool {
	return e.Code == http.StatusServiceUnavailable ||
		e.Code == http.StatusGatewayTimeout ||
		e.Code == http.StatusRequestTimeout
}

// The client requests gzip,deflate explicitly, which opts out of the http package's transparent
// decompression. Undo whatever encoding the server picked. Closing the returned reader after a
// full read verifies the stream's checksum; it does not close the underlying response body.
func decodeBody(rsp *http.Response) (io.ReadCloser, error) {
	switch rsp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(rsp.Body)
	case "deflate":
		return flate.NewReader(rsp.Body), nil
	default:
		return io.NopCloser(rsp.Body), nil
	}
}

// Do sends an authenticated Owner API request and returns the raw response body. A nil body
// sends an empty request. Callers are responsible for interpreting the response envelope.
func Do(ctx context.Context, client *http.Client, method, url, userAgent, authHeader string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	request, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, protocol.NewTransportError(err, false, false)
	}

	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Authorization", authHeader)
	request.Header.Set("Accept-Encoding", "gzip,deflate")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	result, err := client.Do(request)
	if err != nil {
		return nil, protocol.NewTransportError(err, false, true)
	}
	defer result.Body.Close()

	decoded, err := decodeBody(result)
	if err != nil {
		return nil, protocol.NewTransportError(err, true, false)
	}
	rsp := make([]byte, connector.MaxResponseLength+1)
	rsp, err = ReadWithContext(ctx, decoded, rsp)
	if err == nil {
		err = decoded.Close()
	}
	if err != nil {
		return nil, protocol.NewTransportError(err, true, false)
	}
	if len(rsp) == connector.MaxResponseLength+1 {
		return nil, protocol.NewTransportError(errors.New("response exceeds maximum length"), true, true)
	}

	log.Debug("Server returned %d: %s: %s", result.StatusCode, http.StatusText(result.StatusCode), rsp)
	switch result.StatusCode {
	case http.StatusOK:
		return rsp, nil
	case http.StatusRequestTimeout:
		if bytes.Contains(rsp, []byte("vehicle unavailable")) {
			return nil, ErrVehicleNotAwake
		}
	case http.StatusServiceUnavailable:
		return nil, ErrVehicleNotAwake
	}
	return nil, &HttpError{Code: result.StatusCode, Message: string(rsp)}
}

type commandResponse struct {
	Response struct {
		Result bool   `json:"result"`
		Reason string `json:"reason"`
	} `json:"response"`
}

// SendCommand POSTs a vehicle command to url and interprets the response envelope. A nil error
// means the vehicle reported result: true. The command may be a []byte containing
// pre-serialized JSON, any JSON-serializable value, or nil.
func SendCommand(ctx context.Context, client *http.Client, userAgent, authHeader, url string, command interface{}, redactBody bool) error {
	var body []byte
	if command != nil {
		var ok bool
		if body, ok = command.([]byte); !ok {
			var err error
			body, err = json.Marshal(command)
			if err != nil {
				return err
			}
		}
	}
	if redactBody {
		log.Debug("Sending request to %s: <redacted>", url)
	} else {
		log.Debug("Sending request to %s: %s", url, body)
	}
	rsp, err := Do(ctx, client, http.MethodPost, url, userAgent, authHeader, body)
	if err != nil {
		return err
	}

	var envelope commandResponse
	if err := json.Unmarshal(rsp, &envelope); err != nil {
		return fmt.Errorf("%w: %s", protocol.ErrBadResponse, err)
	}
	if !envelope.Response.Result {
		return &protocol.CommandError{Reason: envelope.Response.Reason}
	}
	return nil
}

// Get fetches an Owner API endpoint and returns the payload inside the response envelope.
func Get(ctx context.Context, client *http.Client, userAgent, authHeader, url string) ([]byte, error) {
	log.Debug("Requesting %s...", url)
	rsp, err := Do(ctx, client, http.MethodGet, url, userAgent, authHeader, nil)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Response json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(rsp, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %s", protocol.ErrBadResponse, err)
	}
	if len(envelope.Response) == 0 {
		return nil, protocol.ErrBadResponse
	}
	return envelope.Response, nil
}

// Connection implements the connector.Connector interface by sending REST requests scoped to a
// single vehicle.
type Connection struct {
	UserAgent  string
	client     http.Client
	baseURL    string
	authHeader string
	id         int64
	closed     bool
}

// NewConnection creates a Connection. The id is the API-internal vehicle id, not the VIN. An
// empty baseURL selects the production endpoint.
func NewConnection(id int64, authHeader, baseURL, userAgent string) *Connection {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Connection{
		UserAgent:  userAgent,
		baseURL:    baseURL,
		authHeader: authHeader,
		id:         id,
	}
}

func (c *Connection) VehicleID() int64 {
	return c.id
}

func (c *Connection) ExecuteCommand(ctx context.Context, name string, body interface{}) error {
	if c.closed {
		return protocol.ErrClosed
	}
	url := fmt.Sprintf("%s/vehicles/%d/command/%s", c.baseURL, c.id, name)
	return SendCommand(ctx, &c.client, c.UserAgent, c.authHeader, url, body, sensitiveCommands[name])
}

func (c *Connection) GetData(ctx context.Context, endpoint string) ([]byte, error) {
	if c.closed {
		return nil, protocol.ErrClosed
	}
	url := fmt.Sprintf("%s/vehicles/%d/%s", c.baseURL, c.id, endpoint)
	return Get(ctx, &c.client, c.UserAgent, c.authHeader, url)
}

func (c *Connection) Close() {
	c.closed = true
}
