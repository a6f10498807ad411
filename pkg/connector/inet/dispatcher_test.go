package inet_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ownerapi/tesla-owner/pkg/connector/inet"
	"github.com/ownerapi/tesla-owner/pkg/protocol"
)

const (
	testBaseURL = "https://owner-api.example.com/api/1"
	testID      = 42
)

func commandURL(name string) string {
	return fmt.Sprintf("%s/vehicles/%d/command/%s", testBaseURL, testID, name)
}

var _ = Describe("Connection", func() {
	var conn *inet.Connection

	BeforeEach(func() {
		httpmock.Activate()
		DeferCleanup(httpmock.DeactivateAndReset)
		conn = inet.NewConnection(testID, "Bearer test-token", testBaseURL, "test-agent")
	})

	Context("commands", func() {
		It("reports success when the vehicle executes the command", func() {
			httpmock.RegisterResponder(http.MethodPost, commandURL("honk_horn"), func(r *http.Request) (*http.Response, error) {
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-token"))
				Expect(r.Header.Get("Accept-Encoding")).To(Equal("gzip,deflate"))
				Expect(r.Header.Get("User-Agent")).To(Equal("test-agent"))
				return httpmock.NewStringResponse(http.StatusOK, `{"response":{"result":true,"reason":""}}`), nil
			})
			Expect(conn.ExecuteCommand(context.Background(), "honk_horn", nil)).To(Succeed())
		})

		It("returns the rejection reason when the vehicle declines", func() {
			httpmock.RegisterResponder(http.MethodPost, commandURL("door_lock"),
				httpmock.NewStringResponder(http.StatusOK, `{"response":{"result":false,"reason":"already_locked"}}`))
			err := conn.ExecuteCommand(context.Background(), "door_lock", nil)
			Expect(protocol.IsRejected(err)).To(BeTrue())
			Expect(protocol.RejectionReason(err)).To(Equal("already_locked"))
		})

		It("attaches JSON bodies with the matching content type", func() {
			httpmock.RegisterResponder(http.MethodPost, commandURL("set_charge_limit"), func(r *http.Request) (*http.Response, error) {
				Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
				body, err := io.ReadAll(r.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(body).To(MatchJSON(`{"percent":90}`))
				return httpmock.NewStringResponse(http.StatusOK, `{"response":{"result":true,"reason":""}}`), nil
			})
			body := struct {
				Percent int `json:"percent"`
			}{Percent: 90}
			Expect(conn.ExecuteCommand(context.Background(), "set_charge_limit", &body)).To(Succeed())
		})

		It("sends no payload and no content type for bodyless commands", func() {
			httpmock.RegisterResponder(http.MethodPost, commandURL("flash_lights"), func(r *http.Request) (*http.Response, error) {
				Expect(r.Header.Get("Content-Type")).To(BeEmpty())
				Expect(r.ContentLength).To(BeZero())
				return httpmock.NewStringResponse(http.StatusOK, `{"response":{"result":true,"reason":""}}`), nil
			})
			Expect(conn.ExecuteCommand(context.Background(), "flash_lights", nil)).To(Succeed())
		})

		It("surfaces non-2xx statuses as transport errors", func() {
			httpmock.RegisterResponder(http.MethodPost, commandURL("wake_up"),
				httpmock.NewStringResponder(http.StatusBadGateway, "bad gateway"))
			err := conn.ExecuteCommand(context.Background(), "wake_up", nil)
			var httpErr *inet.HttpError
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.Code).To(Equal(http.StatusBadGateway))
			Expect(protocol.IsRejected(err)).To(BeFalse())
			Expect(protocol.MayHaveSucceeded(err)).To(BeTrue())
		})

		It("maps unavailable vehicles to ErrVehicleNotAwake", func() {
			httpmock.RegisterResponder(http.MethodPost, commandURL("honk_horn"),
				httpmock.NewStringResponder(http.StatusServiceUnavailable, ""))
			err := conn.ExecuteCommand(context.Background(), "honk_horn", nil)
			Expect(errors.Is(err, inet.ErrVehicleNotAwake)).To(BeTrue())
			Expect(protocol.Temporary(err)).To(BeTrue())
		})

		It("rejects malformed response envelopes", func() {
			httpmock.RegisterResponder(http.MethodPost, commandURL("honk_horn"),
				httpmock.NewStringResponder(http.StatusOK, "not json"))
			err := conn.ExecuteCommand(context.Background(), "honk_horn", nil)
			Expect(errors.Is(err, protocol.ErrBadResponse)).To(BeTrue())
		})

		It("refuses requests after Close", func() {
			conn.Close()
			err := conn.ExecuteCommand(context.Background(), "honk_horn", nil)
			Expect(errors.Is(err, protocol.ErrClosed)).To(BeTrue())
			Expect(httpmock.GetTotalCallCount()).To(BeZero())
		})
	})

	Context("state queries", func() {
		It("unwraps the response envelope", func() {
			url := fmt.Sprintf("%s/vehicles/%d/data_request/climate_state", testBaseURL, testID)
			httpmock.RegisterResponder(http.MethodGet, url,
				httpmock.NewStringResponder(http.StatusOK, `{"response":{"driver_temp_setting":21.5}}`))
			payload, err := conn.GetData(context.Background(), "data_request/climate_state")
			Expect(err).NotTo(HaveOccurred())
			Expect(payload).To(MatchJSON(`{"driver_temp_setting":21.5}`))
		})

		It("rejects payloads without an envelope", func() {
			url := fmt.Sprintf("%s/vehicles/%d/data_request/climate_state", testBaseURL, testID)
			httpmock.RegisterResponder(http.MethodGet, url,
				httpmock.NewStringResponder(http.StatusOK, `{"driver_temp_setting":21.5}`))
			_, err := conn.GetData(context.Background(), "data_request/climate_state")
			Expect(errors.Is(err, protocol.ErrBadResponse)).To(BeTrue())
		})
	})
})
