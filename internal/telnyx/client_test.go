package telnyx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"frontdesk.app/call-server/internal/telnyx"
)

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		client   *telnyx.Client
		requests []recordedRequest
		respond  func(w http.ResponseWriter)
	)

	BeforeEach(func() {
		ctx = context.Background()
		requests = nil
		respond = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusOK)
		}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			requests = append(requests, recordedRequest{
				path: r.URL.Path,
				auth: r.Header.Get("Authorization"),
				body: body,
			})
			respond(w)
		}))

		client = telnyx.NewClient("key-123", server.URL)
	})

	AfterEach(func() {
		server.Close()
	})

	It("answers with the opaque client state", func() {
		Expect(client.Answer(ctx, "abc123", "b64state")).To(Succeed())

		Expect(requests).To(HaveLen(1))
		Expect(requests[0].path).To(Equal("/calls/abc123/actions/answer"))
		Expect(requests[0].auth).To(Equal("Bearer key-123"))
		Expect(requests[0].body).To(HaveKeyWithValue("client_state", "b64state"))
	})

	It("starts streaming on both tracks", func() {
		Expect(client.StartStreaming(ctx, "abc123", "wss://example.com/media")).To(Succeed())

		Expect(requests[0].path).To(Equal("/calls/abc123/actions/streaming_start"))
		Expect(requests[0].body).To(HaveKeyWithValue("stream_url", "wss://example.com/media"))
		Expect(requests[0].body).To(HaveKeyWithValue("stream_track", "both_tracks"))
	})

	It("transfers to a destination number", func() {
		Expect(client.Transfer(ctx, "abc123", "+34911222333")).To(Succeed())

		Expect(requests[0].path).To(Equal("/calls/abc123/actions/transfer"))
		Expect(requests[0].body).To(HaveKeyWithValue("to", "+34911222333"))
	})

	It("hangs up", func() {
		Expect(client.Hangup(ctx, "abc123")).To(Succeed())
		Expect(requests[0].path).To(Equal("/calls/abc123/actions/hangup"))
	})

	It("surfaces the provider's error detail", func() {
		respond = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"errors": []map[string]string{
					{"title": "Invalid state", "detail": "Call has already ended"},
				},
			})
		}

		err := client.Transfer(ctx, "abc123", "+34911222333")

		var cmdErr *telnyx.CommandError
		Expect(errors.As(err, &cmdErr)).To(BeTrue())
		Expect(cmdErr.Command).To(Equal("transfer"))
		Expect(cmdErr.CallID).To(Equal("abc123"))
		Expect(cmdErr.StatusCode).To(Equal(http.StatusUnprocessableEntity))
		Expect(cmdErr.Detail).To(Equal("Call has already ended"))
	})

	It("falls back to a generic detail on an unparseable error body", func() {
		respond = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream exploded"))
		}

		err := client.Hangup(ctx, "abc123")

		var cmdErr *telnyx.CommandError
		Expect(errors.As(err, &cmdErr)).To(BeTrue())
		Expect(cmdErr.Detail).To(Equal("provider error"))
	})
})

type recordedRequest struct {
	body map[string]string
	path string
	auth string
}
