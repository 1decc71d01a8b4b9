package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"frontdesk.app/call-server/internal/http/handler/webhook"
	"frontdesk.app/call-server/internal/service"
)

type mockCallEventService struct {
	dispatchFn func(ctx context.Context, ev service.CallEvent) service.DispatchResult
	dispatched []service.CallEvent
}

func (m *mockCallEventService) Dispatch(ctx context.Context, ev service.CallEvent) service.DispatchResult {
	m.dispatched = append(m.dispatched, ev)
	if m.dispatchFn != nil {
		return m.dispatchFn(ctx, ev)
	}
	return service.DispatchResult{Status: service.StatusIgnored}
}

var _ = Describe("CallControlHandler", func() {
	var (
		router *gin.Engine
		events *mockCallEventService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		events = &mockCallEventService{}
		router.POST("/webhooks/calls", webhook.NewCallControlHandler(events).HandleEvent)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/calls", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("maps the provider envelope onto a call event", func() {
		events.dispatchFn = func(_ context.Context, ev service.CallEvent) service.DispatchResult {
			return service.DispatchResult{Status: service.StatusAnswering}
		}

		w := post(`{
			"event_type": "call.initiated",
			"payload": {
				"call_control_id": "abc123",
				"call_leg_id": "leg1",
				"from": "+34600111222",
				"to": "+34911222333",
				"direction": "incoming"
			}
		}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(events.dispatched).To(HaveLen(1))
		ev := events.dispatched[0]
		Expect(ev.Type).To(Equal("call.initiated"))
		Expect(ev.CallID).To(Equal("abc123"))
		Expect(ev.From).To(Equal("+34600111222"))
		Expect(ev.To).To(Equal("+34911222333"))
		Expect(ev.Direction).To(Equal("incoming"))

		var resp service.DispatchResult
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal(service.StatusAnswering))
	})

	It("acknowledges degraded dispatch outcomes with a 200", func() {
		events.dispatchFn = func(context.Context, service.CallEvent) service.DispatchResult {
			return service.DispatchResult{Status: service.StatusError, Error: "Call not found"}
		}

		w := post(`{"event_type": "call.answered", "payload": {"call_control_id": "missing"}}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp service.DispatchResult
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal(service.StatusError))
		Expect(resp.Error).To(Equal("Call not found"))
	})

	It("passes client state through on answered events", func() {
		w := post(`{"event_type": "call.answered", "payload": {"call_control_id": "abc123", "client_state": "eyJmb28iOiJiYXIifQ=="}}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(events.dispatched).To(HaveLen(1))
		Expect(events.dispatched[0].ClientState).To(Equal("eyJmb28iOiJiYXIifQ=="))
	})

	It("rejects malformed JSON", func() {
		w := post(`{"event_type": `)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(events.dispatched).To(BeEmpty())
	})

	It("rejects an envelope without an event type", func() {
		w := post(`{"payload": {"call_control_id": "abc123"}}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(events.dispatched).To(BeEmpty())
	})
})
