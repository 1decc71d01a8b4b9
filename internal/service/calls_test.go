package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"frontdesk.app/call-server/internal/model"
	"frontdesk.app/call-server/internal/service"
	"frontdesk.app/call-server/internal/session"
	"frontdesk.app/call-server/internal/store"
)

type issuedCommand struct {
	command string
	callID  string
	arg     string
}

type fakeIssuer struct {
	answerFn   func(ctx context.Context, callID, clientState string) error
	streamFn   func(ctx context.Context, callID, streamURL string) error
	transferFn func(ctx context.Context, callID, to string) error
	hangupFn   func(ctx context.Context, callID string) error
	issued     []issuedCommand
}

func (f *fakeIssuer) Answer(ctx context.Context, callID, clientState string) error {
	f.issued = append(f.issued, issuedCommand{"answer", callID, clientState})
	if f.answerFn != nil {
		return f.answerFn(ctx, callID, clientState)
	}
	return nil
}

func (f *fakeIssuer) StartStreaming(ctx context.Context, callID, streamURL string) error {
	f.issued = append(f.issued, issuedCommand{"streaming_start", callID, streamURL})
	if f.streamFn != nil {
		return f.streamFn(ctx, callID, streamURL)
	}
	return nil
}

func (f *fakeIssuer) Transfer(ctx context.Context, callID, to string) error {
	f.issued = append(f.issued, issuedCommand{"transfer", callID, to})
	if f.transferFn != nil {
		return f.transferFn(ctx, callID, to)
	}
	return nil
}

func (f *fakeIssuer) Hangup(ctx context.Context, callID string) error {
	f.issued = append(f.issued, issuedCommand{"hangup", callID, ""})
	if f.hangupFn != nil {
		return f.hangupFn(ctx, callID)
	}
	return nil
}

type fakeBusinessStore struct {
	byID    map[int64]*model.Business
	byPhone map[string]*model.Business
	getErr  error
}

func (f *fakeBusinessStore) GetByID(_ context.Context, id int64) (*model.Business, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeBusinessStore) GetByPhone(_ context.Context, phone string) (*model.Business, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if b, ok := f.byPhone[phone]; ok {
		return b, nil
	}
	return nil, store.ErrNotFound
}

var _ = Describe("CallEventService", func() {
	var (
		ctx        context.Context
		sessions   *session.MemoryStore
		issuer     *fakeIssuer
		businesses *fakeBusinessStore
		svc        service.CallEventService
	)

	business := &model.Business{ID: 42, Name: "Acme Dental", Phone: "+34900000000"}

	initiated := service.CallEvent{
		Type:      "call.initiated",
		CallID:    "abc123",
		From:      "+34600111222",
		To:        "+34900000000",
		Direction: "inbound",
	}

	BeforeEach(func() {
		ctx = context.Background()
		sessions = session.NewMemoryStore(time.Hour)
		issuer = &fakeIssuer{}
		businesses = &fakeBusinessStore{
			byID:    map[int64]*model.Business{42: business},
			byPhone: map[string]*model.Business{"+34900000000": business},
		}
		svc = service.NewCallEventService(sessions, issuer, businesses, "wss://calls.example.com/webhooks/calls/media")
	})

	Describe("call.initiated", func() {
		It("registers the session and answers the call", func() {
			result := svc.Dispatch(ctx, initiated)

			Expect(result.Status).To(Equal("answering"))
			Expect(result.Error).To(BeEmpty())

			sess, err := sessions.Get(ctx, "abc123")
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.BusinessID).To(Equal(int64(42)))

			Expect(issuer.issued).To(HaveLen(1))
			Expect(issuer.issued[0].command).To(Equal("answer"))
			Expect(issuer.issued[0].callID).To(Equal("abc123"))
			Expect(issuer.issued[0].arg).NotTo(BeEmpty())
		})

		It("creates exactly one session for duplicate deliveries", func() {
			svc.Dispatch(ctx, initiated)
			first, err := sessions.Get(ctx, "abc123")
			Expect(err).NotTo(HaveOccurred())

			result := svc.Dispatch(ctx, initiated)
			Expect(result.Status).To(Equal("answering"))

			Expect(sessions.Len()).To(Equal(1))
			second, err := sessions.Get(ctx, "abc123")
			Expect(err).NotTo(HaveOccurred())
			Expect(second.StartedAt).To(Equal(first.StartedAt))
		})

		It("still registers the session for an unknown number", func() {
			ev := initiated
			ev.To = "+34911111111"

			result := svc.Dispatch(ctx, ev)

			Expect(result.Status).To(Equal("answering"))
			sess, err := sessions.Get(ctx, "abc123")
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.BusinessID).To(BeZero())
		})

		It("keeps the session when answering fails", func() {
			issuer.answerFn = func(context.Context, string, string) error {
				return errors.New("call already answered")
			}

			result := svc.Dispatch(ctx, initiated)

			Expect(result.Status).To(Equal("error"))
			Expect(result.Error).To(ContainSubstring("already answered"))
			_, err := sessions.Get(ctx, "abc123")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("call.answered", func() {
		It("starts the media stream for a known call", func() {
			svc.Dispatch(ctx, initiated)
			issuer.issued = nil

			result := svc.Dispatch(ctx, service.CallEvent{Type: "call.answered", CallID: "abc123"})

			Expect(result.Status).To(Equal("streaming"))
			Expect(issuer.issued).To(HaveLen(1))
			Expect(issuer.issued[0].command).To(Equal("streaming_start"))
			Expect(issuer.issued[0].arg).To(Equal("wss://calls.example.com/webhooks/calls/media"))
		})

		It("reports unknown calls without issuing a command", func() {
			result := svc.Dispatch(ctx, service.CallEvent{Type: "call.answered", CallID: "ghost"})

			Expect(result.Status).To(Equal("error"))
			Expect(result.Error).To(Equal("Call not found"))
			Expect(issuer.issued).To(BeEmpty())
		})

		It("converts a streaming failure into an error result", func() {
			svc.Dispatch(ctx, initiated)
			issuer.streamFn = func(context.Context, string, string) error {
				return errors.New("stream refused")
			}

			result := svc.Dispatch(ctx, service.CallEvent{Type: "call.answered", CallID: "abc123"})
			Expect(result.Status).To(Equal("error"))
			Expect(result.Error).To(ContainSubstring("stream refused"))
		})
	})

	Describe("call.hangup", func() {
		It("removes the session and acknowledges", func() {
			svc.Dispatch(ctx, initiated)

			result := svc.Dispatch(ctx, service.CallEvent{Type: "call.hangup", CallID: "abc123"})

			Expect(result.Status).To(Equal("hangup"))
			Expect(sessions.Len()).To(BeZero())
		})

		It("tolerates duplicate hangup deliveries", func() {
			svc.Dispatch(ctx, initiated)
			svc.Dispatch(ctx, service.CallEvent{Type: "call.hangup", CallID: "abc123"})

			result := svc.Dispatch(ctx, service.CallEvent{Type: "call.hangup", CallID: "abc123"})

			Expect(result.Status).To(Equal("hangup"))
			Expect(result.Error).To(BeEmpty())
		})

		It("tolerates hangup for a call it never saw", func() {
			result := svc.Dispatch(ctx, service.CallEvent{Type: "call.hangup", CallID: "ghost"})
			Expect(result.Status).To(Equal("hangup"))
		})
	})

	Describe("streaming markers", func() {
		It("acknowledges streaming.started", func() {
			result := svc.Dispatch(ctx, service.CallEvent{Type: "streaming.started", CallID: "abc123"})
			Expect(result.Status).To(Equal("streaming"))
		})

		It("acknowledges streaming.stopped", func() {
			result := svc.Dispatch(ctx, service.CallEvent{Type: "streaming.stopped", CallID: "abc123"})
			Expect(result.Status).To(Equal("stopped"))
		})
	})

	Describe("unhandled events", func() {
		It("ignores them without touching state", func() {
			result := svc.Dispatch(ctx, service.CallEvent{Type: "call.recording.saved", CallID: "abc123"})

			Expect(result.Status).To(Equal("ignored"))
			Expect(result.Event).To(Equal("call.recording.saved"))
			Expect(sessions.Len()).To(BeZero())
			Expect(issuer.issued).To(BeEmpty())
		})
	})
})
