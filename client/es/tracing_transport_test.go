package es

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/mocktracer"
)

type brokenTransport struct {
}

func (t *brokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return nil, errors.New("mock error")
}

func TestTracingTransport(t *testing.T) {
	RegisterTestingT(t)

	tracer := mocktracer.New()
	opentracing.SetGlobalTracer(tracer)

	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer okServer.Close()
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer badServer.Close()

	doTraced := func(transport http.RoundTripper, url string) (*http.Response, error) {
		client := &http.Client{Transport: &TracingTransport{Transport: transport}}
		req, err := http.NewRequest(http.MethodGet, url, nil)
		Expect(err).To(BeNil())

		clientSpan := tracer.StartSpan("client")
		req = req.WithContext(opentracing.ContextWithSpan(context.Background(), clientSpan))
		res, err := client.Do(req)
		clientSpan.Finish()
		return res, err
	}

	// the finished child span, asserted against its parent
	childSpan := func() *mocktracer.MockSpan {
		spans := tracer.FinishedSpans()
		Expect(len(spans)).To(Equal(2))
		Expect(spans[1].OperationName).To(Equal("client"))
		Expect(spans[1].ParentID).To(BeZero())

		child := spans[0]
		Expect(child.OperationName).To(Equal("GET "))
		Expect(child.ParentID).To(Equal(spans[1].SpanContext.SpanID))
		Expect(child.SpanContext.TraceID).To(Equal(spans[1].SpanContext.TraceID))
		Expect(child.SpanContext.Sampled).To(BeTrue())
		return child
	}

	t.Run("should not trace without a parent span in the context", func(t *testing.T) {
		tracer.Reset()

		client := &http.Client{Transport: &TracingTransport{Transport: http.DefaultTransport}}
		req, err := http.NewRequest(http.MethodGet, okServer.URL, nil)
		Expect(err).To(BeNil())
		res, err := client.Do(req)
		Expect(err).To(BeNil())
		Expect(res.StatusCode).To(Equal(http.StatusOK))

		Expect(len(tracer.FinishedSpans())).To(BeZero())
	})

	t.Run("should finish a child span carrying the response status", func(t *testing.T) {
		tracer.Reset()

		res, err := doTraced(http.DefaultTransport, okServer.URL)
		Expect(err).To(BeNil())
		Expect(res.StatusCode).To(Equal(http.StatusOK))

		Expect(childSpan().Tags()).To(Equal(map[string]interface{}{
			"span.kind":        ext.SpanKindEnum("client"),
			"http.url":         okServer.URL,
			"http.method":      "GET",
			"http.status_code": uint16(200),
			"error":            false,
		}))
	})

	t.Run("should mark the child span failed on a 4xx response", func(t *testing.T) {
		tracer.Reset()

		res, err := doTraced(http.DefaultTransport, badServer.URL)
		Expect(err).To(BeNil())
		Expect(res.StatusCode).To(Equal(http.StatusBadRequest))

		Expect(childSpan().Tags()).To(Equal(map[string]interface{}{
			"span.kind":        ext.SpanKindEnum("client"),
			"http.url":         badServer.URL,
			"http.method":      "GET",
			"http.status_code": uint16(400),
			"error":            true,
		}))
	})

	t.Run("should record the error detail when no response came back", func(t *testing.T) {
		tracer.Reset()

		res, err := doTraced(&brokenTransport{}, "http://127.0.0.1:12345")
		Expect(res).To(BeNil())
		Expect(err).ToNot(BeNil())

		Expect(childSpan().Tags()).To(Equal(map[string]interface{}{
			"span.kind":    ext.SpanKindEnum("client"),
			"http.url":     "http://127.0.0.1:12345",
			"http.method":  "GET",
			"error":        true,
			"error.detail": "mock error",
		}))
	})
}
