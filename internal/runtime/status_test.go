package runtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleGetHandlers(t *testing.T) {
	svc := newTestService(t)
	info, err := RegisterPageViewConsumer(svc, ConsumerConfig{Name: "pv"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info.Stats.recordRejected()

	rec := httptest.NewRecorder()
	svc.handleGetHandlers(rec, httptest.NewRequest(http.MethodGet, "/api/handlers", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{`"name":"pv"`, `"consume_queue":"pv_topic"`, `"messages_rejected":1`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body %s misses %s", body, want)
		}
	}
}

func TestHandleGetHandlersRejectsOtherMethods(t *testing.T) {
	svc := newTestService(t)
	rec := httptest.NewRecorder()
	svc.handleGetHandlers(rec, httptest.NewRequest(http.MethodPost, "/api/handlers", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestRegisterStatusEndpointOnlyWithMetrics(t *testing.T) {
	svc := newTestService(t)
	svc.registerStatusEndpoint()
	if len(svc.httpServers) != 0 {
		t.Fatal("status endpoint must stay off without metrics")
	}

	svc.Conf.MetricsEnabled = true
	svc.Conf.MetricsPort = 9300
	svc.registerStatusEndpoint()
	if _, ok := svc.httpServers[9300]; !ok {
		t.Fatal("expected status endpoint on the metrics port")
	}
}
