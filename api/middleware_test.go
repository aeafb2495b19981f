package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"fogsched/observability"
)

// --- operations middleware tests ---

func TestOperations_ExposesOperationContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(RequestID(), Operations("fogsched", nil))

	var oc *observability.OperationContext
	e.GET("/work", func(c *gin.Context) {
		oc = observability.OperationContextFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/work", nil))

	if oc == nil {
		t.Fatal("expected an operation context on the request")
	}
	if oc.ServiceName != "fogsched" {
		t.Errorf("expected service 'fogsched', got %q", oc.ServiceName)
	}
	if oc.OperationName != "GET /work" {
		t.Errorf("expected operation 'GET /work', got %q", oc.OperationName)
	}
	if oc.RequestID == "" {
		t.Error("expected the request id to be carried into the operation")
	}
}

func TestOperations_UnmatchedRouteUsesRawPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()

	var oc *observability.OperationContext
	e.Use(Operations("fogsched", nil), func(c *gin.Context) {
		oc = observability.OperationContextFromContext(c.Request.Context())
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no/such/route", nil))

	if oc == nil {
		t.Fatal("expected an operation context on the request")
	}
	if oc.OperationName != "GET /no/such/route" {
		t.Errorf("expected the raw path as operation name, got %q", oc.OperationName)
	}
}

func TestScheduleStampsRunIDOnOperation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := testServer(t)

	oc := observability.NewOperationContext("fogsched", "POST /schedule", "req-1", "", nil)
	e := gin.New()
	e.POST("/schedule", func(c *gin.Context) {
		c.Request = c.Request.WithContext(observability.WithOperationContext(c.Request.Context(), oc))
	}, s.handleSchedule)

	runID := "7f9c24e8-3b12-4a01-9c6d-2f1e5a8b0c3d"
	body, err := json.Marshal(ScheduleRequest{
		Strategy:   "minmin",
		RunID:      runID,
		Experiment: testDocument(),
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/schedule", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if oc.RunID != runID {
		t.Errorf("expected run id %q stamped on the operation, got %q", runID, oc.RunID)
	}
}
