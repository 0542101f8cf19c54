package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/courierlabs/podproof/internal/config"
	domainErrors "github.com/courierlabs/podproof/internal/domain/errors"
	"github.com/courierlabs/podproof/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler, lookupKey config.LookupKey) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "shpat_test", "2024-01", lookupKey, 5*time.Second, testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client, server
}

func TestNewClientValidatesDomain(t *testing.T) {
	if _, err := NewClient("://bad", "token", "2024-01", config.LookupByNumber, time.Second, testLogger()); err == nil {
		t.Fatal("expected error for invalid domain")
	}

	client, err := NewClient("shop.example.com", "token", "2024-01", config.LookupByNumber, time.Second, testLogger())
	if err != nil {
		t.Fatalf("bare domain should be accepted: %v", err)
	}
	if client.baseURL.Scheme != "https" {
		t.Fatalf("expected https scheme, got %q", client.baseURL.Scheme)
	}
}

func TestFindOrderByNumber(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2024-01/orders.json" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("order_number"); got != "1001" {
			t.Fatalf("expected order_number=1001, got %q", got)
		}
		if r.URL.Query().Get("name") != "" {
			t.Fatal("name key must not be sent when configured for number lookup")
		}
		if got := r.Header.Get("X-Shopify-Access-Token"); got != "shpat_test" {
			t.Fatalf("unexpected token header %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"orders": []map[string]any{{
				"id":       555,
				"name":     "#1001",
				"customer": map[string]any{"first_name": "Jane", "last_name": "Doe"},
			}},
		})
	}), config.LookupByNumber)

	order, err := client.FindOrder(context.Background(), "1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 555 || order.Number != "#1001" || order.CustomerName != "Jane Doe" {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestFindOrderByName(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "#1001" {
			t.Fatalf("expected name=#1001, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"orders": []map[string]any{{"id": 7, "name": "#1001"}},
		})
	}), config.LookupByName)

	order, err := client.FindOrder(context.Background(), "#1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 7 {
		t.Fatalf("unexpected order id %d", order.ID)
	}
	if order.CustomerName != "" {
		t.Fatalf("expected empty customer name, got %q", order.CustomerName)
	}
}

func TestFindOrderNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"orders": []any{}})
	}), config.LookupByNumber)

	_, err := client.FindOrder(context.Background(), "9999")
	if !errors.Is(err, domainErrors.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestFindOrderMultipleMatchesTakesFirst(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"orders": []map[string]any{{"id": 1, "name": "#1"}, {"id": 2, "name": "#2"}},
		})
	}), config.LookupByNumber)

	order, err := client.FindOrder(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 1 {
		t.Fatalf("expected first match, got id %d", order.ID)
	}
}

func TestFindOrderUpstreamFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":"Invalid API key"}`))
	}), config.LookupByNumber)

	_, err := client.FindOrder(context.Background(), "1001")
	ue, ok := domainErrors.AsUpstream(err)
	if !ok {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if ue.Stage != domainErrors.StageLookup || ue.Status != http.StatusUnauthorized {
		t.Fatalf("unexpected upstream error %+v", ue)
	}
	if ue.Body == "" {
		t.Fatal("expected upstream body to be preserved")
	}
}

func TestCreateOrderEventJSON(t *testing.T) {
	var captured map[string]map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2024-01/orders/555/events.json" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("unexpected content type %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode event body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}), config.LookupByNumber)

	if err := client.CreateOrderEvent(context.Background(), 555, "<p>proof</p>", config.EncodingJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured["event"]["subject_type"] != "Order" || captured["event"]["body"] != "<p>proof</p>" {
		t.Fatalf("unexpected event payload %+v", captured)
	}
}

func TestCreateOrderEventForm(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Fatalf("unexpected content type %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if got := r.PostForm.Get("event[body]"); got != "proof text" {
			t.Fatalf("unexpected form body %q", got)
		}
		if got := r.PostForm.Get("event[subject_type]"); got != "Order" {
			t.Fatalf("unexpected subject type %q", got)
		}
		w.WriteHeader(http.StatusCreated)
	}), config.LookupByNumber)

	if err := client.CreateOrderEvent(context.Background(), 555, "proof text", config.EncodingForm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateOrderEventFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":{"body":["can't be blank"]}}`))
	}), config.LookupByNumber)

	err := client.CreateOrderEvent(context.Background(), 555, "", config.EncodingJSON)
	ue, ok := domainErrors.AsUpstream(err)
	if !ok || ue.Stage != domainErrors.StageRecord {
		t.Fatalf("expected record-stage upstream error, got %v", err)
	}
}

func TestUpsertMetafield(t *testing.T) {
	var captured map[string]map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2024-01/orders/555/metafields.json" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode metafield body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}), config.LookupByNumber)

	if err := client.UpsertMetafield(context.Background(), 555, "delivery", MetafieldKeyPhoto, "https://cdn.example/p.jpg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	field := captured["metafield"]
	if field["namespace"] != "delivery" || field["key"] != "delivery_image" || field["type"] != "url" {
		t.Fatalf("unexpected metafield payload %+v", field)
	}
	if field["value"] != "https://cdn.example/p.jpg" {
		t.Fatalf("unexpected metafield value %v", field["value"])
	}
}

func TestUploadFile(t *testing.T) {
	var captured map[string]map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2024-01/files.json" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode file body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"file": map[string]any{"url": "https://cdn.shopify.example/files/1001-photo.jpg"},
		})
	}), config.LookupByNumber)

	url, err := client.UploadFile(context.Background(), model.ImageData{MediaType: "image/jpeg", Bytes: []byte{1, 2, 3}}, "1001-photo-202401011200")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://cdn.shopify.example/files/1001-photo.jpg" {
		t.Fatalf("unexpected url %q", url)
	}

	file := captured["file"]
	if file["filename"] != "1001-photo-202401011200.jpg" {
		t.Fatalf("unexpected filename %v", file["filename"])
	}
	if file["attachment"] != "AQID" {
		t.Fatalf("unexpected attachment %v", file["attachment"])
	}
}

func TestUploadFileMissingURL(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"file": map[string]any{}})
	}), config.LookupByNumber)

	_, err := client.UploadFile(context.Background(), model.ImageData{MediaType: "image/png", Bytes: []byte{1}}, "x")
	if _, ok := domainErrors.AsUpstream(err); !ok {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestFileUploaderDelegates(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"file": map[string]any{"url": "https://cdn.shopify.example/files/a.png"},
		})
	}), config.LookupByNumber)

	uploader := NewFileUploader(client)
	url, err := uploader.Upload(context.Background(), model.ImageData{MediaType: "image/png", Bytes: []byte{9}}, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://cdn.shopify.example/files/a.png" {
		t.Fatalf("unexpected url %q", url)
	}
}
