package shopify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/courierlabs/podproof/internal/config"
	domainErrors "github.com/courierlabs/podproof/internal/domain/errors"
	"github.com/courierlabs/podproof/internal/domain/model"
)

// Client talks to the Shopify admin REST API. It covers the three surfaces
// this service needs: order search, order timeline events and metafields,
// and the platform file API.
type Client struct {
	baseURL    *url.URL
	token      string
	apiVersion string
	lookupKey  config.LookupKey
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Shopify admin client for the given shop domain.
func NewClient(domain, token, apiVersion string, lookupKey config.LookupKey, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if !strings.Contains(domain, "://") {
		domain = "https://" + domain
	}
	parsed, err := url.Parse(domain)
	if err != nil {
		return nil, fmt.Errorf("parse shop domain: %w", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("shop domain must be absolute")
	}
	return &Client{
		baseURL:    parsed,
		token:      token,
		apiVersion: apiVersion,
		lookupKey:  lookupKey,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type orderPayload struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Customer *struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"customer"`
}

type ordersResponse struct {
	Orders []orderPayload `json:"orders"`
}

// FindOrder queries order search by the configured lookup key. One
// round-trip, no pagination; when the platform returns several matches the
// first is taken.
func (c *Client) FindOrder(ctx context.Context, orderNumber string) (*model.OrderRecord, error) {
	endpoint := c.endpoint("orders.json")
	query := url.Values{"status": {"any"}}
	switch c.lookupKey {
	case config.LookupByName:
		query.Set("name", orderNumber)
	default:
		query.Set("order_number", orderNumber)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, domainErrors.WrapUpstream(domainErrors.StageLookup, err)
	}
	c.setHeaders(req, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domainErrors.WrapUpstream(domainErrors.StageLookup, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.upstreamFailure(domainErrors.StageLookup, resp)
	}

	var data ordersResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, domainErrors.WrapUpstream(domainErrors.StageLookup, err)
	}
	if len(data.Orders) == 0 {
		return nil, domainErrors.ErrOrderNotFound
	}
	if len(data.Orders) > 1 {
		c.logger.Debug("order lookup matched multiple orders, taking first",
			slog.String("order_number", orderNumber),
			slog.Int("matches", len(data.Orders)),
		)
	}

	order := data.Orders[0]
	record := &model.OrderRecord{ID: order.ID, Number: order.Name}
	if order.Customer != nil {
		record.CustomerName = strings.TrimSpace(order.Customer.FirstName + " " + order.Customer.LastName)
	}
	return record, nil
}

// CreateOrderEvent posts one timeline comment on the order. The write is
// encoded as JSON or form data depending on deployment configuration; the
// admin API accepts either.
func (c *Client) CreateOrderEvent(ctx context.Context, orderID int64, body string, encoding config.CommentEncoding) error {
	endpoint := c.endpoint(fmt.Sprintf("orders/%d/events.json", orderID))

	var (
		payload     io.Reader
		contentType string
	)
	if encoding == config.EncodingForm {
		form := url.Values{
			"event[subject_type]": {"Order"},
			"event[verb]":         {"comment"},
			"event[body]":         {body},
		}
		payload = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	} else {
		raw, err := json.Marshal(map[string]any{
			"event": map[string]any{
				"subject_type": "Order",
				"verb":         "comment",
				"body":         body,
			},
		})
		if err != nil {
			return domainErrors.WrapUpstream(domainErrors.StageRecord, err)
		}
		payload = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), payload)
	if err != nil {
		return domainErrors.WrapUpstream(domainErrors.StageRecord, err)
	}
	c.setHeaders(req, contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainErrors.WrapUpstream(domainErrors.StageRecord, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.upstreamFailure(domainErrors.StageRecord, resp)
	}
	return nil
}

// UpsertMetafield writes one URL-typed metafield onto the order.
func (c *Client) UpsertMetafield(ctx context.Context, orderID int64, namespace, key, value string) error {
	endpoint := c.endpoint(fmt.Sprintf("orders/%d/metafields.json", orderID))

	raw, err := json.Marshal(map[string]any{
		"metafield": map[string]any{
			"namespace": namespace,
			"key":       key,
			"type":      "url",
			"value":     value,
		},
	})
	if err != nil {
		return domainErrors.WrapUpstream(domainErrors.StageRecord, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(raw))
	if err != nil {
		return domainErrors.WrapUpstream(domainErrors.StageRecord, err)
	}
	c.setHeaders(req, "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domainErrors.WrapUpstream(domainErrors.StageRecord, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.upstreamFailure(domainErrors.StageRecord, resp)
	}
	return nil
}

type filePayload struct {
	File struct {
		URL string `json:"url"`
	} `json:"file"`
}

// UploadFile pushes one image through the platform file API and returns the
// asset URL. Single call, no share-link step.
func (c *Client) UploadFile(ctx context.Context, image model.ImageData, logicalName string) (string, error) {
	endpoint := c.endpoint("files.json")

	raw, err := json.Marshal(map[string]any{
		"file": map[string]any{
			"filename":     logicalName + image.Ext(),
			"content_type": image.MediaType,
			"attachment":   base64.StdEncoding.EncodeToString(image.Bytes),
		},
	})
	if err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(raw))
	if err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}
	c.setHeaders(req, "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.upstreamFailure(domainErrors.StageUpload, resp)
	}

	var data filePayload
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}
	if data.File.URL == "" {
		return "", domainErrors.NewUpstreamError(domainErrors.StageUpload, resp.StatusCode, "file response missing url")
	}
	return data.File.URL, nil
}

func (c *Client) endpoint(suffix string) url.URL {
	endpoint := *c.baseURL
	endpoint.Path = fmt.Sprintf("/admin/api/%s/%s", c.apiVersion, suffix)
	return endpoint
}

func (c *Client) setHeaders(req *http.Request, contentType string) {
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
}

func (c *Client) upstreamFailure(stage domainErrors.Stage, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	c.logger.Error("shopify request failed",
		slog.String("stage", string(stage)),
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(body)),
	)
	return domainErrors.NewUpstreamError(stage, resp.StatusCode, string(body))
}
