package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	domainErrors "github.com/courierlabs/podproof/internal/domain/errors"
	"github.com/courierlabs/podproof/internal/domain/model"
)

// DefaultBaseURL is the production Cloudinary API endpoint.
const DefaultBaseURL = "https://api.cloudinary.com"

// Client uploads images to the Cloudinary media CDN using signed uploads.
// One call per image; the response carries a public secure URL directly.
type Client struct {
	baseURL    *url.URL
	cloudName  string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient creates a Cloudinary client for the given account triple.
func NewClient(baseURL, cloudName, apiKey, apiSecret string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse cloudinary url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("cloudinary url must be absolute")
	}
	return &Client{
		baseURL:    parsed,
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// Upload sends one signed image upload and returns the secure URL. The image
// travels as a data URL in the file field, which the upload API accepts
// alongside raw multipart content.
func (c *Client) Upload(ctx context.Context, image model.ImageData, logicalName string) (string, error) {
	endpoint := *c.baseURL
	endpoint.Path = fmt.Sprintf("/v1_1/%s/image/upload", c.cloudName)

	timestamp := fmt.Sprintf("%d", c.now().Unix())
	form := url.Values{
		"file":      {dataURL(image)},
		"public_id": {logicalName},
		"timestamp": {timestamp},
		"api_key":   {c.apiKey},
	}
	form.Set("signature", signParams(url.Values{
		"public_id": {logicalName},
		"timestamp": {timestamp},
	}, c.apiSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("cloudinary upload failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return "", domainErrors.NewUpstreamError(domainErrors.StageUpload, resp.StatusCode, string(body))
	}

	var data uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}
	if data.SecureURL != "" {
		return data.SecureURL, nil
	}
	if data.URL != "" {
		return data.URL, nil
	}
	return "", domainErrors.NewUpstreamError(domainErrors.StageUpload, resp.StatusCode, "upload response missing url")
}

func dataURL(image model.ImageData) string {
	return "data:" + image.MediaType + ";base64," + base64.StdEncoding.EncodeToString(image.Bytes)
}

// signParams produces the Cloudinary request signature: the SHA-1 hex digest
// of the alphabetically sorted signed parameters concatenated with the API
// secret. The file and api_key fields are excluded by the protocol.
func signParams(params url.Values, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params.Get(k))
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
