package graphdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	domainErrors "github.com/courierlabs/podproof/internal/domain/errors"
	"github.com/courierlabs/podproof/internal/domain/model"
)

// DefaultBaseURL is the production Graph API endpoint.
const DefaultBaseURL = "https://graph.microsoft.com"

// Client uploads images to a drive folder through the Graph content API.
// The content upload returns an opaque item id, so a second call mints an
// anonymous view-only share link; both calls are one upload transaction from
// the caller's perspective. If link creation fails after the content upload
// succeeded, the blob stays in the drive orphaned — logged, not masked.
type Client struct {
	baseURL    *url.URL
	folder     string
	tokens     TokenProvider
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Graph drive client storing under the given folder.
func NewClient(baseURL, folder string, tokens TokenProvider, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse graph url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("graph url must be absolute")
	}
	return &Client{
		baseURL:    parsed,
		folder:     folder,
		tokens:     tokens,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type driveItem struct {
	ID string `json:"id"`
}

type shareLinkResponse struct {
	Link struct {
		WebURL string `json:"webUrl"`
	} `json:"link"`
}

// Upload puts the raw image bytes under the configured folder, then creates
// a share link for the resulting item.
func (c *Client) Upload(ctx context.Context, image model.ImageData, logicalName string) (string, error) {
	itemID, err := c.uploadContent(ctx, image, logicalName)
	if err != nil {
		return "", err
	}

	link, err := c.CreateShareLink(ctx, itemID)
	if err != nil {
		c.logger.Error("share link creation failed after upload, item orphaned",
			slog.String("item_id", itemID),
			slog.String("name", logicalName),
			slog.String("error", err.Error()),
		)
		return "", err
	}
	return link, nil
}

func (c *Client) uploadContent(ctx context.Context, image model.ImageData, logicalName string) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	endpoint := *c.baseURL
	endpoint.Path = fmt.Sprintf("/v1.0/me/drive/root:/%s/%s:/content", c.folder, logicalName+image.Ext())

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint.String(), bytes.NewReader(image.Bytes))
	if err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", image.MediaType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.upstreamFailure(domainErrors.StageUpload, resp)
	}

	var item driveItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}
	if item.ID == "" {
		return "", domainErrors.NewUpstreamError(domainErrors.StageUpload, resp.StatusCode, "drive response missing item id")
	}
	return item.ID, nil
}

// CreateShareLink mints an anonymous, view-only, non-expiring link for a
// stored item.
func (c *Client) CreateShareLink(ctx context.Context, itemID string) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	endpoint := *c.baseURL
	endpoint.Path = fmt.Sprintf("/v1.0/me/drive/items/%s/createLink", itemID)

	raw, err := json.Marshal(map[string]string{"type": "view", "scope": "anonymous"})
	if err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(raw))
	if err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.upstreamFailure(domainErrors.StageUpload, resp)
	}

	var data shareLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", domainErrors.WrapUpstream(domainErrors.StageUpload, err)
	}
	if data.Link.WebURL == "" {
		return "", domainErrors.NewUpstreamError(domainErrors.StageUpload, resp.StatusCode, "share link response missing webUrl")
	}
	return data.Link.WebURL, nil
}

func (c *Client) upstreamFailure(stage domainErrors.Stage, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	c.logger.Error("graph request failed",
		slog.String("stage", string(stage)),
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(body)),
	)
	return domainErrors.NewUpstreamError(stage, resp.StatusCode, string(body))
}
