package foodlogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/chengyao-ihealth/ai-tools/httpclient"
)

// Client is a thin client for the internal care-portal food-log API.
// It knows nothing about user auth flows; it only resolves a food-log id
// to its image links and fetches image bytes.
//
// baseURL example: https://uc-prod.ihealth-eng.com/v1/uc/food-log
type Client struct {
	base         *httpclient.BaseClient
	sessionToken string
}

// New creates a client for the given endpoint. The session token is sent
// on every lookup as x-session-token.
func New(baseURL, sessionToken string, timeout time.Duration) *Client {
	return &Client{
		base:         httpclient.NewBaseClientWithClient(httpclient.New(httpclient.Config{Timeout: timeout}), baseURL),
		sessionToken: sessionToken,
	}
}

// Image is one image reference attached to a food log.
type Image struct {
	Link string
}

// lookupResponse mirrors the portal payload. The images field shape varies
// across API versions, so it is decoded leniently from raw JSON.
type lookupResponse struct {
	Data struct {
		Images json.RawMessage `json:"images"`
	} `json:"data"`
}

// GetImages resolves a food-log id to its ordered image links.
func (c *Client) GetImages(ctx context.Context, foodLogID string) ([]Image, error) {
	req, err := c.base.NewRequest(ctx, http.MethodGet, "/"+foodLogID, nil, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("food-log lookup %s: status=%d body=%s", foodLogID, resp.StatusCode, string(b))
	}

	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return extractImages(out.Data.Images), nil
}

// Download fetches the raw bytes behind one image link. Links are
// pre-signed storage URLs, so no session token is attached.
func (c *Client) Download(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.base.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download: status=%d url=%s", resp.StatusCode, link)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept-language", "en-US,en;q=0.9")
	req.Header.Set("origin", "https://ucfe-dev.ihealth-eng.com")
	req.Header.Set("referer", "https://ucfe-dev.ihealth-eng.com/")
	req.Header.Set("user-agent", "Mozilla/5.0")
	req.Header.Set("x-session-token", c.sessionToken)
}

// extractImages tolerates the payload shapes the portal has shipped over
// time: a list of {link} objects, a list of plain strings, a single object,
// or a single string.
func extractImages(raw json.RawMessage) []Image {
	if len(raw) == 0 {
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var out []Image
		for _, item := range list {
			if link := linkOf(item); link != "" {
				out = append(out, Image{Link: link})
			}
		}
		return out
	}

	if link := linkOf(raw); link != "" {
		return []Image{{Link: link}}
	}
	return nil
}

func linkOf(raw json.RawMessage) string {
	var obj struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Link != "" {
		return obj.Link
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// GuessExt returns the image extension implied by a link, defaulting to
// .jpg when the URL path gives no recognizable suffix.
func GuessExt(link string) string {
	p := link
	if u, err := url.Parse(link); err == nil {
		p = u.Path
	} else if i := strings.Index(link, "?"); i >= 0 {
		p = link[:i]
	}
	ext := strings.ToLower(path.Ext(p))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	}
	return ".jpg"
}
