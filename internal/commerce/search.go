package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	search "github.com/econext/storefront/internal/search/domain"
)

// IntentSearch runs a text-intent search. The upstream groups
// results into a JSON object whose key order controls display
// order, so the object is decoded with a token stream instead of a
// Go map.
func (c *Client) IntentSearch(ctx context.Context, query string) ([]search.Category, error) {
	path := "/products/search/intent/?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("commerce api intent search: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if err := checkEnvelope(resp.StatusCode, raw); err != nil {
		return nil, err
	}

	return c.decodeIntentResults(raw)
}

func (c *Client) decodeIntentResults(raw []byte) ([]search.Category, error) {
	// Locate the results object without losing key order.
	var outer struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if len(outer.Results) == 0 || string(outer.Results) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(outer.Results))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decode search results: expected object, got %v", tok)
	}

	var categories []search.Category
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode search results: %w", err)
		}
		label, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("decode search results: non-string category label %v", keyTok)
		}

		var items []searchItemPayload
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("decode category %q: %w", label, err)
		}

		matches, err := c.toMatches(items)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", label, err)
		}
		categories = append(categories, search.Category{Label: label, Items: matches})
	}

	return categories, nil
}

// VisualSearch uploads an image and returns the flat scored match
// list, order as ranked upstream.
func (c *Client) VisualSearch(ctx context.Context, filename string, image io.Reader) ([]search.Match, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/products/search/visual/", &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("commerce api visual search: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if err := checkEnvelope(resp.StatusCode, raw); err != nil {
		return nil, err
	}

	var out struct {
		Results []searchItemPayload `json:"results"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return c.toMatches(out.Results)
}

func (c *Client) toMatches(items []searchItemPayload) ([]search.Match, error) {
	matches := make([]search.Match, 0, len(items))
	for _, item := range items {
		product, err := item.Product.toDomain(c.currency)
		if err != nil {
			return nil, err
		}

		score := item.MatchScore
		if score == nil {
			score = item.SimilarityScore
		}

		matches = append(matches, search.Match{
			Product:     product,
			Score:       score,
			Explanation: item.IntentMatch,
		})
	}
	return matches, nil
}
