// Package notion publishes a markdown brief to a Notion page: markdown is
// converted to Notion blocks, the page is cleared, and the blocks are
// appended in API-sized chunks.
package notion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"

	// The blocks.children endpoint accepts at most 100 blocks per call.
	appendChunkSize = 100
)

// Block is one Notion block object in wire form.
type Block map[string]any

// Client is a minimal Notion API client scoped to a single page.
type Client struct {
	token   string
	pageID  string
	baseURL string
	http    *http.Client
}

// NewClient creates a client for one page.
func NewClient(token, pageID string) *Client {
	return &Client{
		token:   token,
		pageID:  pageID,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.http.Do(req)
}

// TestConnection verifies the token can read the configured page.
func (c *Client) TestConnection() error {
	resp, err := c.do("GET", "/pages/"+c.pageID, nil)
	if err != nil {
		return fmt.Errorf("notion connection test: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notion API returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// ClearPage deletes every top-level block on the page. A block that fails
// to delete is logged and skipped.
func (c *Client) ClearPage() error {
	resp, err := c.do("GET", "/blocks/"+c.pageID+"/children", nil)
	if err != nil {
		return fmt.Errorf("listing page blocks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notion API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var listing struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return fmt.Errorf("decoding block listing: %w", err)
	}

	for _, block := range listing.Results {
		del, err := c.do("DELETE", "/blocks/"+block.ID, nil)
		if err != nil {
			log.Printf("Failed to delete block %s: %v", block.ID, err)
			continue
		}
		if del.StatusCode != http.StatusOK && del.StatusCode != http.StatusNotFound {
			log.Printf("Failed to delete block %s: status %d", block.ID, del.StatusCode)
		}
		del.Body.Close()
	}

	log.Printf("Cleared %d blocks from page", len(listing.Results))
	return nil
}

// UpdatePage replaces the page content with the rendered markdown. A failed
// clear is logged but does not stop the update.
func (c *Client) UpdatePage(markdown string) error {
	if err := c.ClearPage(); err != nil {
		log.Printf("Failed to clear existing content, proceeding anyway: %v", err)
	}

	blocks := MarkdownToBlocks(markdown)
	for start := 0; start < len(blocks); start += appendChunkSize {
		end := start + appendChunkSize
		if end > len(blocks) {
			end = len(blocks)
		}
		if err := c.appendBlocks(blocks[start:end]); err != nil {
			return err
		}
	}

	log.Printf("Updated Notion page with %d blocks", len(blocks))
	return nil
}

func (c *Client) appendBlocks(blocks []Block) error {
	resp, err := c.do("PATCH", "/blocks/"+c.pageID+"/children", map[string]any{
		"children": blocks,
	})
	if err != nil {
		return fmt.Errorf("appending blocks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notion API returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
