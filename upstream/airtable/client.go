/*
Package airtable fetches records from the directory (the Airtable base
that operations staff maintain by hand).

PURPOSE:
  A read-only client. The directory is the source of truth for who exists;
  this system only ever copies it downstream, never writes back.

FIELD ACCESS:
  Airtable omits empty fields from the JSON entirely, so Fields is a loose
  map and the accessors treat missing as zero. Single-select values arrive
  as strings, multi-selects as arrays, checkboxes as bools.

SEE ALSO:
  - jobs/syncroster.go: Chatter and model ingestion
  - jobs/migrate.go: Historical score row ingestion
*/
package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agencyops/chattersync/store"
)

const pageSize = 100

// Client reads one Airtable base.
type Client struct {
	baseURL string
	baseID  string
	token   string
	http    *http.Client
}

func New(baseURL, baseID, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		baseID:  baseID,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Record is one row. Fields holds only the non-empty cells.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// String returns a text or single-select field, "" when absent.
func (r Record) String(field string) string {
	v, _ := r.Fields[field].(string)
	return v
}

// Strings returns a multi-select field, nil when absent.
func (r Record) Strings(field string) []string {
	raw, ok := r.Fields[field].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Bool returns a checkbox field, false when absent.
func (r Record) Bool(field string) bool {
	v, _ := r.Fields[field].(bool)
	return v
}

// Float returns a number field, 0 when absent.
func (r Record) Float(field string) float64 {
	v, _ := r.Fields[field].(float64)
	return v
}

// ListRecords fetches every record in a table, following offset pagination.
func (c *Client) ListRecords(ctx context.Context, tableID string) ([]Record, error) {
	var out []Record
	offset := ""
	for {
		q := url.Values{}
		q.Set("pageSize", fmt.Sprint(pageSize))
		if offset != "" {
			q.Set("offset", offset)
		}

		u := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.baseID, tableID, q.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w: %w", tableID, store.ErrUnavailable, err)
		}

		var payload struct {
			Records []Record `json:"records"`
			Offset  string   `json:"offset"`
		}
		if resp.StatusCode >= 400 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return nil, &store.StatusError{Op: "list " + tableID, Status: resp.StatusCode, Body: string(snippet)}
		}
		err = json.NewDecoder(resp.Body).Decode(&payload)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("list %s: decode: %w", tableID, err)
		}

		out = append(out, payload.Records...)
		if payload.Offset == "" {
			return out, nil
		}
		offset = payload.Offset
	}
}
