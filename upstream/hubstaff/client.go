/*
Package hubstaff is a minimal client for the time tracker's v2 API.

PURPOSE:
  Exactly the surface the hours sync needs: token refresh, organization
  listing, paged member listing, user name lookup, and paged daily
  activity totals. Nothing else.

TOKEN ROTATION:
  Every refresh returns a NEW refresh token and invalidates the old one.
  The caller must persist the rotated token before using the access token;
  losing it means re-bootstrapping auth by hand. See jobs/synchours.go for
  the persistence dance.

PAGINATION:
  Cursor style: pass page_start_id from the previous response's pagination
  block until it comes back empty.

SEE ALSO:
  - jobs/synchours.go: Fetch orchestration and token persistence
  - jobs/mapusers.go: Member/user listing for key discovery
*/
package hubstaff

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agencyops/chattersync/roster"
	"github.com/agencyops/chattersync/store"
)

const (
	memberPageLimit   = 100
	activityPageLimit = 500
)

// Client talks to the tracker API. Set the access token with
// RefreshAccessToken before calling any data method.
type Client struct {
	apiURL      string
	tokenURL    string
	accessToken string
	http        *http.Client
}

func New(apiURL, tokenURL string) *Client {
	return &Client{
		apiURL:   strings.TrimRight(apiURL, "/"),
		tokenURL: tokenURL,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// =============================================================================
// AUTH
// =============================================================================

// RefreshAccessToken exchanges a refresh token for an access token and the
// rotated refresh token. The old refresh token is dead after this call.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken string) (newRefresh string, err error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh: %w: %w", store.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &store.StatusError{Op: "token refresh", Status: resp.StatusCode, Body: string(snippet)}
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("token refresh: decode: %w", err)
	}
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		return "", fmt.Errorf("token refresh: %w: empty token in response", store.ErrAuthFailed)
	}
	c.accessToken = payload.AccessToken
	return payload.RefreshToken, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w: %w", path, store.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &store.StatusError{Op: "GET " + path, Status: resp.StatusCode, Body: string(snippet)}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// =============================================================================
// ORGANIZATIONS AND MEMBERS
// =============================================================================

type Organization struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (c *Client) Organizations(ctx context.Context) ([]Organization, error) {
	var payload struct {
		Organizations []Organization `json:"organizations"`
	}
	if err := c.get(ctx, "/organizations", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Organizations, nil
}

type Member struct {
	UserID roster.TrackerUserID `json:"user_id"`
}

// Members lists every member of an organization, following pagination.
func (c *Client) Members(ctx context.Context, orgID int64) ([]Member, error) {
	var out []Member
	startID := int64(0)
	for {
		q := url.Values{}
		q.Set("page_limit", fmt.Sprint(memberPageLimit))
		if startID > 0 {
			q.Set("page_start_id", fmt.Sprint(startID))
		}

		var payload struct {
			Members    []Member `json:"members"`
			Pagination struct {
				NextPageStartID int64 `json:"next_page_start_id"`
			} `json:"pagination"`
		}
		path := fmt.Sprintf("/organizations/%d/members", orgID)
		if err := c.get(ctx, path, q, &payload); err != nil {
			return nil, err
		}
		out = append(out, payload.Members...)
		if payload.Pagination.NextPageStartID == 0 {
			return out, nil
		}
		startID = payload.Pagination.NextPageStartID
	}
}

// UserName looks up the display name for one tracker user.
func (c *Client) UserName(ctx context.Context, userID roster.TrackerUserID) (string, error) {
	var payload struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	if err := c.get(ctx, fmt.Sprintf("/users/%d", int64(userID)), nil, &payload); err != nil {
		return "", err
	}
	return payload.User.Name, nil
}

// =============================================================================
// DAILY ACTIVITIES
// =============================================================================

// Activity is one user's tracked total for one day in one organization.
type Activity struct {
	UserID  roster.TrackerUserID `json:"user_id"`
	Date    string               `json:"date"`
	Tracked int64                `json:"tracked"`
}

// DailyActivities returns tracked totals for [start, stop] (inclusive),
// following pagination.
func (c *Client) DailyActivities(ctx context.Context, orgID int64, start, stop roster.Day) ([]Activity, error) {
	var out []Activity
	startID := int64(0)
	for {
		q := url.Values{}
		q.Set("date[start]", start.String())
		q.Set("date[stop]", stop.String())
		q.Set("page_limit", fmt.Sprint(activityPageLimit))
		if startID > 0 {
			q.Set("page_start_id", fmt.Sprint(startID))
		}

		var payload struct {
			DailyActivities []Activity `json:"daily_activities"`
			Pagination      struct {
				NextPageStartID int64 `json:"next_page_start_id"`
			} `json:"pagination"`
		}
		path := fmt.Sprintf("/organizations/%d/activities/daily", orgID)
		if err := c.get(ctx, path, q, &payload); err != nil {
			return nil, err
		}
		out = append(out, payload.DailyActivities...)
		if payload.Pagination.NextPageStartID == 0 {
			return out, nil
		}
		startID = payload.Pagination.NextPageStartID
	}
}
