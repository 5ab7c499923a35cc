package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"databridgeapi/config"
	"databridgeapi/models"
	"databridgeapi/pkg/logger"
)

// odataAdapter reads entity sets from an OData web service. Both the v2
// envelope (d.results / d.__next) and the v4 envelope (value /
// @odata.nextLink) are handled; server-driven pagination is followed until the
// feed is exhausted or the query's row limit is reached.
type odataAdapter struct {
	conn    *models.Connection
	query   *models.SourceQuery
	client  *http.Client
	limiter *rate.Limiter
}

func newODataAdapter(conn *models.Connection, query *models.SourceQuery) *odataAdapter {
	return &odataAdapter{
		conn:    conn,
		query:   query,
		client:  &http.Client{Timeout: config.Cfg.HTTPTimeout},
		limiter: rate.NewLimiter(rate.Limit(config.Cfg.HTTPRateLimit), 1),
	}
}

func (a *odataAdapter) baseURL() string {
	host := strings.TrimRight(a.conn.Host, "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		if a.conn.Port != 0 {
			host = fmt.Sprintf("https://%s:%d", host, a.conn.Port)
		} else {
			host = "https://" + host
		}
	}
	path := strings.Trim(a.conn.ServicePath, "/")
	if path == "" {
		return host
	}
	return host + "/" + path
}

func (a *odataAdapter) TestConnection() TestResult {
	body, _, err := a.get(a.baseURL() + "/$metadata")
	if err != nil {
		return TestResult{Success: false, Message: err.Error()}
	}
	if !strings.Contains(string(body), "Edmx") && !strings.Contains(string(body), "edmx") {
		return TestResult{Success: false, Message: "service responded but returned no metadata document"}
	}
	return TestResult{Success: true, Message: "metadata document retrieved"}
}

func (a *odataAdapter) FetchSample(limit int) (*FetchResult, error) {
	return a.fetch(limit)
}

func (a *odataAdapter) FetchAll() (*FetchResult, error) {
	return a.fetch(a.query.RowLimit)
}

// fetch pulls pages until the feed has no continuation link. maxRows of zero
// means unbounded.
func (a *odataAdapter) fetch(maxRows int) (*FetchResult, error) {
	if a.query == nil || a.query.EntityPath == "" {
		return nil, fmt.Errorf("query has no entity path")
	}
	next := a.firstPageURL(maxRows)
	result := &FetchResult{}
	seen := map[string]bool{}

	for next != "" {
		body, _, err := a.get(next)
		if err != nil {
			return nil, err
		}
		rows, link, err := parseODataPage(body)
		if err != nil {
			return nil, fmt.Errorf("decoding page from %s: %w", a.query.EntityPath, err)
		}
		for _, row := range rows {
			result.Rows = append(result.Rows, row)
			result.Columns = mergeColumns(result.Columns, seen, sortedDataKeys(row))
			if maxRows > 0 && len(result.Rows) >= maxRows {
				return result, nil
			}
		}
		next = a.resolveLink(link)
	}
	logger.Debugf("Fetched %d rows from %s", len(result.Rows), a.query.EntityPath)
	return result, nil
}

func (a *odataAdapter) firstPageURL(maxRows int) string {
	u := a.baseURL() + "/" + strings.Trim(a.query.EntityPath, "/")
	params := url.Values{}
	params.Set("$format", "json")
	if a.query.SelectFields != "" {
		params.Set("$select", a.query.SelectFields)
	}
	if a.query.Filter != "" {
		params.Set("$filter", a.query.Filter)
	}
	if maxRows > 0 {
		params.Set("$top", strconv.Itoa(maxRows))
	}
	return u + "?" + params.Encode()
}

// resolveLink turns a continuation link into an absolute URL. v2 services
// often return service-relative links.
func (a *odataAdapter) resolveLink(link string) string {
	if link == "" || strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return a.baseURL() + "/" + strings.TrimLeft(link, "/")
}

// get performs one rate-limited request with retries on transport errors and
// server-side failures.
func (a *odataAdapter) get(rawURL string) ([]byte, int, error) {
	var lastErr error
	for attempt := 0; attempt <= config.Cfg.HTTPMaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * time.Second)
			logger.Warnf("Retrying request to %s (attempt %d): %v", a.conn.Code, attempt, lastErr)
		}
		if err := a.limiter.Wait(context.Background()); err != nil {
			return nil, 0, err
		}
		req, err := http.NewRequest(http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("Accept", "application/json, application/xml")
		if a.conn.Username != "" {
			req.SetBasicAuth(a.conn.Username, a.conn.Password)
		}
		if a.conn.ClientID != "" {
			req.Header.Set("sap-client", a.conn.ClientID)
		}

		resp, err := a.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error %d from %s", resp.StatusCode, a.conn.Code)
			continue
		}
		if resp.StatusCode >= 400 {
			return nil, resp.StatusCode, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, truncateBody(body))
		}
		return body, resp.StatusCode, nil
	}
	return nil, 0, lastErr
}

func truncateBody(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// parseODataPage strips the response envelope and returns the row maps plus
// the continuation link, if any.
func parseODataPage(body []byte) ([]map[string]interface{}, string, error) {
	var v4 struct {
		Value    []map[string]interface{} `json:"value"`
		NextLink string                   `json:"@odata.nextLink"`
	}
	if err := json.Unmarshal(body, &v4); err == nil && v4.Value != nil {
		return v4.Value, v4.NextLink, nil
	}

	var v2 struct {
		D struct {
			Results []map[string]interface{} `json:"results"`
			Next    string                   `json:"__next"`
		} `json:"d"`
	}
	if err := json.Unmarshal(body, &v2); err == nil && v2.D.Results != nil {
		return v2.D.Results, v2.D.Next, nil
	}

	// Some services return a bare array.
	var bare []map[string]interface{}
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, "", nil
	}
	return nil, "", fmt.Errorf("unrecognized response envelope")
}

// sortedDataKeys returns the row's column keys alphabetically, dropping
// protocol annotations. JSON objects carry no order, so sorting keeps the
// detected column order deterministic.
func sortedDataKeys(row map[string]interface{}) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		if strings.HasPrefix(k, "@") || strings.HasPrefix(k, "__") {
			continue
		}
		if _, isObject := row[k].(map[string]interface{}); isObject {
			// Expanded navigation properties are not scalar columns.
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
