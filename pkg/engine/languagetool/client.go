// Package languagetool is a grammar engine backed by a LanguageTool server's
// HTTP API.
package languagetool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf16"

	"golang.org/x/time/rate"

	"github.com/yaklabco/gramlint/pkg/engine"
)

// Default settings.
const (
	DefaultURL      = "http://localhost:8081"
	DefaultTimeout  = 30 * time.Second
	DefaultLanguage = "en-US"

	maxErrorBody = 4 << 10
)

// Options configures a Client.
type Options struct {
	// URL is the server base URL, without the /v2 path.
	URL string

	Language string

	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64

	// Timeout bounds a single request.
	Timeout time.Duration

	DisabledRules      []string
	DisabledCategories []string

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client
}

// Client implements engine.Engine over HTTP. It is safe for concurrent use.
type Client struct {
	endpoint string
	opts     Options
	http     *http.Client
	limiter  *rate.Limiter
}

var _ engine.Engine = (*Client)(nil)

// New creates a client. It does not contact the server.
func New(opts Options) (*Client, error) {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	base, err := url.Parse(opts.URL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid server url %q", engine.ErrUnavailable, opts.URL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(1, int(opts.RateLimit)))
	}

	return &Client{
		endpoint: base.JoinPath("v2", "check").String(),
		opts:     opts,
		http:     httpClient,
		limiter:  limiter,
	}, nil
}

// Name identifies the engine.
func (c *Client) Name() string {
	return "languagetool/" + c.opts.Language
}

// CacheKey scopes cached results to the server and the rules sent with each
// request.
func (c *Client) CacheKey() string {
	return engine.Fingerprint(c.Name(),
		c.endpoint,
		"rules="+sortedJoin(c.opts.DisabledRules),
		"categories="+sortedJoin(c.opts.DisabledCategories),
	)
}

func sortedJoin(items []string) string {
	sorted := slices.Clone(items)
	slices.Sort(sorted)
	return strings.Join(sorted, ",")
}

type checkResponse struct {
	Matches []struct {
		Message      string `json:"message"`
		Offset       int    `json:"offset"`
		Length       int    `json:"length"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
		Rule struct {
			ID       string `json:"id"`
			Category struct {
				ID string `json:"id"`
			} `json:"category"`
		} `json:"rule"`
	} `json:"matches"`
}

// Analyze sends text to the server and converts the returned UTF-16 offsets
// to rune offsets.
func (c *Client) Analyze(ctx context.Context, text string) ([]engine.RawMatch, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", engine.ErrUnavailable, err)
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", c.opts.Language)
	if len(c.opts.DisabledRules) > 0 {
		form.Set("disabledRules", strings.Join(c.opts.DisabledRules, ","))
	}
	if len(c.opts.DisabledCategories) > 0 {
		form.Set("disabledCategories", strings.Join(c.opts.DisabledCategories, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", engine.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: server returned %s: %s",
			engine.ErrUnavailable, resp.Status, strings.TrimSpace(string(body)))
	}

	var decoded checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", engine.ErrUnavailable, err)
	}

	offsets := newUTF16Index(text)
	matches := make([]engine.RawMatch, 0, len(decoded.Matches))
	for _, m := range decoded.Matches {
		repl := make([]string, 0, len(m.Replacements))
		for _, r := range m.Replacements {
			repl = append(repl, r.Value)
		}
		matches = append(matches, engine.RawMatch{
			Start:        offsets.runeOffset(m.Offset),
			End:          offsets.runeOffset(m.Offset + m.Length),
			RuleID:       m.Rule.ID,
			Category:     m.Rule.Category.ID,
			Message:      m.Message,
			Replacements: repl,
		})
	}

	return matches, nil
}

// Ping checks that the server answers /v2/languages.
func (c *Client) Ping(ctx context.Context) error {
	endpoint := strings.TrimSuffix(c.endpoint, "/check") + "/languages"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", engine.ErrUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", engine.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: server returned %s", engine.ErrUnavailable, resp.Status)
	}
	return nil
}

// utf16Index maps UTF-16 code unit offsets to rune offsets.
type utf16Index struct {
	// units[i] is the UTF-16 offset where rune i starts.
	units []int
}

func newUTF16Index(text string) utf16Index {
	units := make([]int, 0, len(text)+1)
	pos := 0
	for _, r := range text {
		units = append(units, pos)
		pos += utf16.RuneLen(r)
	}
	units = append(units, pos)
	return utf16Index{units: units}
}

// runeOffset returns the index of the rune starting at or containing unit.
// Out-of-range offsets clamp to the text bounds.
func (x utf16Index) runeOffset(unit int) int {
	if unit <= 0 {
		return 0
	}
	lo, hi := 0, len(x.units)-1
	if unit >= x.units[hi] {
		return hi
	}
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if x.units[mid] <= unit {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
