package linkcheck

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nikbrunner/bmtab/internal/logging"
	"github.com/nikbrunner/bmtab/internal/model"
)

const (
	DefaultConcurrency = 8
	DefaultTimeout     = 10 * time.Second
	maxRedirects       = 10
)

// Status is the health of one bookmark URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410
	Unreachable               // timeout, DNS failure, 5xx, auth walls
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	case Unreachable:
		return "unreachable"
	}
	return "unknown"
}

// Target is a bookmark to check together with the folder that shows it.
type Target struct {
	Bookmark model.Bookmark
	FolderID string
	Folder   string
}

// Targets flattens folders into check targets, in display order.
func Targets(folders []model.Folder) []Target {
	var out []Target
	for _, f := range folders {
		for _, b := range f.Bookmarks {
			out = append(out, Target{Bookmark: b, FolderID: f.ID, Folder: f.Title})
		}
	}
	return out
}

// Result is the outcome for one target.
type Result struct {
	Target
	Status     Status
	StatusCode int    // 0 if the connection failed
	Reason     string // short explanation for unreachable URLs
}

// ProgressFunc is called after each URL is checked.
type ProgressFunc func(completed, total int)

// Checker checks bookmark URLs with a bounded worker pool.
type Checker struct {
	Client      *http.Client
	Concurrency int

	// ExcludeDomains lists hosts whose 404s usually mean "private", not
	// gone (e.g. github.com). Subdomains match too.
	ExcludeDomains []string
}

// NewChecker returns a Checker with default limits.
func NewChecker(timeout time.Duration, excludeDomains []string) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{
		Client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		Concurrency:    DefaultConcurrency,
		ExcludeDomains: excludeDomains,
	}
}

// Check checks all targets and returns one result per target, in input
// order. Cancelling ctx stops pending checks; their results are Unreachable.
func (c *Checker) Check(ctx context.Context, targets []Target, onProgress ProgressFunc) []Result {
	if len(targets) == 0 {
		return nil
	}

	exclude := make(map[string]bool, len(c.ExcludeDomains))
	for _, d := range c.ExcludeDomains {
		exclude[strings.ToLower(d)] = true
	}

	workers := c.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}

	results := make([]Result, len(targets))
	jobs := make(chan int)
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	completed := 0

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = c.check(ctx, targets[idx], exclude)

				if onProgress != nil {
					progressMu.Lock()
					completed++
					onProgress(completed, len(targets))
					progressMu.Unlock()
				}
			}
		}()
	}

	for i := range targets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	dead := 0
	for _, r := range results {
		if r.Status == Dead {
			dead++
		}
	}
	logging.L().Info("link check finished", zap.Int("checked", len(results)), zap.Int("dead", dead))
	return results
}

func (c *Checker) check(ctx context.Context, t Target, exclude map[string]bool) Result {
	result := Result{Target: t}

	// HEAD first, GET for servers that reject HEAD
	resp, err := c.do(ctx, http.MethodHead, t.Bookmark.URL)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = c.do(ctx, http.MethodGet, t.Bookmark.URL)
	}
	if err != nil {
		result.Status = Unreachable
		result.Reason = normalizeError(err)
		logging.L().Debug("link unreachable", zap.String("url", t.Bookmark.URL), zap.Error(err))
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if isExcludedDomain(t.Bookmark.URL, exclude) {
			result.Status = Unreachable
			result.Reason = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		result.Status = Unreachable
		result.Reason = http.StatusText(resp.StatusCode)
	}
	return result
}

func (c *Checker) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

// isExcludedDomain reports whether the URL's host or a parent domain is
// in exclude.
func isExcludedDomain(rawURL string, exclude map[string]bool) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if exclude[host] {
		return true
	}
	for domain := range exclude {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError maps transport errors to short readable categories.
func normalizeError(err error) string {
	if errors.Is(err, context.Canceled) {
		return "Cancelled"
	}
	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	case strings.Contains(lower, "unsupported protocol scheme"):
		return "Unsupported URL"
	default:
		return err.Error()
	}
}

// DeadResults returns the dead results only.
func DeadResults(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Status == Dead {
			out = append(out, r)
		}
	}
	return out
}
