// Package background manages the optional random backdrop image: the
// enabled flag, the cached image, and its freshness.
package background

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nikbrunner/bmtab/internal/logging"
	"github.com/nikbrunner/bmtab/internal/prefs"
)

// DefaultMaxAge is how long a cached image stays fresh.
const DefaultMaxAge = time.Hour

const (
	MessageUpdated = "Background image updated"
	MessageFailed  = "Failed to fetch background image"
)

// State is the manager's display state.
type State int

const (
	StateDisabled State = iota
	StateEmpty
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Image is a held background image.
type Image struct {
	DataURL   string
	FetchedAt time.Time
	Tint      lipgloss.Color // empty when the format could not be decoded
}

// Result is the outcome of one fetch.
type Result struct {
	Data        []byte
	ContentType string
	Err         error
}

// Options configures a Manager.
type Options struct {
	MaxAge time.Duration
	Now    func() time.Time
}

// Manager owns the background flag and image. It is not safe for
// concurrent use; the fetch itself may run elsewhere and be handed back
// through CompleteFetch.
type Manager struct {
	store   prefs.Store
	fetcher Fetcher
	maxAge  time.Duration
	now     func() time.Time

	enabled bool
	loading bool
	image   *Image
}

// New creates a Manager. Call Init before use.
func New(store prefs.Store, fetcher Fetcher, opts Options) *Manager {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		store:   store,
		fetcher: fetcher,
		maxAge:  opts.MaxAge,
		now:     opts.Now,
	}
}

// Init restores persisted state and reports whether a fetch should be
// started. A cached image is reused only when enabled and younger than
// MaxAge.
func (m *Manager) Init() bool {
	v, _ := m.store.Get(prefs.KeyBackgroundEnabled)
	m.enabled = v == "true"
	if !m.enabled {
		return false
	}

	img, ok := m.cached()
	if !ok || m.now().Sub(img.FetchedAt) >= m.maxAge {
		return true
	}
	m.image = img
	return false
}

func (m *Manager) cached() (*Image, bool) {
	dataURL, ok := m.store.Get(prefs.KeyBackgroundImage)
	if !ok || dataURL == "" {
		return nil, false
	}
	raw, ok := m.store.Get(prefs.KeyBackgroundTimestamp)
	if !ok {
		return nil, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}

	img := &Image{DataURL: dataURL, FetchedAt: time.UnixMilli(ms)}
	if data, _, err := DecodeDataURL(dataURL); err == nil {
		if tint, err := AverageColor(data); err == nil {
			img.Tint = tint
		}
	}
	return img, true
}

// Enabled reports whether the background is switched on.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// Loading reports whether a fetch is in flight.
func (m *Manager) Loading() bool {
	return m.loading
}

// Image returns the held image, or nil.
func (m *Manager) Image() *Image {
	return m.image
}

// State derives the display state.
func (m *Manager) State() State {
	switch {
	case !m.enabled:
		return StateDisabled
	case m.loading:
		return StateLoading
	case m.image != nil:
		return StateReady
	default:
		return StateEmpty
	}
}

// Tint returns the backdrop color when the background is enabled and an
// image with a known tint is held.
func (m *Manager) Tint() (lipgloss.Color, bool) {
	if !m.enabled || m.image == nil || m.image.Tint == "" {
		return "", false
	}
	return m.image.Tint, true
}

// Toggle flips and persists the enabled flag. It reports whether a fetch
// should follow: newly enabled with no image held.
func (m *Manager) Toggle() bool {
	m.enabled = !m.enabled
	if err := m.store.Set(prefs.KeyBackgroundEnabled, strconv.FormatBool(m.enabled)); err != nil {
		logging.L().Warn("persist background flag", zap.Error(err))
	}
	return m.enabled && m.image == nil
}

// BeginFetch marks a fetch as in flight. It returns false when one is
// already running.
func (m *Manager) BeginFetch() bool {
	if m.loading {
		return false
	}
	m.loading = true
	return true
}

// CompleteFetch applies a fetch result and returns the user message.
// Failures keep the previous image.
func (m *Manager) CompleteFetch(res Result) string {
	m.loading = false

	if res.Err != nil {
		logging.L().Warn("background fetch failed", zap.Error(res.Err))
		return MessageFailed
	}

	now := m.now()
	img := &Image{
		DataURL:   EncodeDataURL(res.Data, res.ContentType),
		FetchedAt: now,
	}
	if tint, err := AverageColor(res.Data); err == nil {
		img.Tint = tint
	} else {
		logging.L().Debug("background tint unavailable", zap.Error(err))
	}
	m.image = img

	if err := m.store.Set(prefs.KeyBackgroundImage, img.DataURL); err != nil {
		logging.L().Warn("persist background image", zap.Error(err))
	} else if err := m.store.Set(prefs.KeyBackgroundTimestamp, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		logging.L().Warn("persist background timestamp", zap.Error(err))
	}

	logging.L().Info("background image updated",
		zap.Int("bytes", len(res.Data)),
		zap.String("content_type", res.ContentType))
	return MessageUpdated
}

// Run performs the network fetch only. It is safe to call off the UI
// goroutine.
func (m *Manager) Run(ctx context.Context) Result {
	data, contentType, err := m.fetcher.Fetch(ctx)
	return Result{Data: data, ContentType: contentType, Err: err}
}

// Fetch runs a full fetch cycle synchronously. It returns "" when a fetch
// was already in flight.
func (m *Manager) Fetch(ctx context.Context) string {
	if !m.BeginFetch() {
		return ""
	}
	return m.CompleteFetch(m.Run(ctx))
}
