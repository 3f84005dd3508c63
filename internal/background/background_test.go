package background_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmtab/internal/background"
	"github.com/nikbrunner/bmtab/internal/prefs"
)

type fakeFetcher struct {
	data  []byte
	ctype string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(context.Context) ([]byte, string, error) {
	f.calls++
	return f.data, f.ctype, f.err
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func solidPNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	assert.NilError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newManager(store prefs.Store, f background.Fetcher, c *clock) *background.Manager {
	return background.New(store, f, background.Options{MaxAge: time.Hour, Now: c.Now})
}

func TestInit_Disabled(t *testing.T) {
	store := prefs.NewMemory()
	f := &fakeFetcher{}
	m := newManager(store, f, &clock{t: time.Now()})

	assert.Assert(t, !m.Init())
	assert.Equal(t, m.State(), background.StateDisabled)
}

func TestInit_EnabledWithoutCache(t *testing.T) {
	store := prefs.NewMemory()
	assert.NilError(t, store.Set(prefs.KeyBackgroundEnabled, "true"))
	m := newManager(store, &fakeFetcher{}, &clock{t: time.Now()})

	assert.Assert(t, m.Init(), "should request a fetch")
	assert.Equal(t, m.State(), background.StateEmpty)
}

func TestInit_Freshness(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	data := solidPNG(t, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	tests := []struct {
		name      string
		age       time.Duration
		wantFetch bool
	}{
		{"fresh", 59 * time.Minute, false},
		{"exactly max age", time.Hour, true},
		{"stale", 2 * time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := prefs.NewMemory()
			assert.NilError(t, store.Set(prefs.KeyBackgroundEnabled, "true"))
			assert.NilError(t, store.Set(prefs.KeyBackgroundImage, background.EncodeDataURL(data, "image/png")))
			stamp := now.Add(-tt.age).UnixMilli()
			assert.NilError(t, store.Set(prefs.KeyBackgroundTimestamp, strconv.FormatInt(stamp, 10)))

			m := newManager(store, &fakeFetcher{}, &clock{t: now})
			assert.Equal(t, m.Init(), tt.wantFetch)
			if !tt.wantFetch {
				assert.Equal(t, m.State(), background.StateReady)
				tint, ok := m.Tint()
				assert.Assert(t, ok)
				assert.Equal(t, tint, lipgloss.Color("#C86432"))
			}
		})
	}
}

func TestToggle(t *testing.T) {
	store := prefs.NewMemory()
	m := newManager(store, &fakeFetcher{}, &clock{t: time.Now()})
	m.Init()

	assert.Assert(t, m.Toggle(), "enabling with no image should request a fetch")
	v, _ := store.Get(prefs.KeyBackgroundEnabled)
	assert.Equal(t, v, "true")

	assert.Assert(t, !m.Toggle())
	v, _ = store.Get(prefs.KeyBackgroundEnabled)
	assert.Equal(t, v, "false")
	assert.Equal(t, m.State(), background.StateDisabled)
}

func TestFetch_Success(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := prefs.NewMemory()
	data := solidPNG(t, color.RGBA{R: 16, G: 32, B: 48, A: 255})
	f := &fakeFetcher{data: data, ctype: "image/png"}
	m := newManager(store, f, &clock{t: now})
	m.Init()
	m.Toggle()

	msg := m.Fetch(context.Background())
	assert.Equal(t, msg, background.MessageUpdated)
	assert.Equal(t, m.State(), background.StateReady)

	saved, _ := store.Get(prefs.KeyBackgroundImage)
	assert.Assert(t, is.Contains(saved, "data:image/png;base64,"))
	stamp, _ := store.Get(prefs.KeyBackgroundTimestamp)
	assert.Equal(t, stamp, strconv.FormatInt(now.UnixMilli(), 10))

	tint, ok := m.Tint()
	assert.Assert(t, ok)
	assert.Equal(t, tint, lipgloss.Color("#102030"))
}

func TestFetch_FailureKeepsPreviousImage(t *testing.T) {
	store := prefs.NewMemory()
	f := &fakeFetcher{data: solidPNG(t, color.RGBA{A: 255}), ctype: "image/png"}
	m := newManager(store, f, &clock{t: time.Now()})
	m.Init()
	m.Toggle()
	m.Fetch(context.Background())
	before := m.Image()

	f.err = errors.New("offline")
	msg := m.Fetch(context.Background())
	assert.Equal(t, msg, background.MessageFailed)
	assert.Equal(t, m.State(), background.StateReady)
	assert.Equal(t, m.Image(), before)
}

func TestFetch_FailureWithoutImage(t *testing.T) {
	m := newManager(prefs.NewMemory(), &fakeFetcher{err: errors.New("offline")}, &clock{t: time.Now()})
	m.Init()
	m.Toggle()

	assert.Equal(t, m.Fetch(context.Background()), background.MessageFailed)
	assert.Equal(t, m.State(), background.StateEmpty)
}

func TestBeginFetch_SingleFlight(t *testing.T) {
	m := newManager(prefs.NewMemory(), &fakeFetcher{}, &clock{t: time.Now()})
	m.Init()
	m.Toggle()

	assert.Assert(t, m.BeginFetch())
	assert.Equal(t, m.State(), background.StateLoading)
	assert.Assert(t, !m.BeginFetch())
	assert.Equal(t, m.Fetch(context.Background()), "")
}

func TestDataURL_RoundTrip(t *testing.T) {
	data := []byte{0xff, 0xd8, 0x00, 0x01}
	got, ctype, err := background.DecodeDataURL(background.EncodeDataURL(data, "image/jpeg"))
	assert.NilError(t, err)
	assert.Equal(t, ctype, "image/jpeg")
	assert.DeepEqual(t, got, data)

	_, _, err = background.DecodeDataURL("https://example.com/x.jpg")
	assert.ErrorIs(t, err, background.ErrBadDataURL)
}

func TestHTTPFetcher(t *testing.T) {
	body := solidPNG(t, color.RGBA{A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	data, ctype, err := background.NewHTTPFetcher(srv.URL + "/img").Fetch(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, ctype, "image/png")
	assert.DeepEqual(t, data, body)

	_, _, err = background.NewHTTPFetcher(srv.URL + "/missing").Fetch(context.Background())
	assert.ErrorIs(t, err, background.ErrFetch)
}
