package browser_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-careers-scraper/internal/browser"
	"go-careers-scraper/internal/browser/browsertest"
	"go-careers-scraper/internal/logger"
	"go-careers-scraper/internal/models"
)

func newManager(d *browsertest.Driver, opts browser.Options) *browser.Manager {
	return browser.NewManager(logger.NewNop(), opts, d.Start)
}

func TestManager_SessionLifecycle(t *testing.T) {
	d := &browsertest.Driver{}
	m := newManager(d, browser.Options{UserAgent: "test-agent"})

	require.NoError(t, m.Launch())
	s, err := m.OpenPage()
	require.NoError(t, err)
	require.NoError(t, m.Navigate(context.Background(), s, "https://acme.example/careers", time.Second))

	s.Close()
	m.Release()

	require.Len(t, d.Pages, 1)
	require.Len(t, d.Contexts, 1)
	require.Len(t, d.Browsers, 1)
	assert.Equal(t, 1, d.Pages[0].Closed)
	assert.Equal(t, 1, d.Contexts[0].Closed)
	assert.Equal(t, 1, d.Browsers[0].Closed)
	assert.Equal(t, 1, d.Stops)

	assert.Equal(t, []string{"https://acme.example/careers"}, d.Pages[0].Visited)
	assert.Equal(t, browser.ContextOptions{UserAgent: "test-agent", Width: 1366, Height: 768}, d.Contexts[0].Options)
}

func TestManager_NavigationFailureStillTearsDown(t *testing.T) {
	navErr := errors.New("net::ERR_NAME_NOT_RESOLVED at https://nowhere.invalid/")
	d := &browsertest.Driver{GotoErrs: []error{navErr}}
	m := newManager(d, browser.Options{})

	require.NoError(t, m.Launch())
	s, err := m.OpenPage()
	require.NoError(t, err)

	err = m.Navigate(context.Background(), s, "https://nowhere.invalid/", time.Second)
	require.Error(t, err)
	assert.Equal(t, navErr.Error(), err.Error())
	var nav *models.NavigationError
	require.ErrorAs(t, err, &nav)
	assert.Equal(t, "https://nowhere.invalid/", nav.URL)

	s.Close()
	s.Close()
	m.Release()

	assert.Equal(t, 1, d.Pages[0].Closed)
	assert.Equal(t, 1, d.Contexts[0].Closed)
	assert.Equal(t, 1, d.Browsers[0].Closed)
}

func TestManager_PageCreationFailureClosesContext(t *testing.T) {
	d := &browsertest.Driver{PageErr: errors.New("target closed")}
	m := newManager(d, browser.Options{})

	require.NoError(t, m.Launch())
	s, err := m.OpenPage()
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Equal(t, "target closed", err.Error())
	m.Release()

	require.Len(t, d.Contexts, 1)
	assert.Equal(t, 1, d.Contexts[0].Closed)
	assert.Equal(t, 1, d.Browsers[0].Closed)
}

func TestManager_ContextFailure(t *testing.T) {
	d := &browsertest.Driver{ContextErr: errors.New("browser has been closed")}
	m := newManager(d, browser.Options{})

	require.NoError(t, m.Launch())
	_, err := m.OpenPage()
	require.Error(t, err)
	assert.Equal(t, "browser has been closed", err.Error())
	assert.ErrorIs(t, err, d.ContextErr)
	m.Release()

	assert.Empty(t, d.Pages)
	assert.Equal(t, 1, d.Browsers[0].Closed)
}

func TestManager_OpenPageWithoutLaunch(t *testing.T) {
	m := newManager(&browsertest.Driver{}, browser.Options{})
	_, err := m.OpenPage()
	assert.Error(t, err)
}

func TestManager_LaunchFailure(t *testing.T) {
	d := &browsertest.Driver{LaunchErr: errors.New("executable doesn't exist")}
	m := newManager(d, browser.Options{})

	require.Error(t, m.Launch())
	m.Release()
	assert.Empty(t, d.Browsers)
}

func TestManager_ReuseKeepsBrowserAlive(t *testing.T) {
	d := &browsertest.Driver{}
	m := newManager(d, browser.Options{Reuse: true})

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Launch())
		s, err := m.OpenPage()
		require.NoError(t, err)
		s.Close()
		m.Release()
	}

	assert.Equal(t, 1, d.Launches)
	assert.Len(t, d.Contexts, 3)
	assert.Zero(t, d.Browsers[0].Closed)

	m.Shutdown()
	assert.Equal(t, 1, d.Browsers[0].Closed)
	assert.Equal(t, 1, d.Stops)
}

func TestManager_RelaunchesDisconnectedBrowser(t *testing.T) {
	d := &browsertest.Driver{}
	m := newManager(d, browser.Options{Reuse: true})

	require.NoError(t, m.Launch())
	m.Release()
	d.Browsers[0].Disconnect()

	require.NoError(t, m.Launch())
	m.Release()
	assert.Equal(t, 2, d.Launches)
	m.Shutdown()
}

func TestManager_ConcurrentInvocationsShareBrowser(t *testing.T) {
	d := &browsertest.Driver{}
	m := newManager(d, browser.Options{})

	// hold one user so the browser outlives the goroutines
	require.NoError(t, m.Launch())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Launch(); err != nil {
				return
			}
			defer m.Release()
			s, err := m.OpenPage()
			if err != nil {
				return
			}
			s.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, d.Launches)
	assert.Len(t, d.Contexts, 8)
	assert.Zero(t, d.Browsers[0].Closed)

	m.Release()
	assert.Equal(t, 1, d.Browsers[0].Closed)
}

func TestManager_BlocksHeavyResources(t *testing.T) {
	d := &browsertest.Driver{}
	m := newManager(d, browser.Options{})
	require.NoError(t, m.Launch())
	defer m.Release()

	s, err := m.OpenPage()
	require.NoError(t, err)
	defer s.Close()

	block := d.Pages[0].Blocker
	require.NotNil(t, block)
	for _, rt := range []string{"image", "stylesheet", "font", "media"} {
		assert.True(t, block(rt), rt)
	}
	for _, rt := range []string{"document", "script", "xhr", "fetch", "websocket", "other"} {
		assert.False(t, block(rt), rt)
	}
}

func TestManager_ConsoleForwardedOnlyInDebug(t *testing.T) {
	d := &browsertest.Driver{}

	quiet := newManager(d, browser.Options{})
	require.NoError(t, quiet.Launch())
	s, err := quiet.OpenPage()
	require.NoError(t, err)
	assert.Nil(t, d.Pages[0].Console)
	s.Close()
	quiet.Release()

	debug := newManager(d, browser.Options{Debug: true})
	require.NoError(t, debug.Launch())
	s, err = debug.OpenPage()
	require.NoError(t, err)
	assert.NotNil(t, d.Pages[1].Console)
	s.Close()
	debug.Release()
}

func TestManager_WaitSelectorFallback(t *testing.T) {
	d := &browsertest.Driver{WaitSelectorErr: errors.New("Timeout 1000ms exceeded")}
	m := newManager(d, browser.Options{WaitSelector: ".jobs"})
	require.NoError(t, m.Launch())
	defer m.Release()
	s, err := m.OpenPage()
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// the settle delay honours cancellation
	err = m.Navigate(ctx, s, "https://acme.example/careers", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, d.Pages[0].IdleWaits)
}
