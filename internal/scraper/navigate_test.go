package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNavigateWithRetry_FirstStrategySucceeds(t *testing.T) {
	t.Parallel()
	page := &fakePage{}

	ok := NavigateWithRetry(context.Background(), page, "https://example.com", fastNav(3))

	assert.True(t, ok)
	assert.Equal(t, 1, page.navCalls)
	assert.Equal(t, []LoadStrategy{LoadNetworkIdle}, page.strategies)
}

func TestNavigateWithRetry_FallsBackToDOMReady(t *testing.T) {
	t.Parallel()
	page := &fakePage{failNavigations: 1}

	ok := NavigateWithRetry(context.Background(), page, "https://example.com", fastNav(3))

	assert.True(t, ok)
	assert.Equal(t, []LoadStrategy{LoadNetworkIdle, LoadDOMReady}, page.strategies)
}

func TestNavigateWithRetry_RetriesAcrossAttempts(t *testing.T) {
	t.Parallel()
	// Both strategies fail on the first attempt; the first strategy of the
	// second attempt succeeds.
	page := &fakePage{failNavigations: 2}

	ok := NavigateWithRetry(context.Background(), page, "https://example.com", fastNav(3))

	assert.True(t, ok)
	assert.Equal(t, 3, page.navCalls)
	assert.Equal(t, []LoadStrategy{LoadNetworkIdle, LoadDOMReady, LoadNetworkIdle}, page.strategies)
}

func TestNavigateWithRetry_Exhaustion(t *testing.T) {
	t.Parallel()
	page := &fakePage{failNavigations: 100}

	ok := NavigateWithRetry(context.Background(), page, "https://example.com", fastNav(3))

	assert.False(t, ok)
	// 3 attempts x 2 strategies.
	assert.Equal(t, 6, page.navCalls)
}

func TestNavigateWithRetry_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	page := &fakePage{failNavigations: 100}

	ok := NavigateWithRetry(ctx, page, "https://example.com", fastNav(3))

	assert.False(t, ok)
	assert.Zero(t, page.navCalls)
}

func TestScrollPage(t *testing.T) {
	t.Parallel()
	page := &fakePage{}

	assert.NoError(t, ScrollPage(context.Background(), page))
	// Bottom scroll, five stepped scrolls, bottom scroll again.
	assert.Len(t, page.evals, 7)
	assert.Equal(t, "window.scrollTo(0, document.body.scrollHeight)", page.evals[0])
	assert.Equal(t, "window.scrollTo(0, 1000)", page.evals[1])
	assert.Equal(t, "window.scrollTo(0, document.body.scrollHeight)", page.evals[6])
}
