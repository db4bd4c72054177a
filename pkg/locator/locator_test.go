package locator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flerrors "flipdl/pkg/errors"
	"flipdl/pkg/logger"
)

const prefix = "/teaching-tool-page-image/"

// fakePage answers lookups from a fixed table keyed by selector expression
type fakePage struct {
	elements map[string]map[string]string
	calls    []Selector
	timeouts []time.Duration
	err      error
}

func (p *fakePage) WaitAttributes(ctx context.Context, sel Selector, timeout time.Duration) (map[string]string, error) {
	p.calls = append(p.calls, sel)
	p.timeouts = append(p.timeouts, timeout)
	if p.err != nil {
		return nil, p.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	attrs, ok := p.elements[sel.Expr]
	if !ok {
		return nil, ErrNotAttached
	}
	return attrs, nil
}

func thumbExpr(page int) string {
	return ThumbnailStrategy().Selector(page).Expr
}

func inlineExpr() string {
	return InlineImageStrategy(prefix).Selector(0).Expr
}

func TestThumbnailSelector(t *testing.T) {
	sel := ThumbnailStrategy().Selector(42)
	assert.Equal(t, `img[data-pageflip-goto="42"]`, sel.Expr)
	assert.Equal(t, ByQuery, sel.Kind)
}

func TestInlineImageSelector(t *testing.T) {
	sel := InlineImageStrategy(prefix).Selector(3)
	assert.Equal(t, ByXPath, sel.Kind)
	assert.Contains(t, sel.Expr, `contains(., "/teaching-tool-page-image/")`)
	assert.Contains(t, sel.Expr, `local-name()="image"`)
}

func TestResolveThumbnailWins(t *testing.T) {
	page := &fakePage{elements: map[string]map[string]string{
		thumbExpr(1): {"data-src": "/teaching-tool-page-image/a1"},
		inlineExpr(): {"xlink:href": "/teaching-tool-page-image/b1"},
	}}
	r := NewResolver(DefaultStrategies(prefix), 5*time.Second, nil)

	res, err := r.Resolve(context.Background(), page, 1)
	require.NoError(t, err)
	assert.Equal(t, "/teaching-tool-page-image/a1", res.Token)
	assert.Equal(t, "thumbnail", res.Strategy)
	assert.Len(t, page.calls, 1, "second strategy must not be consulted")
	assert.Equal(t, 5*time.Second, page.timeouts[0])
}

func TestResolveFallsBackToInlineImage(t *testing.T) {
	page := &fakePage{elements: map[string]map[string]string{
		inlineExpr(): {"xlink:href": "/teaching-tool-page-image/b2"},
	}}
	r := NewResolver(DefaultStrategies(prefix), time.Second, nil)

	res, err := r.Resolve(context.Background(), page, 2)
	require.NoError(t, err)
	assert.Equal(t, "/teaching-tool-page-image/b2", res.Token)
	assert.Equal(t, "inline_image", res.Strategy)
	require.Len(t, page.calls, 2)
	assert.Equal(t, ByQuery, page.calls[0].Kind)
	assert.Equal(t, ByXPath, page.calls[1].Kind)
}

func TestResolvePlainHrefAttribute(t *testing.T) {
	page := &fakePage{elements: map[string]map[string]string{
		inlineExpr(): {"href": "/teaching-tool-page-image/c"},
	}}
	r := NewResolver(DefaultStrategies(prefix), time.Second, nil)

	res, err := r.Resolve(context.Background(), page, 9)
	require.NoError(t, err)
	assert.Equal(t, "/teaching-tool-page-image/c", res.Token)
}

func TestResolveEmptyAttributeFallsThrough(t *testing.T) {
	page := &fakePage{elements: map[string]map[string]string{
		thumbExpr(4): {"data-src": ""},
		inlineExpr(): {"xlink:href": "/teaching-tool-page-image/d4"},
	}}
	log := logger.NewTestLogger()
	r := NewResolver(DefaultStrategies(prefix), time.Second, log)

	res, err := r.Resolve(context.Background(), page, 4)
	require.NoError(t, err)
	assert.Equal(t, "inline_image", res.Strategy)
	assert.True(t, log.HasMessage("Element found without usable attribute"))
}

func TestResolveNothingFound(t *testing.T) {
	page := &fakePage{elements: map[string]map[string]string{
		thumbExpr(6): {"data-src": ""},
	}}
	r := NewResolver(DefaultStrategies(prefix), time.Second, nil)

	_, err := r.Resolve(context.Background(), page, 6)
	require.Error(t, err)
	assert.True(t, flerrors.IsType(err, flerrors.ErrorTypeNotFound))
	assert.Contains(t, err.Error(), "page 6")
	assert.Len(t, page.calls, 2)
}

func TestResolveStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := &fakePage{}
	r := NewResolver(DefaultStrategies(prefix), time.Second, nil)

	_, err := r.Resolve(ctx, page, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, page.calls)
}

func TestResolveLookupErrorIsNotFatal(t *testing.T) {
	page := &fakePage{err: errors.New("node detached")}
	r := NewResolver(DefaultStrategies(prefix), time.Second, nil)

	_, err := r.Resolve(context.Background(), page, 3)
	assert.True(t, flerrors.IsType(err, flerrors.ErrorTypeNotFound))
	assert.Len(t, page.calls, 2)
}

func TestStrategyTimeoutOverride(t *testing.T) {
	s := ThumbnailStrategy()
	s.Timeout = 250 * time.Millisecond
	page := &fakePage{}
	r := NewResolver([]Strategy{s}, 5*time.Second, nil)

	_, _ = r.Resolve(context.Background(), page, 1)
	require.Len(t, page.timeouts, 1)
	assert.Equal(t, 250*time.Millisecond, page.timeouts[0])
}

func TestStrategies(t *testing.T) {
	r := NewResolver(DefaultStrategies(prefix), time.Second, nil)
	assert.Equal(t, []string{"thumbnail", "inline_image"}, r.Strategies())
}

func TestXPathLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/plain/", `"/plain/"`},
		{`say "hi"`, `'say "hi"'`},
		{`a"b'c`, `concat("a", '"', "b'c")`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, xpathLiteral(tt.in))
	}
}
