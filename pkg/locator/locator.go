// Package locator resolves the image path behind a flip-book page.
//
// Each page is tried against an ordered list of strategies. The first one
// that yields a non-empty attribute wins. Waiting and DOM access are left to
// the Page implementation so the resolution order can be tested without a
// browser.
package locator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	flerrors "flipdl/pkg/errors"
	"flipdl/pkg/logger"
)

// Kind selects how a Selector expression is evaluated
type Kind int

const (
	// ByQuery is a CSS selector
	ByQuery Kind = iota
	// ByXPath is an XPath expression
	ByXPath
)

func (k Kind) String() string {
	if k == ByXPath {
		return "xpath"
	}
	return "css"
}

// Selector addresses one element in the current document
type Selector struct {
	Expr string
	Kind Kind
}

// ErrNotAttached is returned by a Page when no element matched within the timeout
var ErrNotAttached = errors.New("element not attached")

// Page reads attributes of the first element matching sel, waiting up to
// timeout for it to appear.
type Page interface {
	WaitAttributes(ctx context.Context, sel Selector, timeout time.Duration) (map[string]string, error)
}

// Strategy is one way of locating a page's image path
type Strategy struct {
	Name       string
	Selector   func(page int) Selector
	Attributes []string
	// Timeout overrides the resolver's lookup timeout when non-zero
	Timeout time.Duration
}

// ThumbnailStrategy reads data-src from the navigation thumbnail for the page
func ThumbnailStrategy() Strategy {
	return Strategy{
		Name: "thumbnail",
		Selector: func(page int) Selector {
			return Selector{
				Expr: `img[data-pageflip-goto="` + strconv.Itoa(page) + `"]`,
				Kind: ByQuery,
			}
		},
		Attributes: []string{"data-src"},
	}
}

// InlineImageStrategy reads the href of an inline SVG image whose link
// contains prefix. The page number is not part of the match: whatever the
// reader currently renders is taken.
func InlineImageStrategy(prefix string) Strategy {
	expr := fmt.Sprintf(
		`//*[local-name()="image" and @*[local-name()="href" and contains(., %s)]]`,
		xpathLiteral(prefix),
	)
	return Strategy{
		Name: "inline_image",
		Selector: func(int) Selector {
			return Selector{Expr: expr, Kind: ByXPath}
		},
		Attributes: []string{"xlink:href", "href"},
	}
}

// DefaultStrategies returns the thumbnail lookup followed by the inline image lookup
func DefaultStrategies(prefix string) []Strategy {
	return []Strategy{ThumbnailStrategy(), InlineImageStrategy(prefix)}
}

// Result is a resolved image path
type Result struct {
	Token    string
	Strategy string
}

// Resolver tries strategies in order
type Resolver struct {
	strategies []Strategy
	timeout    time.Duration
	logger     logger.Logger
}

// NewResolver creates a resolver. A nil log discards output.
func NewResolver(strategies []Strategy, timeout time.Duration, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Resolver{
		strategies: strategies,
		timeout:    timeout,
		logger:     log,
	}
}

// Strategies returns the configured strategy names in evaluation order
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name
	}
	return names
}

// Resolve returns the first non-empty attribute found by any strategy.
// Lookup failures fall through to the next strategy; a cancelled ctx stops
// resolution immediately.
func (r *Resolver) Resolve(ctx context.Context, page Page, index int) (Result, error) {
	var tried []string

	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		sel := s.Selector(index)
		timeout := r.timeout
		if s.Timeout > 0 {
			timeout = s.Timeout
		}

		log := r.logger.WithFields(map[string]interface{}{
			"page":     index,
			"strategy": s.Name,
			"selector": sel.Expr,
		})

		attrs, err := page.WaitAttributes(ctx, sel, timeout)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			log.WithError(err).Debug("Strategy found nothing")
			tried = append(tried, s.Name)
			continue
		}

		if token := firstNonEmpty(attrs, s.Attributes); token != "" {
			log.WithField("token", token).Debug("Strategy resolved page")
			return Result{Token: token, Strategy: s.Name}, nil
		}

		log.Debug("Element found without usable attribute")
		tried = append(tried, s.Name)
	}

	return Result{}, flerrors.NotFound(index, fmt.Sprintf("no image path after trying %v", tried))
}

func firstNonEmpty(attrs map[string]string, names []string) string {
	for _, name := range names {
		if v := attrs[name]; v != "" {
			return v
		}
	}
	return ""
}

// xpathLiteral quotes s for use inside an XPath 1.0 expression
func xpathLiteral(s string) string {
	if !strings.ContainsRune(s, '"') {
		return `"` + s + `"`
	}
	if !strings.ContainsRune(s, '\'') {
		return `'` + s + `'`
	}
	// both quote kinds: concat("a", '"', "b")
	parts := "concat("
	start := 0
	for i, c := range s {
		if c == '"' {
			parts += `"` + s[start:i] + `", '"', `
			start = i + 1
		}
	}
	return parts + `"` + s[start:] + `")`
}
