// Package extract holds helpers shared by the three extraction strategies.
package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/rolehounds/jobscrawler/internal/crawler"
)

// FollowLink fetches a job's own detail page and returns the text of the
// first node matching selector, replacing a truncated or default
// description with richer content. Any failure — fetch error, unparseable
// body, selector miss — falls back to def.
func FollowLink(
	ctx context.Context,
	fetcher crawler.Fetcher,
	link string,
	selector string,
	def string,
	logger *zap.Logger,
) string {
	body, err := fetcher.Fetch(ctx, link)
	if err != nil {
		logger.Warn("Follow-link fetch failed, keeping default description",
			zap.String("link", link),
			zap.Error(err),
		)
		return def
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		logger.Warn("Follow-link body unparseable, keeping default description",
			zap.String("link", link),
			zap.Error(err),
		)
		return def
	}

	node := doc.Find(selector).First()
	if node.Length() == 0 {
		logger.Warn("Follow-link selector missed, keeping default description",
			zap.String("link", link),
			zap.String("selector", selector),
		)
		return def
	}
	return node.Text()
}

// FollowLinkDiv is the named special case used by one source family: it
// looks up a div by class attribute instead of a generic selector.
func FollowLinkDiv(
	ctx context.Context,
	fetcher crawler.Fetcher,
	link string,
	class string,
	def string,
	logger *zap.Logger,
) string {
	body, err := fetcher.Fetch(ctx, link)
	if err != nil {
		logger.Warn("Follow-link fetch failed, keeping default description",
			zap.String("link", link),
			zap.Error(err),
		)
		return def
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		logger.Warn("Follow-link body unparseable, keeping default description",
			zap.String("link", link),
			zap.Error(err),
		)
		return def
	}

	node := doc.Find("div[class=\"" + class + "\"]").First()
	if node.Length() == 0 {
		node = doc.Find("div." + class).First()
	}
	if node.Length() == 0 {
		logger.Warn("Follow-link div lookup missed, keeping default description",
			zap.String("link", link),
			zap.String("class", class),
		)
		return def
	}
	return node.Text()
}
