// Package rss provides a gofeed-backed podcast feed client.
package rss

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mmcdole/gofeed"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/domain/episode"
	"github.com/osa030/podbox/internal/domain/podcast"
)

// Client fetches and maps podcast RSS feeds.
type Client struct {
	parser *gofeed.Parser
}

// New creates a new feed client.
func New() *Client {
	return &Client{
		parser: gofeed.NewParser(),
	}
}

// Fetch downloads and parses the feed at feedURL.
func (c *Client) Fetch(ctx context.Context, feedURL string) (*podcast.Podcast, error) {
	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch feed %s", feedURL)
	}
	return mapFeed(feedURL, feed), nil
}

// mapFeed converts a parsed feed into the domain podcast.
func mapFeed(feedURL string, feed *gofeed.Feed) *podcast.Podcast {
	pod := &podcast.Podcast{
		URI:         feedURL,
		Title:       feed.Title,
		Description: feed.Description,
	}
	if feed.Author != nil {
		pod.Author = feed.Author.Name
	}
	if pod.Author == "" && feed.ITunesExt != nil {
		pod.Author = feed.ITunesExt.Author
	}
	if feed.Image != nil {
		pod.ImageURL = feed.Image.URL
	}
	if pod.ImageURL == "" && feed.ITunesExt != nil {
		pod.ImageURL = feed.ITunesExt.Image
	}

	pod.Episodes = make([]episode.Episode, 0, len(feed.Items))
	for _, item := range feed.Items {
		ep, ok := mapItem(item)
		if !ok {
			zlog.Debug().Msgf("rss: skipping item without enclosure or link: title=%s feed=%s",
				item.Title, feedURL)
			continue
		}
		pod.Episodes = append(pod.Episodes, ep)
	}
	return pod
}

// mapItem converts a feed item into an episode. Items without any
// addressable media are dropped.
func mapItem(item *gofeed.Item) (episode.Episode, bool) {
	ep := episode.Episode{
		Title:   item.Title,
		Summary: item.Description,
	}

	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			ep.URI = enc.URL
			break
		}
	}
	if ep.URI == "" {
		ep.URI = item.Link
	}
	if ep.URI == "" {
		return episode.Episode{}, false
	}

	if item.PublishedParsed != nil {
		ep.Published = *item.PublishedParsed
	}
	if item.Author != nil {
		ep.Author = item.Author.Name
	}

	if it := item.ITunesExt; it != nil {
		ep.Subtitle = it.Subtitle
		if it.Summary != "" {
			ep.Summary = it.Summary
		}
		if ep.Author == "" {
			ep.Author = it.Author
		}
		ep.Duration = parseDuration(it.Duration)
	}

	return ep, true
}

// parseDuration parses an itunes:duration value: plain seconds, MM:SS, or
// HH:MM:SS. Returns 0 when the value is absent or malformed.
func parseDuration(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0
	}

	var total int64
	for _, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second
}
