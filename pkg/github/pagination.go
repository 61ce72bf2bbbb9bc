package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// PageIterator lazily fetches pages from a paginated endpoint by
// following the Link header. Not safe for concurrent use.
type PageIterator[T any] struct {
	client  *Client
	nextURL string
}

func newPageIterator[T any](client *Client, path string) *PageIterator[T] {
	return &PageIterator[T]{client: client, nextURL: client.baseURL + path}
}

// Next fetches the next page. Returns nil, nil when all pages are consumed.
func (it *PageIterator[T]) Next(ctx context.Context) ([]T, error) {
	if it.nextURL == "" {
		return nil, nil
	}

	resp, err := it.client.doRaw(ctx, http.MethodGet, it.nextURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		return nil, newAPIError(resp.StatusCode, body)
	}

	items := make([]T, 0)
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}

	it.nextURL = parseLinkNext(resp.Header.Get("Link"))
	return items, nil
}

// Collect fetches all remaining pages and concatenates their items.
func (it *PageIterator[T]) Collect(ctx context.Context) ([]T, error) {
	all := make([]T, 0)
	for {
		items, err := it.Next(ctx)
		if err != nil {
			return all, err
		}
		if items == nil {
			return all, nil
		}
		all = append(all, items...)
	}
}

// parseLinkNext extracts the rel="next" URL from an RFC 5988 Link header.
func parseLinkNext(header string) string {
	for part := range strings.SplitSeq(header, ",") {
		segments := strings.SplitN(strings.TrimSpace(part), ";", 2)
		if len(segments) != 2 {
			continue
		}

		urlPart := strings.TrimSpace(segments[0])
		if !strings.Contains(segments[1], `rel="next"`) {
			continue
		}

		if strings.HasPrefix(urlPart, "<") && strings.HasSuffix(urlPart, ">") {
			return urlPart[1 : len(urlPart)-1]
		}
	}
	return ""
}
