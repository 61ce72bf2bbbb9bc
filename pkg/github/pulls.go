package github

import (
	"context"
	"fmt"
)

// PullRequestFile is one entry of a pull request's changed-file listing.
type PullRequestFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// ListPullRequestFiles returns every file changed by a pull request.
func (c *Client) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]PullRequestFile, error) {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/files?per_page=100", owner, repo, number)
	return newPageIterator[PullRequestFile](c, path).Collect(ctx)
}
