package github

import (
	"context"
	"fmt"
)

// Comment is an issue or pull-request conversation comment.
type Comment struct {
	ID      int64  `json:"id"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// CreateIssueComment posts a comment on an issue or pull request.
func (c *Client) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) (*Comment, error) {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, number)

	var comment Comment
	if err := c.post(ctx, path, map[string]string{"body": body}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}
