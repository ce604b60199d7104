package gamesearch

import (
	"context"
	"errors"
)

// Pager walks the pages of one search.
type Pager struct {
	client *Client
	next   SearchRequest
	page   *SearchResponse
	err    error
	done   bool
}

// Pager starts a search at req.Page (default 1).
func (c *Client) Pager(req SearchRequest) *Pager {
	if req.Page <= 0 {
		req.Page = 1
	}
	return &Pager{client: c, next: req}
}

// Next fetches the following page. It returns false after the last page,
// on a policy rejection, or on error.
func (p *Pager) Next(ctx context.Context) bool {
	if p.done {
		return false
	}

	resp, err := p.client.Search(ctx, p.next)
	if err != nil {
		p.err = err
		p.done = true
		return false
	}
	p.page = resp
	if resp.Rejected() {
		p.err = &RejectedError{Message: resp.Error}
		p.done = true
		return false
	}
	if !resp.HasNextPage {
		p.done = true
		return true
	}

	p.next = followUp(p.next, resp)
	return true
}

// followUp builds the request for the page after resp. A cursor is preferred;
// otherwise the compiled query or embedding is echoed back.
func followUp(prev SearchRequest, resp *SearchResponse) SearchRequest {
	next := SearchRequest{
		Query:           resp.Query,
		UseVectorSearch: resp.UseVectorSearch,
		Page:            resp.Page + 1,
		PageSize:        resp.PageSize,
	}
	switch {
	case resp.Cursor != "":
		next.Cursor = resp.Cursor
	case len(resp.ProcessedOutput) > 0:
		next.ProcessedOutput = resp.ProcessedOutput
	case len(resp.VectorEmbedding) > 0:
		next.VectorEmbedding = resp.VectorEmbedding
	default:
		next.ProcessedOutput = prev.ProcessedOutput
		next.VectorEmbedding = prev.VectorEmbedding
	}
	return next
}

// Page returns the page fetched by the last successful Next.
func (p *Pager) Page() *SearchResponse { return p.page }

// Err returns the error that stopped the pager, if any.
func (p *Pager) Err() error { return p.err }

// RejectedError is returned by Pager.Err when the content policy refused the query.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return "gamesearch: query rejected: " + e.Message }

// IsRejected reports whether err is a policy rejection.
func IsRejected(err error) bool {
	var r *RejectedError
	return errors.As(err, &r)
}
