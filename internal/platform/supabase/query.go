// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// From starts a query builder for a table.
func (client *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{
		client: client,
		table:  table,
	}
}

// filter is one 'column=operator.value' PostgREST condition.
type filter struct {
	column string
	value  string
}

// QueryBuilder builds read-only PostgREST queries.
//
// A builder is single-use and not safe for concurrent use.
type QueryBuilder struct {
	client      *Client
	table       string
	columns     string
	filters     []filter
	orders      []string
	limit       int
	accessToken string
}

// Select specifies columns to select, including embedded relations.
func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.columns = columns
	return q
}

// Eq adds an equality filter.
func (q *QueryBuilder) Eq(column string, value any) *QueryBuilder {
	q.filters = append(q.filters, filter{column: column, value: fmt.Sprintf("eq.%v", value)})
	return q
}

// ILike adds a case-insensitive LIKE filter. The pattern is sent as given.
func (q *QueryBuilder) ILike(column string, pattern string) *QueryBuilder {
	q.filters = append(q.filters, filter{column: column, value: "ilike." + pattern})
	return q
}

// Order adds an ORDER BY clause.
func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "asc"
	if !ascending {
		dir = "desc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

// Limit sets the LIMIT.
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// WithToken runs the query as the user owning accessToken.
func (q *QueryBuilder) WithToken(accessToken string) *QueryBuilder {
	q.accessToken = accessToken
	return q
}

// Params returns the encoded query parameters.
func (q *QueryBuilder) Params() url.Values {
	params := url.Values{}
	if q.columns != "" {
		params.Set("select", q.columns)
	}
	for _, f := range q.filters {
		params.Add(f.column, f.value)
	}
	if len(q.orders) > 0 {
		params.Set("order", strings.Join(q.orders, ","))
	}
	if q.limit > 0 {
		params.Set("limit", strconv.Itoa(q.limit))
	}
	return params
}

// Execute executes a SELECT query.
func (q *QueryBuilder) Execute(ctx context.Context) (*Response, error) {
	path := "/rest/v1/" + url.PathEscape(q.table)
	if params := q.Params(); len(params) > 0 {
		path += "?" + params.Encode()
	}

	request, err := q.client.newRequest(ctx, http.MethodGet, path, nil, q.accessToken)
	if err != nil {
		return nil, err
	}

	return q.client.do(request)
}
