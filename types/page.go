/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"github.com/tomoncle/paybook/predicate"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 1000
)

// PageRequest describes a page window, an optional predicate and ordering.
type PageRequest struct {
	page     int
	pageSize int
	filter   predicate.Predicate
	orders   []string // "u.id ASC", "u.firstname DESC"
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		p.pageSize = defaultPageSize
	}
	if p.pageSize > maxPageSize {
		p.pageSize = maxPageSize
	}
	return p.pageSize
}

func (p *PageRequest) GetPage() int {
	if p.page < 1 {
		p.page = defaultPage
	}
	return p.page
}

func (p *PageRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// GetFilter returns the page predicate; the zero value matches every row.
func (p *PageRequest) GetFilter() predicate.Predicate {
	return p.filter
}

func (p *PageRequest) GetOrders() []string {
	return p.orders
}

// NewPageRequest constructs a PageRequest with filter and order settings.
func NewPageRequest(page int, pageSize int, filter predicate.Predicate, orders []string) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize, filter: filter, orders: orders}
}

// NewPageRequestWithFilter constructs a PageRequest with a filter only.
func NewPageRequestWithFilter(page int, pageSize int, filter predicate.Predicate) *PageRequest {
	return NewPageRequest(page, pageSize, filter, nil)
}

// NewPageRequestWithOrders constructs a PageRequest with ordering only.
func NewPageRequestWithOrders(page int, pageSize int, orders ...string) *PageRequest {
	return NewPageRequest(page, pageSize, predicate.All(), orders)
}

// NewDefaultPageRequest constructs a PageRequest with no filter or ordering.
func NewDefaultPageRequest(page int, pageSize int) *PageRequest {
	return NewPageRequest(page, pageSize, predicate.All(), nil)
}

// Pagination holds one page of items with the total row count.
type Pagination[T any] struct {
	Page     int
	PageSize int
	Total    int
	Items    []*T
}

// Pages returns the number of pages needed for Total rows.
func (p *Pagination[T]) Pages() int {
	if p.PageSize < 1 || p.Total == 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// NewDefaultPagination constructs an empty pagination container.
func NewDefaultPagination[T any](page int, pageSize int) *Pagination[T] {
	return &Pagination[T]{Page: page, PageSize: pageSize, Items: make([]*T, 0)}
}
