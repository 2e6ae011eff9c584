package util

import (
	"errors"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*size far from int overflow.
	MaxPage = 1 << 20
)

// Page is a normalized page/size pair taken from query parameters.
type Page struct {
	Page int
	Size int
}

// ParsePage reads page and size, falling back to 1 and DefaultPageSize. Pages
// past MaxPage are clamped to it.
func ParsePage(page, size string) Page {
	p, err := strconv.Atoi(page)
	switch {
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(strings.TrimSpace(page), "-"):
		p = MaxPage
	case err != nil || p < 1:
		p = 1
	case p > MaxPage:
		p = MaxPage
	}
	s, err := strconv.Atoi(size)
	if err != nil || s <= 0 {
		s = DefaultPageSize
	}
	if s > MaxPageSize {
		s = MaxPageSize
	}
	return Page{Page: p, Size: s}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Size
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasPrev    bool  `json:"hasPrev"`
	HasNext    bool  `json:"hasNext"`
}

func (p Page) Meta(total int64) Meta {
	pages := int((total + int64(p.Size) - 1) / int64(p.Size))
	return Meta{
		Page:       p.Page,
		Size:       p.Size,
		Total:      total,
		TotalPages: pages,
		HasPrev:    p.Page > 1,
		HasNext:    p.Page < pages,
	}
}
