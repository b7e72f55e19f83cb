package util

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*size inside int for every allowed size.
	MaxPage = math.MaxInt / MaxPageSize
)

// ClampPage bounds page to [1, MaxPage].
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

func Calculate(page, size int) (offset, limit int) {
	page = ClampPage(page)
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}

// Pages is ceil(total/size).
func Pages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

func ParseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
