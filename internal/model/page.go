package model

type PaginatedResponse[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// TotalPages is ceil(total/size); a non-positive size yields zero pages.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

func NewPage[T any](content []T, page, size int, total int64) PaginatedResponse[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := TotalPages(total, size)
	return PaginatedResponse[T]{
		Content:       content,
		PageNumber:    page,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}
}

// SlicePage cuts one page out of the full list.
func SlicePage[T any](all []T, page, size int) PaginatedResponse[T] {
	total := int64(len(all))
	if size <= 0 || page < 0 {
		return NewPage([]T{}, page, size, total)
	}
	start := int64(page) * int64(size)
	if start >= total {
		return NewPage([]T{}, page, size, total)
	}
	end := min(start+int64(size), total)
	content := make([]T, end-start)
	copy(content, all[start:end])
	return NewPage(content, page, size, total)
}
