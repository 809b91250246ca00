package db

const (
	DEFAULTPAGE                  = 1
	DEFAULTLIMIT                 = 10
	MAXLIMIT                     = 100
	PageDefaultSortBy            = "repo_starred_at"
	PageDefaultSortDirectionDesc = "desc"
)

// sortable guards the ORDER BY clause against arbitrary input.
var sortable = map[string]bool{
	"repo_starred_at": true,
	"repo_pushed_at":  true,
	"stars":           true,
	"full_name":       true,
}

type ListQuery struct {
	Page      int
	Limit     int
	Sort      string
	Direction string
	Language  string
}

type PagingInfo struct {
	TotalCount  int64 `json:"total_count"`
	HasNextPage bool  `json:"has_next_page"`
	Page        int   `json:"page"`
}

func getPaginationInfo(query ListQuery) (ListQuery, int) {
	var offset int
	// load defaults
	if query.Page <= 0 {
		query.Page = DEFAULTPAGE
	}
	if query.Limit <= 0 {
		query.Limit = DEFAULTLIMIT
	}
	if query.Limit > MAXLIMIT {
		query.Limit = MAXLIMIT
	}

	if !sortable[query.Sort] {
		query.Sort = PageDefaultSortBy
	}

	if query.Direction != "asc" {
		query.Direction = PageDefaultSortDirectionDesc
	}

	if query.Page > 1 {
		offset = query.Limit * (query.Page - 1)
	}
	return query, offset
}

func getPagingInfo(query ListQuery, count int) PagingInfo {
	var hasNextPage bool

	next := int64((query.Page * query.Limit) - count)
	if next < 0 {
		hasNextPage = true
	}

	return PagingInfo{
		TotalCount:  int64(count),
		HasNextPage: hasNextPage,
		Page:        query.Page,
	}
}
