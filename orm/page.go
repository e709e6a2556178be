package orm

// Page 分页参数，pageIndex 从 1 开始
// 总数为 0 或页码越界时 Offset、Limit 均为 0，页码回到 1
type Page struct {
	ItemCount int `json:"itemCount"`
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Offset    int `json:"offset"`
	Limit     int `json:"limit"`
}

func NewPage(itemCount int, pageIndex int, pageSize int) *Page {
	if pageIndex <= 0 {
		pageIndex = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	p := &Page{
		ItemCount: itemCount,
		PageIndex: pageIndex,
		PageSize:  pageSize,
		PageCount: itemCount / pageSize,
	}
	if itemCount%pageSize > 0 {
		p.PageCount++
	}

	if itemCount <= 0 || pageIndex > p.PageCount {
		p.PageIndex = 1
		return p
	}
	p.Offset = pageSize * (pageIndex - 1)
	p.Limit = pageSize
	return p
}

func (p *Page) HasNext() bool {
	return p.PageIndex < p.PageCount
}

func (p *Page) HasPrevious() bool {
	return p.PageIndex > 1
}
