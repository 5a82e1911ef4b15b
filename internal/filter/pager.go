package filter

import "github.com/rLg1290/7crm-sub003/internal/models"

const PageSize = 10

type Page struct {
	Items      []models.PricedLine `json:"items"`
	Number     int                 `json:"page"`
	TotalPages int                 `json:"total_pages"`
	TotalItems int                 `json:"total_items"`
}

// Paginate clamps page into [1, TotalPages]. An empty list has one empty page.
func Paginate(lines []models.PricedLine, page int) Page {
	total := (len(lines) + PageSize - 1) / PageSize
	if total == 0 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(lines) {
		end = len(lines)
	}

	return Page{
		Items:      lines[start:end],
		Number:     page,
		TotalPages: total,
		TotalItems: len(lines),
	}
}

// Pager is the page cursor of one list. It jumps back to page 1 whenever
// the list it is paging changes length.
type Pager struct {
	page    int
	lastLen int
	seen    bool
}

func (p *Pager) Current() int {
	if p.page < 1 {
		return 1
	}
	return p.page
}

func (p *Pager) Set(page int) {
	if page < 1 {
		page = 1
	}
	p.page = page
}

func (p *Pager) Reset() {
	*p = Pager{}
}

// Sync resets the cursor to page 1 when n differs from the last length seen.
func (p *Pager) Sync(n int) {
	if p.seen && n != p.lastLen {
		p.page = 1
	}
	p.lastLen = n
	p.seen = true
}

// Page syncs the cursor with lines, moves it to requested when that is
// positive, and returns the current page.
func (p *Pager) Page(lines []models.PricedLine, requested int) Page {
	p.Sync(len(lines))
	if requested > 0 {
		p.Set(requested)
	}
	page := Paginate(lines, p.Current())
	p.page = page.Number
	return page
}
