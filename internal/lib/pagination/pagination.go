// Package pagination реализует постраничную выдачу по номеру страницы.
// Страница запрашивается параметром ?page=N, ответ содержит общее число
// записей и ссылки на соседние страницы.
package pagination

import (
	"net/http"
	"strconv"
)

// DefaultPageSize — размер страницы по умолчанию.
const DefaultPageSize = 10

// Page — одна страница результата с маркерами навигации.
type Page struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// ParsePage извлекает номер страницы из запроса. Невалидное или
// отсутствующее значение трактуется как первая страница.
func ParsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}
	return page
}

// Offset возвращает смещение для страницы page при размере size.
func Offset(page, size int) int {
	return (page - 1) * size
}

// New собирает страницу результата. Ссылки next/previous строятся из URL
// исходного запроса подстановкой параметра page.
func New(r *http.Request, count, page, size int, results any) Page {
	p := Page{
		Count:   count,
		Results: results,
	}
	if page*size < count {
		next := pageURL(r, page+1)
		p.Next = &next
	}
	if page > 1 {
		prev := pageURL(r, page-1)
		p.Previous = &prev
	}
	return p
}

func pageURL(r *http.Request, page int) string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
