// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков. Все конечные точки отвечают
// одним конвертом: {status, msg, data}, где status повторяет HTTP-код ответа.
package response

import "github.com/magabrotheeeer/online-class-book/internal/models"

// Response описывает стандартную структуру JSON-ответа сервера.
// Поле Status — HTTP-код результата, Msg — человекочитаемое сообщение или
// структура ошибок валидации по полям, Data — полезная нагрузка.
type Response struct {
	Status int `json:"status"`
	Msg    any `json:"msg"`
	Data   any `json:"data"`
}

// New возвращает Response с заданным кодом, сообщением и данными.
// nil вместо данных заменяется пустым объектом, чтобы data всегда
// присутствовала в ответе.
func New(status int, msg, data any) Response {
	if data == nil {
		data = map[string]any{}
	}
	return Response{
		Status: status,
		Msg:    msg,
		Data:   data,
	}
}

// OK возвращает успешный Response с кодом 200.
func OK(msg, data any) Response {
	return New(200, msg, data)
}

// Created возвращает успешный Response с кодом 201.
func Created(msg, data any) Response {
	return New(201, msg, data)
}

// Err возвращает Response с ошибкой и пустыми данными.
func Err(status int, msg any) Response {
	return New(status, msg, nil)
}

// FieldErrors возвращает Response с кодом 400 и ошибками валидации по полям.
func FieldErrors(errs models.FieldErrors) Response {
	return New(400, errs, nil)
}
