// Package clock предоставляет инжектируемый источник текущего времени.
// Проверки "дата в будущем" зависят от настенных часов процесса,
// поэтому сервисы получают Clock, а тесты подставляют фиксированное время.
package clock

import "time"

// Clock возвращает текущее время.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System возвращает часы на основе time.Now.
func System() Clock { return systemClock{} }

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time { return f.t }

// Fixed возвращает часы, всегда показывающие t. Используется в тестах.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }
