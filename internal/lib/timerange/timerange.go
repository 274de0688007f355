// Package timerange содержит чистые функции для проверок временных
// интервалов слотов: пересечение полуоткрытых интервалов, кратность часу
// и сравнение календарных дат.
package timerange

import "time"

// Overlaps сообщает, пересекаются ли полуоткрытые интервалы
// [aStart, aEnd) и [bStart, bEnd): aStart < bEnd && bStart < aEnd.
// Смежные интервалы (конец одного равен началу другого) не пересекаются.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// OnTheHour сообщает, что время кратно часу (минутная компонента равна нулю).
func OnTheHour(t time.Time) bool {
	return t.Minute() == 0
}

// DateAfter сообщает, что календарная дата t строго позже календарной даты ref.
// Сравниваются только даты, время внутри суток не учитывается.
func DateAfter(t, ref time.Time) bool {
	ty, tm, td := t.Date()
	ry, rm, rd := ref.Date()
	if ty != ry {
		return ty > ry
	}
	if tm != rm {
		return tm > rm
	}
	return td > rd
}

// SameDate сообщает, что a и b приходятся на одну календарную дату.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
