package sla

import (
	"sort"
	"time"

	"github.com/rickar/cal/v2"

	"github.com/fluxdesk/helpdesk-sla/internal/domain"
)

// GeneratedHoliday is one holiday produced for a calendar year, ready to be
// persisted through the holiday repository.
type GeneratedHoliday struct {
	Date      time.Time
	Name      string
	Kind      domain.HolidayKind
	Recurring bool
}

type holidayDef struct {
	def       *cal.Holiday
	kind      domain.HolidayKind
	recurring bool
}

// Brazilian national holidays with a fixed month/day, plus the customary
// optional days (pontos facultativos).
var fixedHolidays = []holidayDef{
	{def: &cal.Holiday{Name: "Confraternização Universal", Month: time.January, Day: 1, Func: cal.CalcDayOfMonth}, kind: domain.HolidayNational, recurring: true},
	{def: &cal.Holiday{Name: "Tiradentes", Month: time.April, Day: 21, Func: cal.CalcDayOfMonth}, kind: domain.HolidayNational, recurring: true},
	{def: &cal.Holiday{Name: "Dia do Trabalho", Month: time.May, Day: 1, Func: cal.CalcDayOfMonth}, kind: domain.HolidayNational, recurring: true},
	{def: &cal.Holiday{Name: "Independência do Brasil", Month: time.September, Day: 7, Func: cal.CalcDayOfMonth}, kind: domain.HolidayNational, recurring: true},
	{def: &cal.Holiday{Name: "Nossa Senhora Aparecida", Month: time.October, Day: 12, Func: cal.CalcDayOfMonth}, kind: domain.HolidayNational, recurring: true},
	{def: &cal.Holiday{Name: "Finados", Month: time.November, Day: 2, Func: cal.CalcDayOfMonth}, kind: domain.HolidayNational, recurring: true},
	{def: &cal.Holiday{Name: "Proclamação da República", Month: time.November, Day: 15, Func: cal.CalcDayOfMonth}, kind: domain.HolidayNational, recurring: true},
	{def: &cal.Holiday{Name: "Dia da Consciência Negra", Month: time.November, Day: 20, Func: cal.CalcDayOfMonth}, kind: domain.HolidayNational, recurring: true},
	{def: &cal.Holiday{Name: "Natal", Month: time.December, Day: 25, Func: cal.CalcDayOfMonth}, kind: domain.HolidayNational, recurring: true},
	{def: &cal.Holiday{Name: "Dia do Servidor Público", Month: time.October, Day: 28, Func: cal.CalcDayOfMonth}, kind: domain.HolidayOptional, recurring: true},
	{def: &cal.Holiday{Name: "Véspera de Natal", Month: time.December, Day: 24, Func: cal.CalcDayOfMonth}, kind: domain.HolidayOptional, recurring: true},
	{def: &cal.Holiday{Name: "Véspera de Ano Novo", Month: time.December, Day: 31, Func: cal.CalcDayOfMonth}, kind: domain.HolidayOptional, recurring: true},
}

// Movable feasts relative to Easter Sunday. These are one-off rows: the date
// changes every year.
var easterHolidays = []holidayDef{
	{def: &cal.Holiday{Name: "Domingo de Carnaval", Offset: -49, Func: cal.CalcEasterOffset}, kind: domain.HolidayOptional},
	{def: &cal.Holiday{Name: "Segunda-feira de Carnaval", Offset: -48, Func: cal.CalcEasterOffset}, kind: domain.HolidayOptional},
	{def: &cal.Holiday{Name: "Terça-feira de Carnaval", Offset: -47, Func: cal.CalcEasterOffset}, kind: domain.HolidayOptional},
	{def: &cal.Holiday{Name: "Quarta-feira de Cinzas", Offset: -46, Func: cal.CalcEasterOffset}, kind: domain.HolidayOptional},
	{def: &cal.Holiday{Name: "Sexta-feira Santa", Offset: -2, Func: cal.CalcEasterOffset}, kind: domain.HolidayNational},
	{def: &cal.Holiday{Name: "Páscoa", Offset: 0, Func: cal.CalcEasterOffset}, kind: domain.HolidayNational},
	{def: &cal.Holiday{Name: "Corpus Christi", Offset: 60, Func: cal.CalcEasterOffset}, kind: domain.HolidayOptional},
}

// GenerateHolidays produces the full holiday set (fixed + movable) for a
// year, sorted by date.
func GenerateHolidays(year int) []GeneratedHoliday {
	out := make([]GeneratedHoliday, 0, len(fixedHolidays)+len(easterHolidays))
	for _, h := range fixedHolidays {
		actual, _ := h.def.Calc(year)
		out = append(out, GeneratedHoliday{
			Date:      actual,
			Name:      h.def.Name,
			Kind:      h.kind,
			Recurring: h.recurring,
		})
	}
	for _, h := range easterHolidays {
		actual, _ := h.def.Calc(year)
		out = append(out, GeneratedHoliday{
			Date: actual,
			Name: h.def.Name,
			Kind: h.kind,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// GenerateHolidayRange produces holidays for every year in [from, to],
// inclusive.
func GenerateHolidayRange(from, to int) []GeneratedHoliday {
	var out []GeneratedHoliday
	for year := from; year <= to; year++ {
		out = append(out, GenerateHolidays(year)...)
	}
	return out
}
