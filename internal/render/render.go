package render

import (
	"strconv"
	"strings"

	"github.com/RoGogDBD/profile-views/internal/palette"
	"github.com/RoGogDBD/profile-views/pkg/pool"
)

// FillMode определяет способ выбора акцентного цвета бейджа.
type FillMode string

const (
	// FillMilestone — детерминированный цвет по количеству просмотров.
	FillMilestone FillMode = "milestone"
	// FillRandom — случайный цвет палитры на каждый запрос.
	FillRandom FillMode = "random"
)

// ParseFillMode разбирает значение query-параметра fill_mode.
// Пустое или неизвестное значение трактуется как FillMilestone.
func ParseFillMode(s string) FillMode {
	if FillMode(strings.ToLower(s)) == FillRandom {
		return FillRandom
	}
	return FillMilestone
}

// Renderer собирает SVG-бейдж из шаблона, счётчика и палитры.
//
// После создания не имеет изменяемого состояния, кроме пула буферов,
// поэтому безопасен для конкурентного использования.
type Renderer struct {
	tmpl     *Template
	pal      *palette.Palette
	builders *pool.Pool[*strings.Builder]
}

// NewRenderer создаёт Renderer поверх разобранного шаблона и палитры.
func NewRenderer(tmpl *Template, pal *palette.Palette) *Renderer {
	return &Renderer{
		tmpl: tmpl,
		pal:  pal,
		builders: pool.New(func() *strings.Builder {
			return &strings.Builder{}
		}),
	}
}

// Render возвращает готовый SVG-документ для количества просмотров views.
//
// Акцентный цвет выбирается по milestone-схеме, цвет каждой цифры — по её
// позиции слева направо. Повторный вызов с тем же views даёт байт-в-байт
// идентичный результат.
func (r *Renderer) Render(views uint64) []byte {
	return r.RenderMode(views, FillMilestone)
}

// RenderMode собирает бейдж с указанным способом выбора акцентного цвета.
func (r *Renderer) RenderMode(views uint64, mode FillMode) []byte {
	fill := "#" + r.pal.ColorForViews(views)
	if mode == FillRandom {
		fill = "#" + r.pal.Random()
	}

	b := r.builders.Get()
	defer r.builders.Put(b)

	r.tmpl.expand(b, fill, r.digitMarkup(views))
	return []byte(b.String())
}

// digitMarkup превращает счётчик в последовательность tspan-глифов,
// каждая цифра окрашена цветом своей позиции.
func (r *Renderer) digitMarkup(views uint64) string {
	digits := strconv.FormatUint(views, 10)

	b := r.builders.Get()
	defer r.builders.Put(b)

	for i := 0; i < len(digits); i++ {
		b.WriteString(`<tspan fill="#`)
		b.WriteString(r.pal.ColorFor(uint64(i)))
		b.WriteString(`">`)
		b.WriteByte(digits[i])
		b.WriteString(`</tspan>`)
	}
	return b.String()
}
