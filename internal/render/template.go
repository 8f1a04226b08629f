package render

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Токены-плейсхолдеры, которые обязан содержать SVG-шаблон бейджа.
const (
	// TokenFill заменяется акцентным цветом бейджа.
	TokenFill = "{{FILL}}"
	// TokenViews заменяется разметкой цифр счётчика.
	TokenViews = "{{VIEWS}}"
)

// ErrMalformedTemplate возвращается, когда шаблон не содержит обязательный
// токен или содержит его более одного раза. Это фатальная ошибка конфигурации,
// она выявляется при загрузке шаблона, а не при обработке запроса.
var ErrMalformedTemplate = errors.New("malformed template")

// Template — разобранный SVG-шаблон бейджа.
//
// Шаблон разбивается на три статических сегмента по токенам при загрузке
// и далее не изменяется, поэтому безопасен для конкурентного чтения.
type Template struct {
	segments  [3]string
	fillFirst bool // TokenFill стоит в документе раньше TokenViews
}

// Parse разбирает документ шаблона и проверяет плейсхолдеры.
//
// Каждый из токенов TokenFill и TokenViews должен встречаться ровно один раз.
// Возвращает ErrMalformedTemplate при нарушении.
func Parse(doc string) (*Template, error) {
	for _, token := range []string{TokenFill, TokenViews} {
		switch strings.Count(doc, token) {
		case 0:
			return nil, fmt.Errorf("%w: missing token %s", ErrMalformedTemplate, token)
		case 1:
		default:
			return nil, fmt.Errorf("%w: duplicated token %s", ErrMalformedTemplate, token)
		}
	}

	first, second := TokenFill, TokenViews
	fillFirst := strings.Index(doc, TokenFill) < strings.Index(doc, TokenViews)
	if !fillFirst {
		first, second = TokenViews, TokenFill
	}

	head, rest, _ := strings.Cut(doc, first)
	mid, tail, _ := strings.Cut(rest, second)

	return &Template{
		segments:  [3]string{head, mid, tail},
		fillFirst: fillFirst,
	}, nil
}

// ParseFile загружает и разбирает шаблон из файла по пути path.
func ParseFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	return Parse(string(data))
}

// expand подставляет значения токенов в статические сегменты шаблона.
func (t *Template) expand(b *strings.Builder, fill, views string) {
	first, second := fill, views
	if !t.fillFirst {
		first, second = views, fill
	}
	b.WriteString(t.segments[0])
	b.WriteString(first)
	b.WriteString(t.segments[1])
	b.WriteString(second)
	b.WriteString(t.segments[2])
}
