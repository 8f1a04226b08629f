package palette

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
)

// ErrEmptyPalette возвращается, когда источник палитры не содержит ни одного цвета.
// Это фатальная ошибка конфигурации: сервер не должен стартовать без палитры.
var ErrEmptyPalette = errors.New("empty palette")

// DefaultMaxViews — количество просмотров, при котором milestone-цвет
// достигает последнего цвета палитры.
const DefaultMaxViews uint64 = 10400

// Palette — упорядоченный список цветов для раскраски бейджа.
//
// Загружается один раз при старте и далее только читается,
// поэтому не требует синхронизации.
//
// Поля:
//   - colors: список цветов (hex-строки без решётки)
//   - maxViews: потолок просмотров для milestone-интерполяции
type Palette struct {
	colors   []string
	maxViews uint64
}

// Load читает палитру из r: один цвет на строку, пустые строки пропускаются.
//
// maxViews — потолок для ColorForViews; 0 заменяется на DefaultMaxViews.
//
// Возвращает ErrEmptyPalette, если не найдено ни одного цвета.
func Load(r io.Reader, maxViews uint64) (*Palette, error) {
	if maxViews == 0 {
		maxViews = DefaultMaxViews
	}

	var colors []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		colors = append(colors, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read palette: %w", err)
	}
	if len(colors) == 0 {
		return nil, ErrEmptyPalette
	}

	return &Palette{colors: colors, maxViews: maxViews}, nil
}

// LoadFile загружает палитру из файла по пути path.
//
// Возвращает ошибку чтения файла или ErrEmptyPalette.
func LoadFile(path string, maxViews uint64) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open palette file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f, maxViews)
}

// Len возвращает количество цветов в палитре.
func (p *Palette) Len() int {
	return len(p.colors)
}

// ColorFor возвращает цвет по индексу с закольцовыванием: palette[index mod len].
// Тотальная функция, после загрузки палитры не может завершиться ошибкой.
func (p *Palette) ColorFor(index uint64) string {
	return p.colors[index%uint64(len(p.colors))]
}

// ColorForViews возвращает milestone-цвет для количества просмотров:
// линейная интерполяция views на индексы палитры, с потолком maxViews.
func (p *Palette) ColorForViews(views uint64) string {
	if views > p.maxViews {
		views = p.maxViews
	}
	ratio := float64(len(p.colors)-1) / float64(p.maxViews)
	idx := int(float64(views) * ratio)
	return p.colors[idx]
}

// Random возвращает случайный цвет палитры.
func (p *Palette) Random() string {
	return p.colors[rand.Intn(len(p.colors))]
}
