// Package markdown отображает описания наборов в терминале. Разметку разбирает
// glamour, здесь только раскрываются пользовательские вставки вида
// ::{flag="JP"}:: в эмодзи флагов.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
)

// UnknownFlag подставляется вместо неизвестного кода страны
const UnknownFlag = "🏳"

var customContainer = regexp.MustCompile(`::\{([^}]*)\}::`)

// Renderer отображает Markdown с заданной шириной строки
type Renderer struct {
	term *glamour.TermRenderer
}

// NewRenderer создает рендерер. width <= 0 отключает перенос строк
func NewRenderer(width int) (*Renderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	term, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания рендерера Markdown: %w", err)
	}
	return &Renderer{term: term}, nil
}

// Render отображает текст Markdown
func (r *Renderer) Render(md string) (string, error) {
	out, err := r.term.Render(ExpandCustomContainers(md))
	if err != nil {
		return "", fmt.Errorf("ошибка отображения Markdown: %w", err)
	}
	return out, nil
}

// ExpandCustomContainers заменяет вставки ::{...}:: вне блоков кода. Вставка
// с атрибутом flag становится флагом, остальные заменяются своим содержимым
func ExpandCustomContainers(md string) string {
	lines := strings.Split(md, "\n")
	fenced := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fenced = !fenced
			continue
		}
		if fenced {
			continue
		}
		lines[i] = expandLine(line)
	}
	return strings.Join(lines, "\n")
}

// expandLine обрабатывает строку, пропуская встроенный код в обратных кавычках
func expandLine(line string) string {
	parts := strings.Split(line, "`")
	for i := 0; i < len(parts); i += 2 {
		parts[i] = customContainer.ReplaceAllStringFunc(parts[i], func(m string) string {
			inner := customContainer.FindStringSubmatch(m)[1]
			if code, ok := flagAttribute(inner); ok {
				return Flag(code)
			}
			return strings.TrimSpace(inner)
		})
	}
	return strings.Join(parts, "`")
}

func flagAttribute(attrs string) (string, bool) {
	for _, a := range strings.Fields(attrs) {
		if strings.HasPrefix(a, "flag") {
			kv := strings.Split(a, "=")
			return strings.Trim(kv[len(kv)-1], `"`), true
		}
	}
	return "", false
}

// Flag возвращает эмодзи флага по двухбуквенному коду страны
func Flag(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return UnknownFlag
	}

	var b strings.Builder
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return UnknownFlag
		}
		b.WriteRune(0x1F1E6 + (c - 'A'))
	}
	return b.String()
}
