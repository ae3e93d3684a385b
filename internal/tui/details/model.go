// Package details содержит экран описания набора для TUI
package details

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-songselect/internal/data"
	"github.com/hazadus/go-songselect/internal/markdown"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginLeft(2)
)

// GoBackMsg отправляется для возврата к выбору песни
type GoBackMsg struct{}

// Model экран с метаданными, сложностями и описанием набора
type Model struct {
	set      data.BeatmapSet
	viewport viewport.Model
	err      error
	width    int
}

// NewModel создает экран описания набора
func NewModel(set data.BeatmapSet) *Model {
	m := &Model{
		set:      set,
		viewport: viewport.New(80, 20),
		width:    80,
	}
	m.render()
	return m
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// render заново отображает документ под текущую ширину
func (m *Model) render() {
	doc := markdown.SetDocument(&m.set)

	renderer, err := markdown.NewRenderer(m.width - 4)
	if err == nil {
		var out string
		if out, err = renderer.Render(doc); err == nil {
			doc = out
		}
	}
	// Без рендерера показываем исходный Markdown
	m.err = err
	m.viewport.SetContent(doc)
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.render()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "i":
			return m, func() tea.Msg {
				return GoBackMsg{}
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("📖 %s - %s", m.set.Metadata.Artist, m.set.Metadata.Title)))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("↑/↓: прокрутка • %3.f%% • q/esc: назад", m.viewport.ScrollPercent()*100)))
	return b.String()
}
