// Package editor содержит модель экрана редактирования метаданных набора для TUI
package editor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-songselect/internal/data"
	"github.com/hazadus/go-songselect/internal/library"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(15)
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Margin(1, 0)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Margin(1, 0)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
)

// SetSavedMsg отправляется, когда набор сохранен в библиотеке
type SetSavedMsg struct {
	Set data.BeatmapSet
}

// GoBackMsg отправляется при выходе из редактора
type GoBackMsg struct{}

// fieldType определяет тип поля для редактирования
type fieldType int

const (
	artistField fieldType = iota
	titleField
	authorField
	sourceField
	tagsField
	previewTimeField
	numFields
)

var labels = []string{"Исполнитель:", "Название:", "Автор:", "Источник:", "Теги:", "Превью (мс):"}

// Model представляет модель экрана редактирования набора
type Model struct {
	library     *library.Manager
	originalSet data.BeatmapSet
	inputs      []textinput.Model
	focusIndex  int
	err         string
	success     string
	saveFunc    func() error // Функция для сохранения данных в файл
}

// NewModel создает новую модель редактора набора
func NewModel(lib *library.Manager, set data.BeatmapSet, saveFunc func() error) *Model {
	inputs := make([]textinput.Model, numFields)

	values := []string{
		set.Metadata.Artist,
		set.Metadata.Title,
		set.Metadata.Author,
		set.Metadata.Source,
		set.Metadata.Tags,
		strconv.Itoa(set.Metadata.PreviewTime),
	}
	placeholders := []string{
		"Введите исполнителя",
		"Введите название",
		"Автор карты",
		"Игра, аниме, альбом",
		"Теги через пробел",
		"-1, если не задано",
	}

	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholders[i]
		inputs[i].SetValue(values[i])
		inputs[i].PromptStyle = blurredStyle
		inputs[i].TextStyle = blurredStyle
	}
	inputs[artistField].Focus()
	inputs[artistField].PromptStyle = focusedStyle
	inputs[artistField].TextStyle = focusedStyle

	return &Model{
		library:     lib,
		originalSet: set,
		inputs:      inputs,
		saveFunc:    saveFunc,
	}
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, func() tea.Msg {
				return GoBackMsg{}
			}

		case "ctrl+s":
			return m, m.saveSet()

		case "tab", "shift+tab", "enter", "up", "down":
			s := msg.String()

			if s == "enter" && m.focusIndex == len(m.inputs) {
				return m, m.saveSet()
			}

			if s == "up" || s == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}

			if m.focusIndex > len(m.inputs) {
				m.focusIndex = 0
			} else if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs)
			}

			cmds := make([]tea.Cmd, len(m.inputs))
			for i := 0; i < len(m.inputs); i++ {
				if i == m.focusIndex {
					cmds[i] = m.inputs[i].Focus()
					m.inputs[i].PromptStyle = focusedStyle
					m.inputs[i].TextStyle = focusedStyle
				} else {
					m.inputs[i].Blur()
					m.inputs[i].PromptStyle = blurredStyle
					m.inputs[i].TextStyle = blurredStyle
				}
			}

			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		for i := range m.inputs {
			m.inputs[i].Width = msg.Width - 20
		}
		return m, nil
	}

	if m.focusIndex < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		return m, cmd
	}

	return m, nil
}

// saveSet проверяет поля и сохраняет набор. Библиотека меняется здесь же,
// в цикле обновления, наружу уходят только сообщения
func (m *Model) saveSet() tea.Cmd {
	value := func(f fieldType) string {
		return strings.TrimSpace(m.inputs[f].Value())
	}

	previewTime, err := strconv.Atoi(value(previewTimeField))
	if err != nil || previewTime < -1 {
		m.fail("Время превью должно быть числом не меньше -1")
		return nil
	}

	updated := *m.originalSet.Clone()
	updated.Metadata.Artist = value(artistField)
	updated.Metadata.Title = value(titleField)
	updated.Metadata.Author = value(authorField)
	updated.Metadata.Source = value(sourceField)
	updated.Metadata.Tags = value(tagsField)
	updated.Metadata.PreviewTime = previewTime

	if err := m.library.Update(updated); err != nil {
		if errors.Is(err, library.ErrMalformed) {
			m.fail(fmt.Sprintf("Набор не сохранен: %v", err))
		} else {
			m.fail(fmt.Sprintf("Ошибка обновления набора: %v", err))
		}
		return nil
	}

	if m.saveFunc != nil {
		if err := m.saveFunc(); err != nil {
			m.fail(fmt.Sprintf("Ошибка сохранения в файл: %v", err))
			return nil
		}
	}

	m.err = ""
	m.success = "Набор успешно сохранен!"
	m.originalSet = updated

	return tea.Batch(
		func() tea.Msg {
			return SetSavedMsg{Set: updated}
		},
		// Возвращаемся к выбору песни через небольшую задержку
		tea.Tick(time.Second, func(time.Time) tea.Msg {
			return GoBackMsg{}
		}),
	)
}

func (m *Model) fail(msg string) {
	m.err = msg
	m.success = ""
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Редактирование набора #%d", m.originalSet.ID)))
	b.WriteString("\n\n")

	for i, input := range m.inputs {
		b.WriteString(labelStyle.Render(labels[i]))
		b.WriteString(" ")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	saveButton := "[ Сохранить ]"
	if m.focusIndex == len(m.inputs) {
		saveButton = focusedStyle.Render(saveButton)
	} else {
		saveButton = blurredStyle.Render(saveButton)
	}
	b.WriteString(saveButton)
	b.WriteString("\n\n")

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}

	if m.success != "" {
		b.WriteString(successStyle.Render(m.success))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("Tab/Enter: следующее поле • Shift+Tab: предыдущее поле"))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("Ctrl+S: сохранить • Esc: отмена"))

	return b.String()
}
