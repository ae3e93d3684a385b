// Package songselect содержит модель экрана выбора песни для TUI
package songselect

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-songselect/internal/carousel"
	"github.com/hazadus/go-songselect/internal/data"
	"github.com/hazadus/go-songselect/internal/filter"
	"github.com/hazadus/go-songselect/internal/ruleset"
	"github.com/hazadus/go-songselect/internal/utils"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	placeholderStyle  = lipgloss.NewStyle().Margin(1, 0, 1, 4).Foreground(lipgloss.Color("241"))
	statusStyle       = lipgloss.NewStyle().MarginLeft(2).Foreground(lipgloss.Color("205"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	quitTextStyle     = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

// PreviewMsg отправляется для прослушивания превью выбранной карты
type PreviewMsg struct {
	Set     data.BeatmapSet
	Beatmap data.Beatmap
}

// DetailsMsg отправляется для просмотра описания набора
type DetailsMsg struct {
	Set data.BeatmapSet
}

// EditMsg отправляется для редактирования метаданных набора
type EditMsg struct {
	Set data.BeatmapSet
}

// DeleteMsg отправляется для удаления набора
type DeleteMsg struct {
	Set data.BeatmapSet
}

// DeleteAllMsg отправляется для очистки библиотеки
type DeleteAllMsg struct{}

// ScanMsg отправляется для поиска новых наборов в папке песен
type ScanMsg struct{}

// beatmapItem строка списка: одна сложность видимой группы
type beatmapItem struct {
	set     *data.BeatmapSet
	beatmap *data.Beatmap
	first   bool // Первая сложность группы
}

func (i beatmapItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s", i.set.Metadata.Artist, i.set.Metadata.Title, i.beatmap.Version)
}

// beatmapItemDelegate реализует отображение элементов списка
type beatmapItemDelegate struct{}

func (d beatmapItemDelegate) Height() int                             { return 1 }
func (d beatmapItemDelegate) Spacing() int                            { return 0 }
func (d beatmapItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d beatmapItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(beatmapItem)
	if !ok {
		return
	}

	// Название набора выводится только в строке его первой сложности
	label := ""
	if i.first {
		label = utils.TruncateString(fmt.Sprintf("%s - %s", i.set.Metadata.Artist, i.set.Metadata.Title), 44)
	}
	str := fmt.Sprintf("%-44s %-6s %-24s %s",
		label,
		i.beatmap.Ruleset,
		utils.TruncateString(i.beatmap.Version, 24),
		utils.FormatDifficulty(i.beatmap.Difficulty.OverallDifficulty))

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет модель экрана выбора песни. Список только отображает
// видимые группы карусели, выбор всегда хранится в карусели
type Model struct {
	carousel *carousel.Carousel
	list     list.Model
	search   textinput.Model

	searching        bool
	confirmDeleteAll bool
	status           string
	quitting         bool
}

// NewModel создает новую модель экрана выбора песни
func NewModel(car *carousel.Carousel) *Model {
	l := list.New(nil, beatmapItemDelegate{}, 0, 0)
	l.Title = "Выбор песни"
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	search := textinput.New()
	search.Placeholder = "исполнитель, название, автор, теги..."
	search.Prompt = "🔍 "
	search.SetValue(car.Criteria().SearchText)

	m := &Model{
		carousel: car,
		list:     l,
		search:   search,
	}
	m.Refresh()
	return m
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// SetStatus задает строку состояния под списком
func (m *Model) SetStatus(status string) {
	m.status = status
}

// Status возвращает строку состояния
func (m *Model) Status() string {
	return m.status
}

// Refresh перестраивает список по видимым группам карусели и переносит
// курсор на текущую карту
func (m *Model) Refresh() {
	var items []list.Item
	selected := -1
	current := m.carousel.Current()

	for _, group := range m.carousel.Visible() {
		for j, b := range group.Beatmaps {
			if !m.carousel.IsDefault() && b == current.Beatmap {
				selected = len(items)
			}
			items = append(items, beatmapItem{set: group.Set, beatmap: b, first: j == 0})
		}
	}

	m.list.SetItems(items)
	if selected >= 0 {
		m.list.Select(selected)
	}
	m.list.Title = fmt.Sprintf("Выбор песни • сортировка: %s • режим: %s%s",
		m.carousel.Sort(), m.carousel.Criteria().Ruleset, convertsLabel(m.carousel.Criteria()))
}

func convertsLabel(c filter.Criteria) string {
	if c.AllowConverts {
		return " (+конверты)"
	}
	return ""
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 6) // Оставляем место для поиска и справки
		m.search.Width = msg.Width - 10
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) updateSearch(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.applySearch()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.applySearch()
	}
	return m, cmd
}

func (m *Model) applySearch() {
	criteria := m.carousel.Criteria()
	criteria.SearchText = m.search.Value()
	m.carousel.SetFilter(criteria)
	m.Refresh()
}

func (m *Model) handleKey(msg tea.KeyMsg) (*Model, tea.Cmd) {
	key := msg.String()
	if key != "ctrl+d" {
		m.confirmDeleteAll = false
	}

	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "down", "j":
		m.carousel.SelectNext()
	case "up", "k":
		m.carousel.SelectPrevious()
	case "right", "l", "pgdown":
		m.carousel.SelectNextSet()
	case "left", "h", "pgup":
		m.carousel.SelectPreviousSet()
	case "r":
		m.carousel.SelectRandom()

	case "s":
		m.carousel.SetSort((m.carousel.Sort() + 1) % (filter.SortDifficulty + 1))
	case "m":
		criteria := m.carousel.Criteria()
		all := ruleset.All()
		criteria.Ruleset = all[(int(criteria.Ruleset)+1)%len(all)]
		m.carousel.SetFilter(criteria)
	case "c":
		criteria := m.carousel.Criteria()
		criteria.AllowConverts = !criteria.AllowConverts
		m.carousel.SetFilter(criteria)

	case "/":
		m.searching = true
		return m, m.search.Focus()

	case "ctrl+r":
		m.status = "Поиск новых наборов..."
		return m, send(ScanMsg{})

	case "ctrl+d":
		if m.carousel.Len() == 0 {
			return m, nil
		}
		if !m.confirmDeleteAll {
			m.confirmDeleteAll = true
			m.status = "Нажмите ctrl+d еще раз, чтобы удалить все наборы"
			return m, nil
		}
		m.confirmDeleteAll = false
		return m, send(DeleteAllMsg{})

	case "enter", " ", "i", "e", "d":
		if m.carousel.IsDefault() {
			m.status = "Нет выбранной карты"
			return m, nil
		}
		current := m.carousel.Current()
		set := *current.Set.Clone()
		switch key {
		case "i":
			return m, send(DetailsMsg{Set: set})
		case "e":
			return m, send(EditMsg{Set: set})
		case "d":
			return m, send(DeleteMsg{Set: set})
		default:
			return m, send(PreviewMsg{Set: set, Beatmap: *current.Beatmap})
		}

	default:
		return m, nil
	}

	m.Refresh()
	return m, nil
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// View отображает модель
func (m *Model) View() string {
	if m.quitting {
		return quitTextStyle.Render("До свидания!")
	}

	var b strings.Builder
	if m.carousel.IsDefault() {
		def := m.carousel.Default().Set
		b.WriteString(titleStyle.Render(m.list.Title))
		b.WriteString("\n")
		b.WriteString(placeholderStyle.Render(fmt.Sprintf("%s\n%s", def.Metadata.Title, def.Metadata.Artist)))
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString("  " + m.search.View() + "\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}

	b.WriteString(helpStyle.Render("↑/↓: сложность • ←/→: набор • r: случайно • s: сортировка • m: режим • c: конверты • /: поиск"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Enter: превью • i: описание • e: редактировать • d: удалить • ctrl+r: сканировать • q: выход"))
	return b.String()
}
