// Package app содержит основную логику TUI приложения
package app

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-songselect/internal/carousel"
	"github.com/hazadus/go-songselect/internal/data"
	"github.com/hazadus/go-songselect/internal/importer"
	"github.com/hazadus/go-songselect/internal/library"
	"github.com/hazadus/go-songselect/internal/tui/details"
	"github.com/hazadus/go-songselect/internal/tui/editor"
	tuiPreview "github.com/hazadus/go-songselect/internal/tui/preview"
	"github.com/hazadus/go-songselect/internal/tui/songselect"
)

// ScreenType определяет тип текущего экрана
type ScreenType int

// Константы для типов экранов
const (
	// SongSelectScreen - экран выбора песни
	SongSelectScreen ScreenType = iota
	// PreviewScreen - экран превью
	PreviewScreen
	// DetailsScreen - экран описания набора
	DetailsScreen
	// EditorScreen - экран редактирования
	EditorScreen
)

// Mirror удаляет архивы наборов из зеркала
type Mirror interface {
	KeyFromURL(objectURL string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

// Options зависимости главной модели
type Options struct {
	Library  *library.Manager
	Carousel *carousel.Carousel
	Importer *importer.Service // nil отключает сканирование папки песен
	Mirror   Mirror            // nil, если зеркало не настроено
	Player   tuiPreview.Player
	SongsDir string
	SaveFunc func() error

	// ScanOnStart запускает поиск новых наборов при старте
	ScanOnStart bool
}

// ImportedMsg результат фонового сканирования папки песен. Наборы уже
// прочитаны и проверены, но в библиотеку еще не добавлены
type ImportedMsg struct {
	Sets     []data.BeatmapSet
	Warnings []error
	Errors   []error
}

// MirrorDeletedMsg результат удаления архива из зеркала
type MirrorDeletedMsg struct {
	Key string
	Err error
}

// MainModel представляет главную модель TUI. Библиотека и карусель меняются
// только в Update
type MainModel struct {
	opts          Options
	currentScreen ScreenType
	width         int
	height        int

	songSelectModel *songselect.Model
	previewModel    *tuiPreview.Model
	detailsModel    *details.Model
	editorModel     *editor.Model
}

// NewMainModel создает новую главную модель
func NewMainModel(opts Options) *MainModel {
	return &MainModel{
		opts:            opts,
		currentScreen:   SongSelectScreen,
		songSelectModel: songselect.NewModel(opts.Carousel),
	}
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	if m.opts.ScanOnStart && m.opts.Importer != nil {
		m.songSelectModel.SetStatus("Поиск новых наборов...")
		return tea.Batch(m.songSelectModel.Init(), m.scan())
	}
	return m.songSelectModel.Init()
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.opts.Player != nil {
				m.opts.Player.Stop()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case songselect.PreviewMsg:
		if m.opts.Player == nil {
			m.songSelectModel.SetStatus("Воспроизведение недоступно")
			return m, nil
		}
		m.currentScreen = PreviewScreen
		m.previewModel = tuiPreview.NewModel(msg.Set, msg.Beatmap, m.opts.Player)
		return m, tea.Batch(m.resize(), m.previewModel.Init())

	case songselect.DetailsMsg:
		m.currentScreen = DetailsScreen
		m.detailsModel = details.NewModel(msg.Set)
		return m, tea.Batch(m.resize(), m.detailsModel.Init())

	case songselect.EditMsg:
		m.currentScreen = EditorScreen
		m.editorModel = editor.NewModel(m.opts.Library, msg.Set, m.opts.SaveFunc)
		return m, tea.Batch(m.resize(), m.editorModel.Init())

	case songselect.DeleteMsg:
		return m, m.deleteSet(msg.Set)

	case songselect.DeleteAllMsg:
		m.opts.Library.DeleteAll()
		m.opts.Carousel.DeleteAll()
		m.songSelectModel.Refresh()
		m.setStatus("🗑️ Все наборы удалены", m.save())
		return m, nil

	case songselect.ScanMsg:
		if m.opts.Importer == nil {
			m.songSelectModel.SetStatus("Сканирование недоступно")
			return m, nil
		}
		return m, m.scan()

	case ImportedMsg:
		m.applyImport(msg)
		return m, nil

	case MirrorDeletedMsg:
		if msg.Err != nil {
			m.songSelectModel.SetStatus(fmt.Sprintf("❌ Ошибка удаления из зеркала: %v", msg.Err))
		} else {
			m.songSelectModel.SetStatus(fmt.Sprintf("🗑️ Архив %s удален из зеркала", msg.Key))
		}
		return m, nil

	case editor.SetSavedMsg:
		m.opts.Carousel.Update(msg.Set)
		m.songSelectModel.Refresh()
		return m, nil

	case tuiPreview.GoBackMsg, details.GoBackMsg, editor.GoBackMsg:
		m.currentScreen = SongSelectScreen
		m.previewModel = nil
		m.detailsModel = nil
		m.editorModel = nil
		m.songSelectModel.Refresh()
		return m, nil
	}

	return m, m.updateActive(msg)
}

// updateActive передает сообщение активной модели
func (m *MainModel) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.currentScreen {
	case SongSelectScreen:
		m.songSelectModel, cmd = m.songSelectModel.Update(msg)
	case PreviewScreen:
		if m.previewModel != nil {
			m.previewModel, cmd = m.previewModel.Update(msg)
		}
	case DetailsScreen:
		if m.detailsModel != nil {
			m.detailsModel, cmd = m.detailsModel.Update(msg)
		}
	case EditorScreen:
		if m.editorModel != nil {
			m.editorModel, cmd = m.editorModel.Update(msg)
		}
	}
	return cmd
}

// resize передает новому экрану известный размер окна
func (m *MainModel) resize() tea.Cmd {
	if m.width == 0 && m.height == 0 {
		return nil
	}
	return m.updateActive(tea.WindowSizeMsg{Width: m.width, Height: m.height})
}

func (m *MainModel) deleteSet(set data.BeatmapSet) tea.Cmd {
	if err := m.opts.Library.Delete(set.ID); err != nil {
		m.songSelectModel.SetStatus(fmt.Sprintf("❌ %v", err))
		return nil
	}
	m.opts.Carousel.Remove(set.ID)
	m.songSelectModel.Refresh()
	m.setStatus(fmt.Sprintf("🗑️ Набор %s - %s удален", set.Metadata.Artist, set.Metadata.Title), m.save())

	if set.URL == "" || m.opts.Mirror == nil {
		return nil
	}
	key, err := m.opts.Mirror.KeyFromURL(set.URL)
	if err != nil {
		m.songSelectModel.SetStatus(fmt.Sprintf("❌ %v", err))
		return nil
	}
	mirror := m.opts.Mirror
	return func() tea.Msg {
		return MirrorDeletedMsg{Key: key, Err: mirror.DeleteFile(context.Background(), key)}
	}
}

// scan ищет новые наборы в фоне. Известные папки собираются здесь, в цикле
// обновления, команда только читает файлы
func (m *MainModel) scan() tea.Cmd {
	known := make(map[string]bool)
	for _, set := range m.opts.Library.ListSets() {
		if set.Directory != "" {
			known[filepath.Clean(set.Directory)] = true
		}
	}
	service := m.opts.Importer
	songsDir := m.opts.SongsDir

	return func() tea.Msg {
		paths, err := importer.Candidates(songsDir, known)
		if err != nil {
			return ImportedMsg{Errors: []error{err}}
		}

		var msg ImportedMsg
		for _, path := range paths {
			set, warning, err := service.Prepare(path)
			if err != nil {
				msg.Errors = append(msg.Errors, fmt.Errorf("%s: %w", filepath.Base(path), err))
				continue
			}
			if warning != nil {
				msg.Warnings = append(msg.Warnings, fmt.Errorf("%s: %w", filepath.Base(path), warning))
			}
			msg.Sets = append(msg.Sets, set)
		}
		return msg
	}
}

func (m *MainModel) applyImport(msg ImportedMsg) {
	added := 0
	errs := len(msg.Errors)
	for _, set := range msg.Sets {
		stored, isNew, err := m.opts.Library.Import(set)
		if err != nil {
			errs++
			continue
		}
		if isNew && m.opts.Carousel.Import(stored) {
			added++
		}
	}
	m.songSelectModel.Refresh()

	status := fmt.Sprintf("📥 Добавлено наборов: %d", added)
	if errs > 0 {
		status += fmt.Sprintf(" • ошибок: %d", errs)
	}
	if len(msg.Warnings) > 0 {
		status += fmt.Sprintf(" • предупреждений: %d", len(msg.Warnings))
	}
	var err error
	if added > 0 {
		err = m.save()
	}
	m.setStatus(status, err)
}

func (m *MainModel) save() error {
	if m.opts.SaveFunc == nil {
		return nil
	}
	return m.opts.SaveFunc()
}

func (m *MainModel) setStatus(status string, saveErr error) {
	if saveErr != nil {
		status = fmt.Sprintf("%s • ❌ ошибка сохранения: %v", status, saveErr)
	}
	m.songSelectModel.SetStatus(status)
}

// Screen возвращает текущий экран
func (m *MainModel) Screen() ScreenType {
	return m.currentScreen
}

// View отображает интерфейс
func (m *MainModel) View() string {
	switch m.currentScreen {
	case SongSelectScreen:
		return m.songSelectModel.View()

	case PreviewScreen:
		if m.previewModel != nil {
			return m.previewModel.View()
		}
		return "Ошибка: модель превью не инициализирована"

	case DetailsScreen:
		if m.detailsModel != nil {
			return m.detailsModel.View()
		}
		return "Ошибка: модель описания не инициализирована"

	case EditorScreen:
		if m.editorModel != nil {
			return m.editorModel.View()
		}
		return "Ошибка: модель редактора не инициализирована"

	default:
		return "Неизвестный экран"
	}
}
