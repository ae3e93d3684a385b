// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-songselect/internal/preview"
	"github.com/hazadus/go-songselect/internal/tui/app"
)

// App представляет основное TUI приложение
type App struct {
	opts       app.Options
	previewURL string
}

// NewApp создает новый экземпляр TUI приложения. Плеер превью создается при
// запуске, previewURL задает шаблон адреса онлайн-превью
func NewApp(opts app.Options, previewURL string) *App {
	return &App{
		opts:       opts,
		previewURL: previewURL,
	}
}

// Run запускает TUI приложение
func (tuiApp *App) Run() error {
	player := preview.NewPlayer(tuiApp.previewURL)

	opts := tuiApp.opts
	opts.Player = player
	model := app.NewMainModel(opts)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()

	// Закрываем плеер после завершения программы
	player.Close()

	return err
}
