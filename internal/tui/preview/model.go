// Package preview содержит модель экрана прослушивания превью для TUI
package preview

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-songselect/internal/data"
	audio "github.com/hazadus/go-songselect/internal/preview"
	"github.com/hazadus/go-songselect/internal/streaming"
	"github.com/hazadus/go-songselect/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0000ff")).
			MarginBottom(1)

	setInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1).
			MarginBottom(1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)
)

// Player воспроизводит превью наборов
type Player interface {
	Play(set *data.BeatmapSet) error
	Pause()
	Stop()
	Progress() <-chan audio.Status
	Done() <-chan bool
}

// GoBackMsg отправляется для возврата к выбору песни
type GoBackMsg struct{}

// ProgressMsg содержит обновления прогресса воспроизведения
type ProgressMsg struct {
	Status audio.Status
}

// PlaybackStartedMsg отправляется, когда превью начало играть
type PlaybackStartedMsg struct{}

// PlaybackFinishedMsg отправляется при завершении воспроизведения
type PlaybackFinishedMsg struct{}

// PlaybackErrorMsg отправляется при ошибке воспроизведения
type PlaybackErrorMsg struct {
	Error error
}

// Model представляет модель экрана превью
type Model struct {
	set         data.BeatmapSet
	beatmap     data.Beatmap
	player      Player
	progressBar progress.Model
	status      audio.Status
	isPlaying   bool
	err         error
}

// NewModel создает модель превью для выбранной сложности набора
func NewModel(set data.BeatmapSet, beatmap data.Beatmap, player Player) *Model {
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	return &Model{
		set:         set,
		beatmap:     beatmap,
		player:      player,
		progressBar: prog,
	}
}

// Init запускает воспроизведение
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.startPlayback(),
		m.listenForProgress(),
	)
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progressBar.Width = min(60, msg.Width-10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "enter":
			m.player.Stop()
			return m, func() tea.Msg {
				return GoBackMsg{}
			}

		case " ":
			m.player.Pause()
			m.isPlaying = !m.isPlaying
			return m, nil
		}

	case PlaybackStartedMsg:
		m.isPlaying = true
		return m, nil

	case ProgressMsg:
		m.status = msg.Status
		m.isPlaying = msg.Status.IsPlaying

		var percent float64
		if msg.Status.Total > 0 {
			percent = float64(msg.Status.Current) / float64(msg.Status.Total)
		}

		return m, tea.Batch(
			m.progressBar.SetPercent(percent),
			m.listenForProgress(),
		)

	case PlaybackFinishedMsg:
		m.isPlaying = false
		return m, func() tea.Msg {
			return GoBackMsg{}
		}

	case PlaybackErrorMsg:
		m.err = msg.Error
		m.isPlaying = false
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progressBar.Update(msg)
		m.progressBar = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// View отображает модель
func (m *Model) View() string {
	if m.err != nil {
		return fmt.Sprintf(
			"%s\n\n%s\n\n%s",
			titleStyle.Render("❌ Ошибка воспроизведения"),
			errorStyle.Render(m.err.Error()),
			controlsStyle.Render("Нажмите 'q' или 'esc' для возврата"),
		)
	}

	title := titleStyle.Render("🎵 Превью")

	setInfo := setInfoStyle.Render(fmt.Sprintf(
		"🎤 %s\n🎵 %s\n🗺️  %s [%s] • %s",
		m.set.Metadata.Artist,
		m.set.Metadata.Title,
		m.set.Metadata.Author,
		m.beatmap.Version,
		m.beatmap.Ruleset,
	))

	statusIcon := "⏸️"
	if m.isPlaying {
		statusIcon = "▶️"
	}
	statusText := statusStyle.Render(fmt.Sprintf("%s %s", statusIcon, formatStatus(m.isPlaying, m.status)))

	timeText := fmt.Sprintf(
		"%s / %s",
		utils.FormatDuration(m.status.Current),
		utils.FormatDuration(m.status.Total),
	)

	controls := controlsStyle.Render(
		"Пробел: пауза/воспроизведение • q/esc: назад к выбору песни",
	)

	return fmt.Sprintf(
		"%s\n\n%s\n\n%s\n\n%s\n%s\n\n%s",
		title,
		setInfo,
		statusText,
		m.progressBar.View(),
		timeText,
		controls,
	)
}

func (m *Model) startPlayback() tea.Cmd {
	set := m.set
	return func() tea.Msg {
		if err := m.player.Play(&set); err != nil {
			return PlaybackErrorMsg{Error: err}
		}
		return PlaybackStartedMsg{}
	}
}

// listenForProgress слушает обновления прогресса от плеера
func (m *Model) listenForProgress() tea.Cmd {
	return func() tea.Msg {
		select {
		case status, ok := <-m.player.Progress():
			if !ok {
				return PlaybackFinishedMsg{}
			}
			return ProgressMsg{Status: status}

		case <-m.player.Done():
			return PlaybackFinishedMsg{}
		}
	}
}

func formatStatus(isPlaying bool, status audio.Status) string {
	if !isPlaying {
		return "Пауза"
	}
	if status.Remote {
		return "🌐 " + streaming.StatusText(status.StuckCount)
	}
	return "Воспроизведение"
}
