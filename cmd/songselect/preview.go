package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-songselect/internal/preview"
	"github.com/hazadus/go-songselect/internal/streaming"
	"github.com/hazadus/go-songselect/internal/utils"
)

// createPreviewCommand создает команду preview с привязкой к экземпляру приложения
func (app *Application) createPreviewCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "preview [set id]",
		Short: "Play the preview of a beatmap set",
		Long:  `Play the song of a beatmap set from its preview point. Local audio is used when present, otherwise the online preview is streamed.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("неверный ID набора: %s", args[0])
			}
			return app.previewSet(ctx, id)
		},
	}
}

// enableRawMode включает режим raw для терминала (без буферизации и echo)
func enableRawMode() {
	cmd := exec.Command("stty", "-echo", "-icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run() // Без терминала превью играет без управления
}

// disableRawMode восстанавливает нормальный режим терминала
func disableRawMode() {
	cmd := exec.Command("stty", "echo", "icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}

// readSingleChar читает одиночный символ без ожидания Enter
func readSingleChar() (byte, error) {
	buffer := make([]byte, 1)
	_, err := os.Stdin.Read(buffer)
	return buffer[0], err
}

func (app *Application) previewSet(ctx context.Context, id int) error {
	set, err := app.Data.SetByID(id)
	if err != nil {
		return fmt.Errorf("ошибка поиска набора: %w", err)
	}

	src, err := preview.ResolveSource(set, app.Config.PreviewURL)
	if err != nil {
		return err
	}

	fmt.Printf("🎵 Превью набора [%d]:\n", set.ID)
	fmt.Printf("   Исполнитель: %s\n", set.Metadata.Artist)
	fmt.Printf("   Название: %s\n", set.Metadata.Title)
	fmt.Printf("   Автор: %s\n", set.Metadata.Author)
	if set.Length > 0 {
		fmt.Printf("   Продолжительность: %s\n", utils.FormatLength(set.Length))
	}
	if src.Remote() {
		fmt.Printf("🌐 Онлайн-превью: %s\n", src.URL)
	} else {
		fmt.Printf("💿 Файл: %s с %s\n", src.Path, utils.FormatDuration(src.Offset))
	}
	fmt.Println()

	p := preview.NewPlayer(app.Config.PreviewURL)
	defer p.Close()

	if err := p.Play(set); err != nil {
		return fmt.Errorf("ошибка запуска воспроизведения: %w", err)
	}

	fmt.Printf("🎮 Управление:\n")
	fmt.Printf("   [Пробел] - пауза/воспроизведение\n")
	fmt.Printf("   [Ctrl+C] - остановить и выйти\n")
	fmt.Println()

	enableRawMode()
	defer disableRawMode()

	go func() {
		for {
			char, err := readSingleChar()
			if err != nil {
				return
			}
			// Пробел или Enter
			if char == 32 || char == 10 || char == 13 {
				p.Pause()
				fmt.Printf("\r\033[K")
				if p.IsPlaying() {
					fmt.Printf("▶️  Воспроизведение\n")
				} else {
					fmt.Printf("⏸️  Пауза\n")
				}
			}
		}
	}()

	for {
		select {
		case status := <-p.Progress():
			displayProgress(status)
		case <-p.Done():
			fmt.Println("\n✅ Превью завершено")
			return nil
		case <-ctx.Done():
			fmt.Println("\n⏹️  Воспроизведение остановлено пользователем")
			p.Stop()
			return nil
		}
	}
}

// displayProgress отображает прогресс воспроизведения
func displayProgress(status preview.Status) {
	statusIcon := "⏱️"
	statusText := "Воспроизведение"
	if status.Remote {
		statusText = streaming.StatusText(status.StuckCount)
	}

	switch {
	case !status.IsPlaying:
		statusIcon = "⏸️"
		statusText = "На паузе"
	case status.StuckCount > 3:
		statusIcon = "⚠️"
	}

	if status.Total > 0 {
		percent := float64(status.Current) / float64(status.Total) * 100
		fmt.Printf("\r%s  %.1f%% | %s / %s | Статус: %s",
			statusIcon,
			percent,
			utils.FormatDuration(status.Current),
			utils.FormatDuration(status.Total),
			statusText)
		return
	}
	fmt.Printf("\r%s  %s | Статус: %s", statusIcon, utils.FormatDuration(status.Current), statusText)
}
