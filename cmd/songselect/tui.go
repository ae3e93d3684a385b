package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-songselect/internal/tui"
	tuiapp "github.com/hazadus/go-songselect/internal/tui/app"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand() *cobra.Command {
	var scan bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive song select",
		Long:  `Launch the terminal song select: browse the carousel, search, change sorting and ruleset, listen to previews and edit set metadata.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI(scan)
		},
	}
	cmd.Flags().BoolVar(&scan, "scan", false, "look for new sets in songs_dir on start")
	return cmd
}

func (app *Application) launchTUI(scan bool) error {
	sort, criteria, err := app.defaultView()
	if err != nil {
		return err
	}

	opts := tuiapp.Options{
		Library:     app.Library,
		Carousel:    app.newCarousel(sort, criteria),
		Importer:    app.Importer,
		SongsDir:    app.Config.SongsDir,
		SaveFunc:    app.SaveData,
		ScanOnStart: scan,
	}
	if app.Mirror != nil {
		opts.Mirror = app.Mirror
	}

	if err := tui.NewApp(opts, app.Config.PreviewURL).Run(); err != nil {
		return fmt.Errorf("ошибка работы интерфейса: %w", err)
	}

	// Сохраняем выбор, сделанный в интерфейсе
	if err := app.SaveData(); err != nil {
		return fmt.Errorf("ошибка сохранения данных: %w", err)
	}
	return nil
}
