package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-songselect/internal/data"
)

// createSelectCommand создает команду select с привязкой к экземпляру приложения
func (app *Application) createSelectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select [beatmap id]",
		Short: "Select a beatmap",
		Long:  `Make a beatmap the current selection. An unknown beatmap selects the default placeholder instead.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("неверный ID карты: %s", args[0])
			}
			return app.selectBeatmap(id)
		},
	}
}

func (app *Application) selectBeatmap(id int) error {
	sort, criteria, err := app.defaultView()
	if err != nil {
		return err
	}
	car := app.newCarousel(sort, criteria)

	if car.Select(data.Beatmap{ID: id}) {
		sel := car.Current()
		fmt.Printf("🎯 Выбрана карта [%d] %s - %s [%s]\n",
			sel.Beatmap.ID, sel.Set.Metadata.Artist, sel.Set.Metadata.Title, sel.Beatmap.Version)
	} else {
		def := car.Default()
		fmt.Printf("ℹ️  Карта %d не найдена, выбрана карта по умолчанию: %s - %s\n",
			id, def.Set.Metadata.Artist, def.Set.Metadata.Title)
	}

	// У карты по умолчанию ID 0, он сбрасывает сохраненный выбор
	app.Library.RememberSelection(car.Current().Beatmap.ID)
	if err := app.SaveData(); err != nil {
		return fmt.Errorf("ошибка сохранения данных: %w", err)
	}
	return nil
}
