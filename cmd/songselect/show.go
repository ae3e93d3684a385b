package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-songselect/internal/markdown"
)

const showWidth = 80

// createShowCommand создает команду show с привязкой к экземпляру приложения
func (app *Application) createShowCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show [set id]",
		Short: "Show a beatmap set",
		Long:  `Show metadata, difficulties and the Markdown description of a beatmap set.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("неверный ID набора: %s", args[0])
			}
			return app.showSet(id, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print Markdown without rendering")
	return cmd
}

func (app *Application) showSet(id int, raw bool) error {
	set, err := app.Data.SetByID(id)
	if err != nil {
		return fmt.Errorf("ошибка поиска набора: %w", err)
	}

	doc := markdown.SetDocument(set)
	if raw {
		fmt.Print(markdown.ExpandCustomContainers(doc))
		return nil
	}

	renderer, err := markdown.NewRenderer(showWidth)
	if err != nil {
		return err
	}
	out, err := renderer.Render(doc)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
