package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-songselect/internal/filter"
	"github.com/hazadus/go-songselect/internal/ruleset"
	"github.com/hazadus/go-songselect/internal/utils"
)

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand() *cobra.Command {
	var sortName, search, rulesetName string
	var converts bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visible beatmap sets",
		Long:  `Display beatmap sets in carousel order. Sets are filtered by search text and ruleset and sorted by artist, title, author or difficulty.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sort, criteria, err := app.defaultView()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("sort") {
				if sort, err = filter.ParseSortMode(sortName); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("ruleset") {
				if criteria.Ruleset, err = ruleset.Parse(rulesetName); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("converts") {
				criteria.AllowConverts = converts
			}
			criteria.SearchText = search

			app.listSets(sort, criteria)
			return nil
		},
	}

	cmd.Flags().StringVar(&sortName, "sort", "", "sort mode: artist, title, author or difficulty")
	cmd.Flags().StringVar(&search, "search", "", "search text")
	cmd.Flags().StringVar(&rulesetName, "ruleset", "", "ruleset: osu, taiko, catch or mania")
	cmd.Flags().BoolVar(&converts, "converts", false, "include osu! beatmaps converted to the ruleset")
	return cmd
}

func (app *Application) listSets(sort filter.SortMode, criteria filter.Criteria) {
	if len(app.Data.Sets) == 0 {
		fmt.Println("📚 Библиотека пуста. Добавьте наборы с помощью команды 'import'.")
		return
	}

	car := app.newCarousel(sort, criteria)
	groups := car.Visible()
	if len(groups) == 0 {
		fmt.Println("🔍 Ничего не найдено. Измените условия поиска.")
		return
	}

	fmt.Printf("📚 Найдено наборов: %d из %d (сортировка: %s, режим: %s)\n\n",
		len(groups), car.Len(), sort, criteria.Ruleset)

	// Выводим заголовок таблицы
	fmt.Printf("  %-8s %-24s %-30s %-18s %-8s\n", "ID", "Исполнитель", "Название", "Автор", "Длина")
	fmt.Println(strings.Repeat("-", 96))

	current := car.Current()
	for _, group := range groups {
		set := group.Set
		length := "N/A"
		if set.Length > 0 {
			length = utils.FormatLength(set.Length)
		}
		fmt.Printf("  %-8d %-24s %-30s %-18s %-8s\n",
			set.ID,
			utils.TruncateString(set.Metadata.Artist, 22),
			utils.TruncateString(set.Metadata.Title, 28),
			utils.TruncateString(set.Metadata.Author, 16),
			length)

		for _, b := range group.Beatmaps {
			marker := " "
			if !car.IsDefault() && b == current.Beatmap {
				marker = "▶"
			}
			fmt.Printf("%s     └ %-8d %-6s %-24s %s\n",
				marker, b.ID, b.Ruleset, utils.TruncateString(b.Version, 24),
				utils.FormatDifficulty(b.Difficulty.OverallDifficulty))
		}
	}

	fmt.Println()
	fmt.Println("💡 Используйте 'songselect show [ID]' для описания набора и 'songselect preview [ID]' для превью")
}
