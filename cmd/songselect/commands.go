package main

import (
	"context"

	"github.com/spf13/cobra"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "songselect",
		Short: "Beatmap library and song select for the terminal",
		Long:  `Import beatmap sets from song folders, .osz archives or an S3 mirror, browse them in a song select carousel and listen to previews.`,
	}

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createImportCommand(ctx))
	rootCmd.AddCommand(app.createListCommand())
	rootCmd.AddCommand(app.createShowCommand())
	rootCmd.AddCommand(app.createSelectCommand())
	rootCmd.AddCommand(app.createDeleteCommand(ctx))
	rootCmd.AddCommand(app.createDeleteAllCommand())
	rootCmd.AddCommand(app.createPreviewCommand(ctx))
	rootCmd.AddCommand(app.createPullCommand(ctx))
	rootCmd.AddCommand(app.createTUICommand())

	return rootCmd
}
