package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// createDeleteCommand создает команду delete с привязкой к экземпляру приложения
func (app *Application) createDeleteCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [set id]",
		Short: "Delete a beatmap set by ID",
		Long:  `Delete a beatmap set from the library and its archive from the S3 mirror.`,
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("❌ Ошибка: неверный ID '%s'. ID должен быть числом.\n", args[0])
				return
			}
			app.deleteSet(ctx, id)
		},
	}
}

func (app *Application) deleteSet(ctx context.Context, id int) {
	set, err := app.Data.SetByID(id)
	if err != nil {
		fmt.Printf("❌ Ошибка: %v\n", err)
		return
	}

	fmt.Printf("🗑️  Удаляем набор: %s - %s\n", set.Metadata.Artist, set.Metadata.Title)

	// Удаляем архив из зеркала, если он туда загружался
	if set.URL != "" {
		if err := app.deleteFromMirror(ctx, set.URL); err != nil {
			fmt.Printf("⚠️  Предупреждение: не удалось удалить архив из S3: %v\n", err)
		} else {
			fmt.Println("✅ Архив успешно удален из S3")
		}
	}

	if err := app.Library.Delete(id); err != nil {
		fmt.Printf("❌ Ошибка удаления набора из данных: %v\n", err)
		return
	}

	if err := app.SaveData(); err != nil {
		fmt.Printf("❌ Ошибка сохранения данных: %v\n", err)
		return
	}

	fmt.Println("✅ Набор успешно удален из библиотеки")
}

func (app *Application) deleteFromMirror(ctx context.Context, fileURL string) error {
	if app.Mirror == nil {
		return fmt.Errorf("зеркало S3 не настроено")
	}
	key, err := app.Mirror.KeyFromURL(fileURL)
	if err != nil {
		return fmt.Errorf("ошибка извлечения ключа из URL: %w", err)
	}
	return app.Mirror.DeleteFile(ctx, key)
}

// createDeleteAllCommand создает команду delete-all
func (app *Application) createDeleteAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-all",
		Short: "Delete all beatmap sets",
		Long:  `Remove every beatmap set from the library. Mirror archives are kept. The selection resets to the default placeholder.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			count := len(app.Data.Sets)
			app.Library.DeleteAll()
			if err := app.SaveData(); err != nil {
				return fmt.Errorf("ошибка сохранения данных: %w", err)
			}
			fmt.Printf("🗑️  Удалено наборов: %d\n", count)
			return nil
		},
	}
}
