package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// createPullCommand создает команду pull с привязкой к экземпляру приложения
func (app *Application) createPullCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "pull [key]",
		Short: "Download a set archive from the S3 mirror and import it",
		Long:  `Download an .osz archive from the S3 mirror into the songs folder and import it into the library.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			pullCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			return app.pullSet(pullCtx, args[0])
		},
	}
}

func (app *Application) pullSet(ctx context.Context, key string) error {
	if app.Mirror == nil {
		return fmt.Errorf("зеркало S3 не настроено: укажите aws_bucket_name в %s", defaultConfigPath)
	}

	fmt.Printf("📥 Скачиваем архив %s из бакета %s\n", key, app.Config.AwsBucketName)

	result, err := app.Importer.Pull(ctx, key)
	if err != nil {
		return fmt.Errorf("ошибка получения набора: %w", err)
	}

	set := result.Set
	if result.Warning != nil {
		fmt.Printf("⚠️  Предупреждение: %v\n", result.Warning)
	}
	if !result.Added {
		fmt.Printf("ℹ️  Набор уже есть в библиотеке: [%d] %s - %s\n", set.ID, set.Metadata.Artist, set.Metadata.Title)
		return nil
	}

	if err := app.SaveData(); err != nil {
		return fmt.Errorf("ошибка сохранения данных: %w", err)
	}
	fmt.Printf("✅ Добавлен набор [%d] %s - %s\n", set.ID, set.Metadata.Artist, set.Metadata.Title)
	fmt.Printf("   Папка: %s\n", set.Directory)
	return nil
}
