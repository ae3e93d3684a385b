package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-songselect/internal/importer"
	"github.com/hazadus/go-songselect/internal/library"
	"github.com/hazadus/go-songselect/internal/utils"
)

// createImportCommand создает команду import с привязкой к экземпляру приложения
func (app *Application) createImportCommand(ctx context.Context) *cobra.Command {
	var upload bool

	cmd := &cobra.Command{
		Use:   "import [song folder or .osz]",
		Short: "Import a beatmap set",
		Long:  `Import a beatmap set from a song folder or an .osz archive. With --upload the archive is also stored in the S3 mirror.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Создаем контекст с таймаутом для загрузки (10 минут)
			importCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			return app.importSet(importCtx, args[0], upload)
		},
	}
	cmd.Flags().BoolVar(&upload, "upload", false, "upload the set archive to the S3 mirror")
	return cmd
}

func (app *Application) importSet(ctx context.Context, path string, upload bool) error {
	if upload && app.Mirror == nil {
		return fmt.Errorf("зеркало S3 не настроено: укажите aws_bucket_name в %s", defaultConfigPath)
	}

	fmt.Printf("📥 Импортируем набор: %s\n", path)

	var progress func(int64)
	var progressChan chan int64
	done := make(chan struct{})
	if upload {
		fmt.Printf("📤 Архив будет загружен в бакет %s\n", app.Config.AwsBucketName)
		progressChan = make(chan int64)
		progress = func(bytesRead int64) {
			progressChan <- bytesRead
		}

		// Горутина только печатает прогресс, данные меняются после загрузки
		go func() {
			defer close(done)
			startTime := time.Now()
			for bytesRead := range progressChan {
				elapsed := time.Since(startTime)
				speed := float64(bytesRead) / elapsed.Seconds()
				fmt.Printf("\r📊 Отправлено: %s | Скорость: %s/s | Прошло: %s",
					importer.FormatFileSize(bytesRead),
					importer.FormatFileSize(int64(speed)),
					utils.FormatDuration(elapsed))
			}
		}()
	} else {
		close(done)
	}

	result, err := app.Importer.ImportPath(ctx, path, upload, progress)
	if progressChan != nil {
		close(progressChan)
	}
	<-done
	if upload {
		fmt.Println()
	}

	if err != nil {
		if errors.Is(err, library.ErrMalformed) {
			return fmt.Errorf("набор отклонен: %w", err)
		}
		return fmt.Errorf("ошибка импорта: %w", err)
	}

	set := result.Set
	if result.Warning != nil {
		fmt.Printf("⚠️  Предупреждение: %v\n", result.Warning)
	}
	if !result.Added {
		fmt.Printf("ℹ️  Набор уже есть в библиотеке: [%d] %s - %s\n", set.ID, set.Metadata.Artist, set.Metadata.Title)
		return nil
	}

	fmt.Printf("✅ Добавлен набор [%d] %s - %s (%d сложн.)\n",
		set.ID, set.Metadata.Artist, set.Metadata.Title, len(set.Beatmaps))
	if result.Uploaded {
		fmt.Printf("   URL: %s\n", set.URL)
		fmt.Printf("   Размер: %s\n", importer.FormatFileSize(set.FileSize))
	}

	if err := app.SaveData(); err != nil {
		return fmt.Errorf("ошибка сохранения данных: %w", err)
	}
	fmt.Printf("📦 Данные набора добавлены в %s\n", app.Config.DataFile)
	return nil
}
