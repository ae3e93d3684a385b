package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazadus/go-songselect/internal/carousel"
	"github.com/hazadus/go-songselect/internal/config"
	"github.com/hazadus/go-songselect/internal/data"
	"github.com/hazadus/go-songselect/internal/filter"
	"github.com/hazadus/go-songselect/internal/importer"
	"github.com/hazadus/go-songselect/internal/library"
	"github.com/hazadus/go-songselect/internal/metadata"
	"github.com/hazadus/go-songselect/internal/s3"
)

const defaultConfigPath = "~/.songselect"

// Application содержит зависимости, общие для всех команд
type Application struct {
	Config   *config.Config
	Data     *data.AppData
	Library  *library.Manager
	Importer *importer.Service
	Mirror   *s3.Mirror // nil, если зеркало не настроено
}

// NewApplication загружает данные и собирает сервисы приложения
func NewApplication(cfg *config.Config) (*Application, error) {
	appData := data.NewAppData()
	if err := appData.LoadData(cfg.DataFile); err != nil {
		return nil, fmt.Errorf("ошибка загрузки данных: %w", err)
	}

	app := &Application{
		Config:  cfg,
		Data:    appData,
		Library: library.NewManager(appData, cfg.DataFile),
	}

	var mirror importer.Mirror
	if cfg.MirrorEnabled() {
		m, err := s3.NewMirror(&s3.Config{
			Region:     cfg.AwsRegion,
			AccessKey:  cfg.AwsAccessKey,
			SecretKey:  cfg.AwsSecretKey,
			Endpoint:   cfg.AwsEndpoint,
			BucketName: cfg.AwsBucketName,
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания клиента S3: %w", err)
		}
		app.Mirror = m
		mirror = m
	}

	app.Importer = importer.NewService(app.Library, metadata.NewExtractor(), mirror, cfg.SongsDir)
	return app, nil
}

// SaveData сохраняет библиотеку в файл данных
func (app *Application) SaveData() error {
	return app.Library.Save()
}

// newCarousel строит карусель из библиотеки. Смена выбора запоминается
// в данных приложения
func (app *Application) newCarousel(sort filter.SortMode, criteria filter.Criteria) *carousel.Carousel {
	return carousel.New(carousel.Options{
		Sets:              app.Library.ListSets(),
		Sort:              sort,
		Criteria:          criteria,
		SelectedBeatmapID: app.Data.SelectedBeatmapID,
		OnSelectionChanged: func(sel carousel.Selection) {
			app.Library.RememberSelection(sel.Beatmap.ID)
		},
	})
}

// defaultView возвращает сортировку и отбор из конфигурации
func (app *Application) defaultView() (filter.SortMode, filter.Criteria, error) {
	sort, err := app.Config.SortMode()
	if err != nil {
		return 0, filter.Criteria{}, err
	}
	rs, err := app.Config.RulesetID()
	if err != nil {
		return 0, filter.Criteria{}, err
	}
	return sort, filter.Criteria{Ruleset: rs, AllowConverts: app.Config.AllowConverts}, nil
}

func main() {
	cfg, err := config.LoadConfig(defaultConfigPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	app, err := NewApplication(cfg)
	if err != nil {
		log.Fatalf("Ошибка запуска приложения: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.createRootCommand(ctx).Execute(); err != nil {
		stop()
		os.Exit(1)
	}
}
