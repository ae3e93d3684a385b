// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hazadus/go-songselect/internal/filter"
	"github.com/hazadus/go-songselect/internal/ruleset"
)

// Значения конфигурации по умолчанию
const (
	DefaultSongsDir   = "~/osu/Songs"
	DefaultDataFile   = "~/.songselect.data.yaml"
	DefaultSort       = "title"
	DefaultRuleset    = "osu"
	DefaultPreviewURL = "https://b.ppy.sh/preview/%d.mp3"
)

// Config структура для хранения конфигурации приложения
type Config struct {
	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`

	SongsDir      string `yaml:"songs_dir"`
	DataFile      string `yaml:"data_file"`
	DefaultSort   string `yaml:"default_sort"`
	Ruleset       string `yaml:"ruleset"`
	AllowConverts bool   `yaml:"allow_converts"`
	PreviewURL    string `yaml:"preview_url"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadConfig загружает конфигурацию приложения из указанного файла. Если файла
// нет, используются значения по умолчанию: без зеркала приложение тоже работает
func LoadConfig(filePath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := expandHome(filePath, home)

	config := &Config{}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	default:
		if err := yaml.Unmarshal(raw, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора yaml конфигурации: %w", err)
		}
	}

	config.applyDefaults()
	config.SongsDir = expandHome(config.SongsDir, home)
	config.DataFile = expandHome(config.DataFile, home)

	if _, err := config.SortMode(); err != nil {
		return nil, err
	}
	if _, err := config.RulesetID(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.SongsDir == "" {
		c.SongsDir = DefaultSongsDir
	}
	if c.DataFile == "" {
		c.DataFile = DefaultDataFile
	}
	if c.DefaultSort == "" {
		c.DefaultSort = DefaultSort
	}
	if c.Ruleset == "" {
		c.Ruleset = DefaultRuleset
	}
	if c.PreviewURL == "" {
		c.PreviewURL = DefaultPreviewURL
	}
}

// MirrorEnabled сообщает, настроено ли зеркало S3
func (c *Config) MirrorEnabled() bool {
	return c.AwsBucketName != ""
}

// SortMode возвращает режим сортировки по умолчанию
func (c *Config) SortMode() (filter.SortMode, error) {
	mode, err := filter.ParseSortMode(c.DefaultSort)
	if err != nil {
		return 0, fmt.Errorf("некорректный default_sort в конфигурации: %w", err)
	}
	return mode, nil
}

// RulesetID возвращает режим игры по умолчанию
func (c *Config) RulesetID() (ruleset.ID, error) {
	id, err := ruleset.Parse(c.Ruleset)
	if err != nil {
		return 0, fmt.Errorf("некорректный ruleset в конфигурации: %w", err)
	}
	return id, nil
}

func expandHome(path, home string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		return home + path[1:]
	}
	return path
}
