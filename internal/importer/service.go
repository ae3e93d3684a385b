// Package importer импортирует наборы карт из папок песен, архивов .osz и
// зеркала S3 в библиотеку
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hazadus/go-songselect/internal/data"
	"github.com/hazadus/go-songselect/internal/library"
	"github.com/hazadus/go-songselect/internal/osufile"
)

// Mirror хранилище архивов наборов
type Mirror interface {
	UploadFile(ctx context.Context, reader io.Reader, key string) (string, error)
	DownloadFile(ctx context.Context, w io.WriterAt, key string) (int64, error)
	ObjectURL(key string) string
}

// Enricher дополняет набор сведениями из аудиофайла
type Enricher interface {
	Enrich(set *data.BeatmapSet) error
}

// Service управляет импортом наборов
type Service struct {
	mirror   Mirror
	enricher Enricher
	library  *library.Manager
	songsDir string
}

// NewService создает сервис импорта. mirror может быть nil, если зеркало не настроено
func NewService(lib *library.Manager, enricher Enricher, mirror Mirror, songsDir string) *Service {
	return &Service{
		mirror:   mirror,
		enricher: enricher,
		library:  lib,
		songsDir: songsDir,
	}
}

// Result содержит результат импорта
type Result struct {
	Set      data.BeatmapSet
	Added    bool  // false, если набор уже был в библиотеке
	Warning  error // Некритичная ошибка, например не удалось определить длину песни
	Uploaded bool
}

// Load читает набор из папки песни или архива .osz без добавления в библиотеку
func (s *Service) Load(path string) (data.BeatmapSet, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return data.BeatmapSet{}, fmt.Errorf("файл не найден: %s", path)
	}
	if err != nil {
		return data.BeatmapSet{}, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}

	switch {
	case info.IsDir():
		return osufile.LoadDirectory(path)
	case strings.EqualFold(filepath.Ext(path), ".osz"):
		return osufile.LoadArchive(path, s.songsDir)
	default:
		return data.BeatmapSet{}, fmt.Errorf("ожидалась папка песни или архив .osz: %s", path)
	}
}

// Prepare читает набор, дополняет его сведениями из аудио и проверяет. Библиотека
// не меняется, поэтому Prepare можно вызывать в фоне
func (s *Service) Prepare(path string) (set data.BeatmapSet, warning error, err error) {
	set, err = s.Load(path)
	if err != nil {
		return data.BeatmapSet{}, nil, err
	}
	if s.enricher != nil {
		warning = s.enricher.Enrich(&set)
	}
	if err := library.Validate(&set); err != nil {
		return data.BeatmapSet{}, nil, err
	}
	return set, warning, nil
}

// Candidates возвращает папки песен и архивы .osz внутри dir, кроме известных
func Candidates(dir string, known map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения папки песен: %w", err)
	}

	var paths []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if known[path] {
			continue
		}
		if e.IsDir() {
			paths = append(paths, path)
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".osz") {
			// Архив распаковывается в одноименную папку
			if known[strings.TrimSuffix(path, filepath.Ext(path))] {
				continue
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// ImportPath импортирует набор из папки или архива. Если upload == true,
// архив набора загружается в зеркало, progress получает число отправленных байт
func (s *Service) ImportPath(ctx context.Context, path string, upload bool, progress func(int64)) (*Result, error) {
	set, warning, err := s.Prepare(path)
	if err != nil {
		return nil, err
	}
	result := &Result{Warning: warning}

	if upload {
		if err := s.upload(ctx, path, &set, progress); err != nil {
			return nil, err
		}
		result.Uploaded = true
	}

	stored, added, err := s.library.Import(set)
	if err != nil {
		return nil, err
	}
	result.Set = stored
	result.Added = added
	return result, nil
}

// Pull скачивает архив из зеркала и импортирует его
func (s *Service) Pull(ctx context.Context, key string) (*Result, error) {
	if s.mirror == nil {
		return nil, fmt.Errorf("зеркало S3 не настроено")
	}

	tmpDir, err := os.MkdirTemp("", "songselect-pull-*")
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временной папки: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, filepath.Base(key))
	file, err := os.Create(archivePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла: %w", err)
	}
	if _, err := s.mirror.DownloadFile(ctx, file, key); err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("ошибка записи архива: %w", err)
	}

	result, err := s.ImportPath(ctx, archivePath, false, nil)
	if err != nil {
		return nil, err
	}
	if result.Added {
		result.Set.URL = s.mirror.ObjectURL(key)
		if err := s.library.Update(result.Set); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Service) upload(ctx context.Context, path string, set *data.BeatmapSet, progress func(int64)) error {
	if s.mirror == nil {
		return fmt.Errorf("зеркало S3 не настроено")
	}

	archivePath := path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		tmpDir, err := os.MkdirTemp("", "songselect-pack-*")
		if err != nil {
			return fmt.Errorf("ошибка создания временной папки: %w", err)
		}
		defer os.RemoveAll(tmpDir)

		archivePath = filepath.Join(tmpDir, "set.osz")
		if err := osufile.Pack(path, archivePath); err != nil {
			return err
		}
	}

	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("ошибка получения информации о файле: %w", err)
	}
	set.FileSize = info.Size()

	var reader io.Reader = file
	if progress != nil {
		reader = &ProgressReader{
			Reader:     file,
			Size:       info.Size(),
			OnProgress: progress,
		}
	}

	url, err := s.mirror.UploadFile(ctx, reader, ArchiveKey(set))
	if err != nil {
		return fmt.Errorf("ошибка загрузки в S3: %w", err)
	}
	set.URL = url
	return nil
}

var unsafeKeyChars = regexp.MustCompile(`[\\/:*?"<>|]+`)

// ArchiveKey формирует ключ архива набора в зеркале
func ArchiveKey(set *data.BeatmapSet) string {
	name := fmt.Sprintf("%s - %s", set.Metadata.Artist, set.Metadata.Title)
	name = strings.TrimSpace(unsafeKeyChars.ReplaceAllString(name, "_"))

	switch {
	case set.ID > 0:
		return fmt.Sprintf("%d %s.osz", set.ID, name)
	case len(set.Hash) >= 8:
		return fmt.Sprintf("%s %s.osz", set.Hash[:8], name)
	default:
		return name + ".osz"
	}
}

// ProgressReader структура для отслеживания прогресса чтения
type ProgressReader struct {
	io.Reader
	Size       int64
	OnProgress func(int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil {
		pr.OnProgress(pr.bytesRead)
	}
	return n, err
}

// FormatFileSize форматирует размер файла в читаемом виде
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
