// Package metadata дополняет наборы карт сведениями из аудиофайла: тегами
// исполнителя и названия и длительностью песни
package metadata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/mp3"

	"github.com/hazadus/go-songselect/internal/data"
)

// AudioTags теги аудиофайла песни
type AudioTags struct {
	Artist string
	Title  string
}

// Extractor извлекает сведения из аудиофайлов наборов
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// TagsFromReader читает теги из io.ReadSeeker. Если тегов нет, они
// определяются по имени файла source
func (e *Extractor) TagsFromReader(reader io.ReadSeeker, source string) AudioTags {
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return tagsFromName(source)
	}

	m, err := tag.ReadFrom(reader)
	if err != nil {
		return tagsFromName(source)
	}

	fallback := tagsFromName(source)
	tags := AudioTags{Artist: m.Artist(), Title: m.Title()}
	if tags.Artist == "" {
		tags.Artist = fallback.Artist
	}
	if tags.Title == "" {
		tags.Title = fallback.Title
	}
	return tags
}

// TagsFromFile читает теги из файла
func (e *Extractor) TagsFromFile(path string) AudioTags {
	file, err := os.Open(path)
	if err != nil {
		return tagsFromName(path)
	}
	defer file.Close()

	return e.TagsFromReader(file, path)
}

// Duration возвращает длительность MP3 файла
func (e *Extractor) Duration(path string) (time.Duration, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	streamer, format, err := mp3.Decode(file)
	if err != nil {
		return 0, fmt.Errorf("ошибка декодирования MP3: %w", err)
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// Enrich заполняет пустые исполнителя и название набора из тегов аудио и
// вычисляет длину песни. Ошибка означает только то, что длина не определена
func (e *Extractor) Enrich(set *data.BeatmapSet) error {
	if set.Metadata.AudioFile == "" || set.Directory == "" {
		return fmt.Errorf("у набора %q не указан аудиофайл", set.Metadata.Title)
	}
	path := filepath.Join(set.Directory, filepath.FromSlash(set.Metadata.AudioFile))

	if strings.TrimSpace(set.Metadata.Artist) == "" || strings.TrimSpace(set.Metadata.Title) == "" {
		tags := e.TagsFromFile(path)
		if strings.TrimSpace(set.Metadata.Artist) == "" {
			set.Metadata.Artist = tags.Artist
		}
		if strings.TrimSpace(set.Metadata.Title) == "" {
			set.Metadata.Title = tags.Title
		}
	}

	duration, err := e.Duration(path)
	if err != nil {
		return fmt.Errorf("ошибка получения длительности: %w", err)
	}
	set.Length = int(duration.Seconds())
	return nil
}

// tagsFromName разбирает имя файла в формате "Artist - Title"
func tagsFromName(source string) AudioTags {
	name := filepath.Base(source)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	parts := strings.Split(name, " - ")
	if len(parts) >= 2 {
		return AudioTags{
			Artist: strings.TrimSpace(parts[0]),
			Title:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
		}
	}

	return AudioTags{
		Artist: "Unknown Artist",
		Title:  name,
	}
}
