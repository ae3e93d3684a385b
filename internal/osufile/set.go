package osufile

import (
	"archive/zip"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hazadus/go-songselect/internal/data"
)

// DescriptionFile необязательное описание набора в формате Markdown
const DescriptionFile = "description.md"

// LoadDirectory собирает набор карт из папки песни. Каждый .osu файл в папке
// становится отдельной сложностью.
func LoadDirectory(dir string) (data.BeatmapSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return data.BeatmapSet{}, fmt.Errorf("ошибка чтения папки набора: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".osu") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return data.BeatmapSet{}, fmt.Errorf("в папке %s нет файлов .osu", dir)
	}
	sort.Strings(names)

	set := data.BeatmapSet{Directory: dir}
	hash := md5.New()

	for _, name := range names {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return data.BeatmapSet{}, fmt.Errorf("ошибка чтения %s: %w", name, err)
		}
		hash.Write(raw)

		f, err := Decode(bytes.NewReader(raw))
		if err != nil {
			return data.BeatmapSet{}, fmt.Errorf("ошибка разбора %s: %w", name, err)
		}

		if set.ID == 0 && f.BeatmapSetID > 0 {
			set.ID = f.BeatmapSetID
		}
		if set.Metadata.Title == "" {
			set.Metadata = metadataFrom(f)
		}
		set.Beatmaps = append(set.Beatmaps, data.Beatmap{
			ID:      f.BeatmapID,
			Version: f.Version,
			Ruleset: f.Mode,
			Path:    name,
			Difficulty: data.Difficulty{
				OverallDifficulty: f.OverallDifficulty,
				HPDrainRate:       f.HPDrainRate,
				CircleSize:        f.CircleSize,
				ApproachRate:      f.ApproachRate,
			},
		})
	}
	set.Hash = hex.EncodeToString(hash.Sum(nil))

	if desc, err := os.ReadFile(filepath.Join(dir, DescriptionFile)); err == nil {
		set.Metadata.Description = string(desc)
	}

	set.Link()
	return set, nil
}

func metadataFrom(f *File) data.Metadata {
	title := f.Title
	if title == "" {
		title = f.TitleUnicode
	}
	return data.Metadata{
		Artist:      f.Artist,
		Title:       title,
		Author:      f.Creator,
		Source:      f.Source,
		Tags:        f.Tags,
		AudioFile:   f.AudioFilename,
		PreviewTime: f.PreviewTime,
	}
}

// LoadArchive распаковывает архив .osz в папку внутри songsDir и собирает из
// нее набор карт
func LoadArchive(archivePath, songsDir string) (data.BeatmapSet, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return data.BeatmapSet{}, fmt.Errorf("ошибка получения информации об архиве: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	dest := filepath.Join(songsDir, name)
	if err := Extract(archivePath, dest); err != nil {
		return data.BeatmapSet{}, err
	}

	set, err := LoadDirectory(dest)
	if err != nil {
		return data.BeatmapSet{}, err
	}
	set.FileSize = info.Size()
	return set, nil
}

// Extract распаковывает архив .osz в папку dest
func Extract(archivePath, dest string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("ошибка открытия архива: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("ошибка создания папки набора: %w", err)
	}

	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, zf := range r.File {
		target := filepath.Join(dest, filepath.FromSlash(zf.Name))
		if !strings.HasPrefix(target, root) {
			return fmt.Errorf("недопустимый путь в архиве: %s", zf.Name)
		}

		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("ошибка создания папки: %w", err)
			}
			continue
		}
		if err := extractFile(zf, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(zf *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("ошибка создания папки: %w", err)
	}

	src, err := zf.Open()
	if err != nil {
		return fmt.Errorf("ошибка чтения %s из архива: %w", zf.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("ошибка создания файла %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("ошибка распаковки %s: %w", zf.Name, err)
	}
	return nil
}

// Pack упаковывает папку набора в архив .osz
func Pack(dir, archivePath string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("ошибка создания архива: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("ошибка упаковки набора: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("ошибка записи архива: %w", err)
	}
	return nil
}
