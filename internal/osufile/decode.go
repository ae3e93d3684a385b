// Package osufile читает файлы карт .osu и собирает из папки песни или архива
// .osz набор карт для библиотеки.
package osufile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hazadus/go-songselect/internal/ruleset"
)

const (
	// Сдвиг времени в файлах старых версий формата
	earlyVersionTimingOffset = 24
	maxLineLength            = 1024 * 1024
)

type section int

const (
	secNone section = iota
	secGeneral
	secMetadata
	secDifficulty
)

// File заголовочные секции одного .osu файла. Объекты, тайминги и события
// не разбираются
type File struct {
	FormatVersion int

	AudioFilename string
	PreviewTime   int // -1, если не задано
	Mode          ruleset.ID

	Title        string
	TitleUnicode string
	Artist       string
	Creator      string
	Version      string
	Source       string
	Tags         string
	BeatmapID    int
	BeatmapSetID int

	HPDrainRate       float64
	CircleSize        float64
	OverallDifficulty float64
	ApproachRate      float64
}

// DecodeFile читает .osu файл с диска
func DecodeFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла карты: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode разбирает .osu файл
func Decode(r io.Reader) (*File, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineLength)

	var header string
	for sc.Scan() {
		// Файлы из Windows часто начинаются с BOM
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line != "" {
			header = line
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения файла карты: %w", err)
	}

	const prefix = "osu file format v"
	if !strings.HasPrefix(strings.ToLower(header), prefix) {
		return nil, fmt.Errorf("некорректный заголовок .osu: %q", header)
	}
	version, err := strconv.Atoi(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return nil, fmt.Errorf("некорректная версия формата в заголовке %q: %w", header, err)
	}

	f := &File{
		FormatVersion:     version,
		PreviewTime:       -1,
		HPDrainRate:       5,
		CircleSize:        5,
		OverallDifficulty: 5,
		ApproachRate:      -1,
	}

	offset := 0
	if version < 5 {
		offset = earlyVersionTimingOffset
	}

	sec := secNone
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			switch strings.ToLower(line) {
			case "[general]":
				sec = secGeneral
			case "[metadata]":
				sec = secMetadata
			case "[difficulty]":
				sec = secDifficulty
			default:
				sec = secNone
			}
			continue
		}

		k, v := splitKeyVal(line)
		switch sec {
		case secGeneral:
			switch strings.ToLower(k) {
			case "audiofilename":
				f.AudioFilename = standardisePath(v)
			case "previewtime":
				if t := parseInt(v, -1); t != -1 {
					f.PreviewTime = t + offset
				}
			case "mode":
				f.Mode = ruleset.ID(parseInt(v, 0))
			}
		case secMetadata:
			switch strings.ToLower(k) {
			case "title":
				f.Title = v
			case "titleunicode":
				f.TitleUnicode = v
			case "artist":
				f.Artist = v
			case "creator":
				f.Creator = v
			case "version":
				f.Version = v
			case "source":
				f.Source = v
			case "tags":
				f.Tags = v
			case "beatmapid":
				f.BeatmapID = parseInt(v, 0)
			case "beatmapsetid":
				f.BeatmapSetID = parseInt(v, 0)
			}
		case secDifficulty:
			switch strings.ToLower(k) {
			case "hpdrainrate":
				f.HPDrainRate = clamp(parseFloat(v, 5), 0, 10)
			case "circlesize":
				f.CircleSize = clamp(parseFloat(v, 5), 0, 10)
			case "overalldifficulty":
				f.OverallDifficulty = clamp(parseFloat(v, 5), 0, 10)
			case "approachrate":
				f.ApproachRate = clamp(parseFloat(v, 5), 0, 10)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения файла карты: %w", err)
	}

	// В старых картах AR совпадает с OD
	if f.ApproachRate < 0 {
		f.ApproachRate = f.OverallDifficulty
	}
	if !f.Mode.Valid() {
		return nil, fmt.Errorf("неизвестный режим игры %d в карте %q", int(f.Mode), f.Version)
	}
	return f, nil
}

func splitKeyVal(line string) (key, val string) {
	i := strings.Index(line, ":")
	if i < 0 {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
}

func parseInt(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func parseFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func standardisePath(p string) string {
	p = strings.Trim(p, "\"")
	return strings.ReplaceAll(p, "\\", "/")
}
