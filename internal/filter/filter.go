// Package filter отбирает и упорядочивает наборы карт для карусели.
//
// Все функции пакета чистые: исходная коллекция никогда не изменяется.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hazadus/go-songselect/internal/data"
	"github.com/hazadus/go-songselect/internal/ruleset"
)

// SortMode режим сортировки групп карусели
type SortMode int

const (
	// SortArtist - по исполнителю
	SortArtist SortMode = iota
	// SortTitle - по названию
	SortTitle
	// SortAuthor - по автору карты
	SortAuthor
	// SortDifficulty - по сложности
	SortDifficulty
)

var sortNames = []string{"artist", "title", "author", "difficulty"}

// String возвращает имя режима сортировки
func (m SortMode) String() string {
	if m >= 0 && int(m) < len(sortNames) {
		return sortNames[m]
	}
	return fmt.Sprintf("sort(%d)", int(m))
}

// ParseSortMode разбирает имя режима сортировки
func ParseSortMode(s string) (SortMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range sortNames {
		if s == name {
			return SortMode(i), nil
		}
	}
	return SortTitle, fmt.Errorf("неизвестный режим сортировки: %q", s)
}

// Criteria условия отбора карт
type Criteria struct {
	SearchText    string
	Ruleset       ruleset.ID
	AllowConverts bool // Показывать карты osu!standard в других режимах
}

// Terms разбивает строку поиска на термы в нижнем регистре
func (c Criteria) Terms() []string {
	return strings.Fields(strings.ToLower(c.SearchText))
}

// Group видимый набор карт с отобранными сложностями
type Group struct {
	Set      *data.BeatmapSet
	Beatmaps []*data.Beatmap
}

// Contains сообщает, есть ли в группе карта с указанным ID
func (g Group) Contains(beatmapID int) bool {
	return g.IndexOf(beatmapID) >= 0
}

// IndexOf возвращает позицию карты в группе или -1
func (g Group) IndexOf(beatmapID int) int {
	for i, b := range g.Beatmaps {
		if b.ID == beatmapID {
			return i
		}
	}
	return -1
}

// MatchesBeatmap проверяет одну сложность набора
func MatchesBeatmap(set *data.BeatmapSet, beatmap *data.Beatmap, criteria Criteria) bool {
	return matches(set, beatmap, criteria, criteria.Terms())
}

func matches(set *data.BeatmapSet, beatmap *data.Beatmap, criteria Criteria, terms []string) bool {
	if beatmap.Ruleset != criteria.Ruleset {
		if !(criteria.AllowConverts && beatmap.Ruleset == ruleset.Osu) {
			return false
		}
	}

	if len(terms) == 0 {
		return true
	}

	haystack := searchableText(set, beatmap)
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

func searchableText(set *data.BeatmapSet, beatmap *data.Beatmap) string {
	m := set.Metadata
	return strings.ToLower(strings.Join([]string{
		m.Artist, m.Title, m.Author, m.Source, m.Tags, beatmap.Version,
	}, " "))
}

// Apply возвращает видимые группы в порядке сортировки
func Apply(sets []*data.BeatmapSet, criteria Criteria, mode SortMode) []Group {
	terms := criteria.Terms()
	groups := make([]Group, 0, len(sets))

	for _, set := range sets {
		var visible []*data.Beatmap
		for _, b := range orderedBeatmaps(set) {
			if matches(set, b, criteria, terms) {
				visible = append(visible, b)
			}
		}
		if len(visible) > 0 {
			groups = append(groups, Group{Set: set, Beatmaps: visible})
		}
	}

	cmp := Comparator(mode)
	sort.SliceStable(groups, func(i, j int) bool {
		return cmp(groups[i].Set, groups[j].Set) < 0
	})
	return groups
}

// orderedBeatmaps упорядочивает сложности набора по OD, затем по имени
func orderedBeatmaps(set *data.BeatmapSet) []*data.Beatmap {
	beatmaps := make([]*data.Beatmap, len(set.Beatmaps))
	for i := range set.Beatmaps {
		beatmaps[i] = &set.Beatmaps[i]
	}
	sort.SliceStable(beatmaps, func(i, j int) bool {
		a, b := beatmaps[i], beatmaps[j]
		if a.Difficulty.OverallDifficulty != b.Difficulty.OverallDifficulty {
			return a.Difficulty.OverallDifficulty < b.Difficulty.OverallDifficulty
		}
		return a.Version < b.Version
	})
	return beatmaps
}

// Comparator возвращает функцию сравнения наборов для режима сортировки
func Comparator(mode SortMode) func(a, b *data.BeatmapSet) int {
	// collate.Collator хранит внутренний буфер, поэтому создается на каждый вызов
	col := collate.New(language.Und, collate.IgnoreCase)

	switch mode {
	case SortArtist:
		return func(a, b *data.BeatmapSet) int {
			return col.CompareString(a.Metadata.Artist, b.Metadata.Artist)
		}
	case SortAuthor:
		return func(a, b *data.BeatmapSet) int {
			return col.CompareString(a.Metadata.Author, b.Metadata.Author)
		}
	case SortDifficulty:
		return func(a, b *data.BeatmapSet) int {
			da, db := a.MaxOverallDifficulty(), b.MaxOverallDifficulty()
			switch {
			case da < db:
				return -1
			case da > db:
				return 1
			}
			return 0
		}
	default:
		return func(a, b *data.BeatmapSet) int {
			return col.CompareString(a.Metadata.Title, b.Metadata.Title)
		}
	}
}
