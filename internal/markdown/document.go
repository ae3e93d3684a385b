package markdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hazadus/go-songselect/internal/data"
	"github.com/hazadus/go-songselect/internal/utils"
)

// SetDocument собирает Markdown-страницу набора: метаданные, таблицу сложностей
// и описание автора
func SetDocument(set *data.BeatmapSet) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s - %s\n\n", set.Metadata.Artist, set.Metadata.Title)
	fmt.Fprintf(&b, "- **Автор:** %s\n", set.Metadata.Author)
	if set.ID > 0 {
		fmt.Fprintf(&b, "- **ID набора:** %d\n", set.ID)
	}
	if set.Metadata.Source != "" {
		fmt.Fprintf(&b, "- **Источник:** %s\n", set.Metadata.Source)
	}
	if set.Metadata.Tags != "" {
		fmt.Fprintf(&b, "- **Теги:** %s\n", set.Metadata.Tags)
	}
	if set.Length > 0 {
		fmt.Fprintf(&b, "- **Длина:** %s\n", utils.FormatLength(set.Length))
	}
	if set.URL != "" {
		fmt.Fprintf(&b, "- **Зеркало:** %s\n", set.URL)
	}

	beatmaps := make([]data.Beatmap, len(set.Beatmaps))
	copy(beatmaps, set.Beatmaps)
	sort.SliceStable(beatmaps, func(i, j int) bool {
		return beatmaps[i].Difficulty.OverallDifficulty < beatmaps[j].Difficulty.OverallDifficulty
	})

	b.WriteString("\n## Сложности\n\n")
	b.WriteString("| Версия | Режим | OD | HP | CS | AR |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, bm := range beatmaps {
		d := bm.Difficulty
		fmt.Fprintf(&b, "| %s | %s | %.1f | %.1f | %.1f | %.1f |\n",
			escapeCell(bm.Version), bm.Ruleset, d.OverallDifficulty, d.HPDrainRate, d.CircleSize, d.ApproachRate)
	}

	if desc := strings.TrimSpace(set.Metadata.Description); desc != "" {
		b.WriteString("\n## Описание\n\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
