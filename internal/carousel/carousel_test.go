package carousel

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/hazadus/go-songselect/internal/data"
	"github.com/hazadus/go-songselect/internal/filter"
	"github.com/hazadus/go-songselect/internal/ruleset"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// createTestBeatmapSet создает набор из трех сложностей со случайными метаданными
func createTestBeatmapSet(i int, rng *rand.Rand) data.BeatmapSet {
	id := 1234 + i
	return data.BeatmapSet{
		ID:   id,
		Hash: fmt.Sprintf("hash-%d", id),
		Metadata: data.Metadata{
			Artist: fmt.Sprintf("MONACA %d", rng.IntN(9)),
			Title:  fmt.Sprintf("Black Song %d", rng.IntN(9)),
			Author: fmt.Sprintf("Some Guy %d", rng.IntN(9)),
		},
		Beatmaps: []data.Beatmap{
			{ID: id * 10, Version: "Normal", Path: "normal.osu", Difficulty: data.Difficulty{OverallDifficulty: 3.5}},
			{ID: id*10 + 1, Version: "Hard", Path: "hard.osu", Difficulty: data.Difficulty{OverallDifficulty: 5}},
			{ID: id*10 + 2, Version: "Insane", Path: "insane.osu", Difficulty: data.Difficulty{OverallDifficulty: 7}},
		},
	}
}

func importTestSets(c *Carousel) {
	rng := rand.New(rand.NewPCG(42, 42))
	for i := 0; i < 100; i += 10 {
		c.Import(createTestBeatmapSet(i, rng))
	}
}

func TestEmptyCarouselSelectsDefault(t *testing.T) {
	c := New(Options{Rand: testRand()})

	if !c.IsDefault() {
		t.Error("Пустая карусель должна выбрать карту по умолчанию")
	}
	if c.State() != HasDefaultSelected {
		t.Errorf("Ожидалось состояние default, получено %s", c.State())
	}
	if c.Current().Beatmap == nil || c.Current().Set == nil {
		t.Fatal("Текущий выбор всегда должен быть определен")
	}

	var zero Carousel
	if zero.State() != Empty {
		t.Errorf("Неинициализированная карусель должна быть в состоянии empty, получено %s", zero.State())
	}
}

func TestImportSelectsRandomMap(t *testing.T) {
	c := New(Options{Rand: testRand()})
	importTestSets(c)

	if c.Len() != 10 {
		t.Fatalf("Ожидалось 10 наборов, получено %d", c.Len())
	}
	if c.IsDefault() {
		t.Error("После импорта должна быть выбрана случайная карта")
	}
	if c.State() != HasUserSelected {
		t.Errorf("Ожидалось состояние selected, получено %s", c.State())
	}
}

func TestReloadKeepsRandomSelection(t *testing.T) {
	first := New(Options{Rand: testRand()})
	importTestSets(first)

	sets := make([]data.BeatmapSet, 0)
	for _, s := range first.Sets() {
		sets = append(sets, *s)
	}

	reloaded := New(Options{Sets: sets, Rand: testRand()})
	if reloaded.IsDefault() {
		t.Error("После перезагрузки с картами должна быть выбрана карта из коллекции")
	}

	restored := New(Options{
		Sets:              sets,
		SelectedBeatmapID: first.Current().Beatmap.ID,
		Rand:              testRand(),
	})
	if restored.Current().Beatmap.ID != first.Current().Beatmap.ID {
		t.Errorf("Ожидалось восстановление карты %d, получено %d",
			first.Current().Beatmap.ID, restored.Current().Beatmap.ID)
	}
}

func TestRestoreSkipsHiddenBeatmap(t *testing.T) {
	sets := []data.BeatmapSet{
		{
			ID:       1,
			Metadata: data.Metadata{Artist: "Camellia", Title: "Ghost"},
			Beatmaps: []data.Beatmap{{ID: 10, Version: "Oni", Ruleset: ruleset.Taiko}},
		},
		{
			ID:       2,
			Metadata: data.Metadata{Artist: "MONACA", Title: "Black Song"},
			Beatmaps: []data.Beatmap{{ID: 20, Version: "Normal"}},
		},
	}

	c := New(Options{Sets: sets, SelectedBeatmapID: 10, Rand: testRand()})
	if c.Current().Beatmap.ID != 20 {
		t.Errorf("Скрытая карта не должна восстанавливаться, ожидалась 20, получено %d", c.Current().Beatmap.ID)
	}

	visible := New(Options{
		Sets:              sets,
		Criteria:          filter.Criteria{Ruleset: ruleset.Taiko},
		SelectedBeatmapID: 10,
		Rand:              testRand(),
	})
	if visible.Current().Beatmap.ID != 10 {
		t.Errorf("Видимая карта должна восстанавливаться, ожидалась 10, получено %d", visible.Current().Beatmap.ID)
	}
}

func TestImportRejectsSetWithoutIdentifier(t *testing.T) {
	c := New(Options{Rand: testRand()})
	set := createTestBeatmapSet(0, testRand())
	set.ID = 0
	set.Hash = ""

	if c.Import(set) || c.Import(set) {
		t.Error("Набор без ID и хеша не должен добавляться")
	}
	if c.Len() != 0 || !c.IsDefault() {
		t.Errorf("Коллекция должна остаться пустой, наборов: %d", c.Len())
	}
	if c.Remove(0) {
		t.Error("Удалять нечего")
	}
}

func TestImportIsIdempotent(t *testing.T) {
	c := New(Options{Rand: testRand()})
	set := createTestBeatmapSet(0, testRand())

	if !c.Import(set) {
		t.Fatal("Первый импорт должен добавить набор")
	}
	selected := c.Current().Beatmap.ID

	if c.Import(set) {
		t.Error("Повторный импорт должен игнорироваться")
	}
	if c.Len() != 1 {
		t.Errorf("Ожидался 1 набор, получено %d", c.Len())
	}
	if c.Current().Beatmap.ID != selected {
		t.Error("Повторный импорт не должен менять выбор")
	}
}

func TestDeleteAllRevertsToDefault(t *testing.T) {
	scenarios := []struct {
		name    string
		prepare func(c *Carousel)
	}{
		{name: "пустая", prepare: func(c *Carousel) {}},
		{name: "после импорта", prepare: importTestSets},
		{
			name: "выбор по умолчанию",
			prepare: func(c *Carousel) {
				importTestSets(c)
				c.Select(data.Beatmap{ID: -999})
			},
		},
		{
			name: "скрыто фильтром",
			prepare: func(c *Carousel) {
				importTestSets(c)
				c.SetFilter(filter.Criteria{SearchText: "nothing matches"})
			},
		},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			c := New(Options{Rand: testRand()})
			sc.prepare(c)

			c.DeleteAll()

			if c.Current() != c.Default() {
				t.Error("После DeleteAll текущая карта должна совпадать с картой по умолчанию")
			}
			if c.State() != HasDefaultSelected {
				t.Errorf("Ожидалось состояние default, получено %s", c.State())
			}
			if c.Len() != 0 || len(c.Visible()) != 0 {
				t.Error("После DeleteAll коллекция должна быть пустой")
			}
		})
	}
}

func TestSortByArtistIsNonDecreasing(t *testing.T) {
	c := New(Options{Rand: testRand()})
	importTestSets(c)
	selected := c.Current()

	checks := map[filter.SortMode]func(*data.BeatmapSet) string{
		filter.SortArtist: func(s *data.BeatmapSet) string { return s.Metadata.Artist },
		filter.SortTitle:  func(s *data.BeatmapSet) string { return s.Metadata.Title },
		filter.SortAuthor: func(s *data.BeatmapSet) string { return s.Metadata.Author },
	}

	for mode, key := range checks {
		c.SetSort(mode)
		visible := c.Visible()
		if len(visible) != 10 {
			t.Fatalf("Ожидалось 10 групп, получено %d", len(visible))
		}
		for i := 1; i < len(visible); i++ {
			prev, cur := strings.ToLower(key(visible[i-1].Set)), strings.ToLower(key(visible[i].Set))
			if prev > cur {
				t.Errorf("Сортировка %s нарушена на позиции %d: %q > %q", mode, i, prev, cur)
			}
		}
	}

	if c.Current() != selected {
		t.Error("Смена сортировки не должна менять выбор")
	}
}

func TestSortByDifficulty(t *testing.T) {
	c := New(Options{Rand: testRand()})
	easy := createTestBeatmapSet(1, testRand())
	easy.Beatmaps = easy.Beatmaps[:1]
	hard := createTestBeatmapSet(2, testRand())

	c.Import(hard)
	c.Import(easy)
	c.SetSort(filter.SortDifficulty)

	visible := c.Visible()
	if visible[0].Set.ID != easy.ID {
		t.Errorf("Первым должен идти более легкий набор, получено %d", visible[0].Set.ID)
	}
	if c.Sort() != filter.SortDifficulty {
		t.Errorf("Ожидался режим difficulty, получено %s", c.Sort())
	}
}

func TestSelect(t *testing.T) {
	c := New(Options{Rand: testRand()})
	importTestSets(c)

	target := c.Sets()[3].Beatmaps[2]
	if !c.Select(target) {
		t.Fatal("Выбор существующей карты должен быть успешным")
	}
	if c.Current().Beatmap.ID != target.ID {
		t.Errorf("Ожидалась карта %d, получено %d", target.ID, c.Current().Beatmap.ID)
	}
	if c.Current().Set.ID != target.BeatmapSetID {
		t.Errorf("Набор выбранной карты должен совпадать со ссылкой %d", target.BeatmapSetID)
	}

	if c.Select(data.Beatmap{ID: 424242}) {
		t.Error("Выбор отсутствующей карты должен вернуть false")
	}
	if !c.IsDefault() {
		t.Error("Выбор отсутствующей карты должен вернуть карту по умолчанию")
	}

	c.Remove(target.BeatmapSetID)
	if c.Select(target) {
		t.Error("Карта удаленного набора не должна выбираться")
	}
	if !c.IsDefault() {
		t.Error("Ожидалась карта по умолчанию")
	}
}

func TestRemoveMovesSelection(t *testing.T) {
	c := New(Options{Rand: testRand(), Sort: filter.SortDifficulty})
	for i := 1; i <= 3; i++ {
		set := createTestBeatmapSet(i, testRand())
		for j := range set.Beatmaps {
			set.Beatmaps[j].Difficulty.OverallDifficulty = float64(i)
		}
		c.Import(set)
	}

	visible := c.Visible()
	c.Select(*visible[1].Beatmaps[0])

	c.Remove(visible[1].Set.ID)
	if c.Current().Set.ID != visible[2].Set.ID {
		t.Errorf("Ожидался переход на следующий набор %d, получено %d", visible[2].Set.ID, c.Current().Set.ID)
	}

	c.Remove(visible[2].Set.ID)
	if c.Current().Set.ID != visible[0].Set.ID {
		t.Errorf("Ожидался переход на предыдущий набор %d, получено %d", visible[0].Set.ID, c.Current().Set.ID)
	}

	c.Remove(visible[0].Set.ID)
	if !c.IsDefault() {
		t.Error("После удаления последнего набора должна быть карта по умолчанию")
	}

	if c.Remove(12345) {
		t.Error("Удаление отсутствующего набора должно вернуть false")
	}
}

func TestSetFilterReselectsHiddenCurrent(t *testing.T) {
	c := New(Options{Rand: testRand()})
	taiko := createTestBeatmapSet(1, testRand())
	for i := range taiko.Beatmaps {
		taiko.Beatmaps[i].Ruleset = ruleset.Taiko
	}
	standard := createTestBeatmapSet(2, testRand())

	c.Import(taiko)
	c.Import(standard)
	c.Select(standard.Beatmaps[0])

	c.SetFilter(filter.Criteria{Ruleset: ruleset.Taiko})
	if c.Current().Set.ID != taiko.ID {
		t.Errorf("Скрытая карта должна смениться видимой, получен набор %d", c.Current().Set.ID)
	}

	c.SetFilter(filter.Criteria{Ruleset: ruleset.Mania})
	if c.Current().Set.ID != taiko.ID {
		t.Error("Если видимых карт нет, выбор должен сохраняться")
	}
	if len(c.Visible()) != 0 {
		t.Error("Для mania не должно быть видимых групп")
	}

	c.SetFilter(filter.Criteria{Ruleset: ruleset.Taiko, AllowConverts: true})
	if len(c.Visible()) != 2 {
		t.Errorf("С конвертами ожидалось 2 группы, получено %d", len(c.Visible()))
	}
	if c.Criteria().Ruleset != ruleset.Taiko {
		t.Error("Условия отбора должны сохраняться")
	}
}

func TestNavigation(t *testing.T) {
	c := New(Options{Rand: testRand(), Sort: filter.SortDifficulty})
	a := createTestBeatmapSet(1, testRand())
	a.Beatmaps = a.Beatmaps[:2]
	b := createTestBeatmapSet(2, testRand())
	b.Beatmaps = b.Beatmaps[:1]
	b.Beatmaps[0].Difficulty.OverallDifficulty = 9
	c.Import(a)
	c.Import(b)

	c.Select(a.Beatmaps[0])

	c.SelectNext()
	if c.Current().Beatmap.ID != a.Beatmaps[1].ID {
		t.Errorf("Ожидалась следующая сложность %d, получено %d", a.Beatmaps[1].ID, c.Current().Beatmap.ID)
	}
	c.SelectNext()
	if c.Current().Beatmap.ID != b.Beatmaps[0].ID {
		t.Errorf("Ожидался переход в следующий набор, получено %d", c.Current().Beatmap.ID)
	}
	c.SelectNext()
	if c.Current().Beatmap.ID != a.Beatmaps[0].ID {
		t.Errorf("Навигация должна зацикливаться, получено %d", c.Current().Beatmap.ID)
	}
	c.SelectPrevious()
	if c.Current().Beatmap.ID != b.Beatmaps[0].ID {
		t.Errorf("Ожидался переход назад в последний набор, получено %d", c.Current().Beatmap.ID)
	}
	c.SelectPrevious()
	if c.Current().Beatmap.ID != a.Beatmaps[1].ID {
		t.Errorf("Ожидалась последняя сложность предыдущего набора, получено %d", c.Current().Beatmap.ID)
	}

	c.SelectNextSet()
	if c.Current().Set.ID != b.ID {
		t.Errorf("Ожидался набор %d, получено %d", b.ID, c.Current().Set.ID)
	}
	c.SelectPreviousSet()
	if c.Current().Beatmap.ID != a.Beatmaps[0].ID {
		t.Errorf("Переход между наборами выбирает первую сложность, получено %d", c.Current().Beatmap.ID)
	}

	c.SelectRandom()
	if c.Current().Set.ID != b.ID {
		t.Error("Случайный выбор должен предпочитать другой набор")
	}
}

func TestNavigationFromDefault(t *testing.T) {
	c := New(Options{Rand: testRand()})
	if c.SelectNext() || c.SelectNextSet() || c.SelectRandom() {
		t.Error("Навигация по пустой карусели должна возвращать false")
	}

	c.Import(createTestBeatmapSet(1, testRand()))
	c.Select(data.Beatmap{})
	if !c.IsDefault() {
		t.Fatal("Ожидалась карта по умолчанию")
	}

	c.SelectNext()
	if c.IsDefault() {
		t.Error("SelectNext из карты по умолчанию должен выбрать первую видимую карту")
	}
}

func TestSelectionChangedCallback(t *testing.T) {
	set := createTestBeatmapSet(1, testRand())

	var changes []int
	c := New(Options{
		Sets: []data.BeatmapSet{set},
		Rand: testRand(),
		OnSelectionChanged: func(sel Selection) {
			changes = append(changes, sel.Beatmap.ID)
		},
	})
	if len(changes) != 0 {
		t.Fatal("Начальный выбор не должен вызывать обработчик")
	}

	other := set.Beatmaps[0]
	if other.ID == c.Current().Beatmap.ID {
		other = set.Beatmaps[1]
	}
	c.Select(other)
	c.Select(other)
	c.DeleteAll()

	if len(changes) != 2 {
		t.Fatalf("Ожидалось 2 изменения выбора, получено %d: %v", len(changes), changes)
	}
	if changes[0] != other.ID {
		t.Errorf("Ожидалась карта %d, получено %d", other.ID, changes[0])
	}
	if changes[1] != c.Default().Beatmap.ID {
		t.Error("Последнее изменение должно вернуть карту по умолчанию")
	}
}

func TestCustomDefault(t *testing.T) {
	custom := &data.BeatmapSet{
		Metadata: data.Metadata{Title: "custom"},
		Beatmaps: []data.Beatmap{{Version: "placeholder"}},
	}
	c := New(Options{Default: custom, Rand: testRand()})

	if c.Current().Set.Metadata.Title != "custom" {
		t.Errorf("Ожидалась пользовательская заглушка, получено %s", c.Current().Set.Metadata.Title)
	}
}

func TestUpdateKeepsSelection(t *testing.T) {
	set := createTestBeatmapSet(1, testRand())
	changes := 0
	c := New(Options{
		Sets:               []data.BeatmapSet{set},
		Rand:               testRand(),
		OnSelectionChanged: func(Selection) { changes++ },
	})
	c.Select(set.Beatmaps[1])
	changes = 0

	edited := set
	edited.Metadata.Title = "Edited"
	if !c.Update(edited) {
		t.Fatal("Набор должен обновиться")
	}

	cur := c.Current()
	if cur.Set.Metadata.Title != "Edited" || cur.Beatmap.ID != set.Beatmaps[1].ID {
		t.Errorf("Выбор должен остаться на той же сложности обновленного набора: %+v", cur.Beatmap)
	}
	if changes != 0 {
		t.Errorf("Обновление метаданных не должно считаться сменой выбора, вызовов: %d", changes)
	}

	// Выбранная сложность удалена из набора
	edited.Beatmaps = edited.Beatmaps[:1]
	c.Update(edited)
	if c.Current().Beatmap.ID != set.Beatmaps[0].ID {
		t.Errorf("Ожидался переход на оставшуюся сложность, получено %d", c.Current().Beatmap.ID)
	}

	if c.Update(createTestBeatmapSet(99, testRand())) {
		t.Error("Обновление отсутствующего набора должно вернуть false")
	}
}
