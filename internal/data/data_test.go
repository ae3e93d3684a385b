package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hazadus/go-songselect/internal/ruleset"
)

func testSet(id int, artist string) BeatmapSet {
	return BeatmapSet{
		ID: id,
		Metadata: Metadata{
			Artist: artist,
			Title:  "Black Song",
			Author: "Some Guy",
		},
		Beatmaps: []Beatmap{
			{ID: id * 10, Version: "Normal", Path: "normal.osu", Difficulty: Difficulty{OverallDifficulty: 3.5}},
			{ID: id*10 + 1, Version: "Hard", Path: "hard.osu", Difficulty: Difficulty{OverallDifficulty: 5}},
		},
	}
}

func TestAddSetIsIdempotent(t *testing.T) {
	d := NewAppData()

	stored, added := d.AddSet(testSet(1234, "MONACA"))
	if !added {
		t.Fatal("Первое добавление должно добавить набор")
	}
	if stored.Beatmaps[0].BeatmapSetID != 1234 {
		t.Errorf("Ожидалась ссылка на набор 1234, получено %d", stored.Beatmaps[0].BeatmapSetID)
	}

	_, added = d.AddSet(testSet(1234, "Other"))
	if added {
		t.Error("Повторное добавление не должно добавлять набор")
	}
	if len(d.Sets) != 1 {
		t.Fatalf("Ожидался 1 набор, получено %d", len(d.Sets))
	}
	if d.Sets[0].Metadata.Artist != "MONACA" {
		t.Errorf("Повторное добавление не должно менять данные, получено %s", d.Sets[0].Metadata.Artist)
	}
}

func TestAddSetByHash(t *testing.T) {
	d := NewAppData()

	local := BeatmapSet{Hash: "abc", Metadata: Metadata{Artist: "A", Title: "T"}, Beatmaps: []Beatmap{{Version: "Easy"}}}
	first, added := d.AddSet(local)
	if !added {
		t.Fatal("Ожидалось добавление локального набора")
	}
	if first.ID >= 0 {
		t.Errorf("Локальный набор должен получить отрицательный ID, получено %d", first.ID)
	}
	if first.Beatmaps[0].ID >= 0 {
		t.Errorf("Локальная карта должна получить отрицательный ID, получено %d", first.Beatmaps[0].ID)
	}

	if _, added := d.AddSet(local); added {
		t.Error("Набор с тем же хешем не должен добавляться повторно")
	}

	second, _ := d.AddSet(BeatmapSet{Hash: "def", Beatmaps: []Beatmap{{Version: "Easy"}}})
	if second.ID == d.Sets[0].ID {
		t.Error("Локальные наборы должны получать разные ID")
	}
	if second.Beatmaps[0].ID == d.Sets[0].Beatmaps[0].ID {
		t.Error("Локальные карты должны получать разные ID")
	}
}

func TestDeleteAndLookup(t *testing.T) {
	d := NewAppData()
	d.AddSet(testSet(1, "A"))
	d.AddSet(testSet(2, "B"))
	d.SelectedBeatmapID = 20

	beatmap, set, err := d.BeatmapByID(21)
	if err != nil {
		t.Fatalf("Ошибка поиска карты: %v", err)
	}
	if beatmap.Version != "Hard" || set.ID != 2 {
		t.Errorf("Найдена не та карта: %s из набора %d", beatmap.Version, set.ID)
	}

	if err := d.DeleteSetByID(1); err != nil {
		t.Fatalf("Ошибка удаления: %v", err)
	}
	if _, err := d.SetByID(1); err == nil {
		t.Error("Удаленный набор не должен находиться")
	}
	if err := d.DeleteSetByID(1); err == nil {
		t.Error("Ожидалась ошибка при повторном удалении")
	}

	d.DeleteAll()
	if len(d.Sets) != 0 || d.SelectedBeatmapID != 0 {
		t.Error("DeleteAll должен очистить наборы и выбор")
	}
}

func TestUpdateSet(t *testing.T) {
	d := NewAppData()
	d.AddSet(testSet(1, "A"))

	updated := testSet(1, "Edited")
	if err := d.UpdateSet(updated); err != nil {
		t.Fatalf("Ошибка обновления: %v", err)
	}
	if d.Sets[0].Metadata.Artist != "Edited" {
		t.Errorf("Ожидался Edited, получено %s", d.Sets[0].Metadata.Artist)
	}
	if err := d.UpdateSet(testSet(99, "X")); err == nil {
		t.Error("Ожидалась ошибка для несуществующего набора")
	}
}

func TestSaveAndLoadData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")

	d := NewAppData()
	set := testSet(7, "MONACA")
	set.Beatmaps[1].Ruleset = ruleset.Taiko
	set.Metadata.Description = "**bold**"
	d.AddSet(set)
	d.SelectedBeatmapID = 71

	if err := d.SaveData(path); err != nil {
		t.Fatalf("Ошибка сохранения: %v", err)
	}

	loaded := NewAppData()
	if err := loaded.LoadData(path); err != nil {
		t.Fatalf("Ошибка загрузки: %v", err)
	}
	if len(loaded.Sets) != 1 {
		t.Fatalf("Ожидался 1 набор, получено %d", len(loaded.Sets))
	}
	got := loaded.Sets[0]
	if got.Beatmaps[1].Ruleset != ruleset.Taiko {
		t.Errorf("Ожидался режим taiko, получено %v", got.Beatmaps[1].Ruleset)
	}
	if got.Beatmaps[0].BeatmapSetID != 7 {
		t.Errorf("Ссылка на набор не восстановлена: %d", got.Beatmaps[0].BeatmapSetID)
	}
	if got.Metadata.Description != "**bold**" {
		t.Errorf("Описание потеряно: %q", got.Metadata.Description)
	}
	if loaded.SelectedBeatmapID != 71 {
		t.Errorf("Ожидался выбранный ID 71, получено %d", loaded.SelectedBeatmapID)
	}
}

func TestLoadDataMissingOrEmpty(t *testing.T) {
	dir := t.TempDir()

	d := NewAppData()
	d.AddSet(testSet(1, "A"))
	if err := d.LoadData(filepath.Join(dir, "missing.yaml")); err != nil {
		t.Fatalf("Отсутствующий файл не должен быть ошибкой: %v", err)
	}
	if len(d.Sets) != 0 {
		t.Error("Отсутствующий файл должен давать пустые данные")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("Ошибка записи файла: %v", err)
	}
	if err := d.LoadData(empty); err != nil {
		t.Fatalf("Пустой файл не должен быть ошибкой: %v", err)
	}

	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("sets: [unclosed"), 0644); err != nil {
		t.Fatalf("Ошибка записи файла: %v", err)
	}
	if err := d.LoadData(broken); err == nil {
		t.Error("Ожидалась ошибка разбора")
	}
}

func TestMaxOverallDifficulty(t *testing.T) {
	set := testSet(1, "A")
	if got := set.MaxOverallDifficulty(); got != 5 {
		t.Errorf("Ожидалась OD 5, получено %v", got)
	}

	clone := set.Clone()
	clone.Beatmaps[0].Version = "Changed"
	if set.Beatmaps[0].Version != "Normal" {
		t.Error("Clone должен копировать сложности")
	}
}
