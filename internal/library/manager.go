// Package library содержит логику хранения наборов карт: проверку метаданных
// при импорте, удаление и сохранение коллекции на диск.
package library

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hazadus/go-songselect/internal/data"
)

// ErrMalformed возвращается, если набор не может быть принят в библиотеку
var ErrMalformed = errors.New("некорректные метаданные набора")

// Manager управляет наборами карт в приложении
type Manager struct {
	appData  *data.AppData
	dataPath string
}

// NewManager создает новый экземпляр Manager. Пустой dataPath отключает сохранение
func NewManager(appData *data.AppData, dataPath string) *Manager {
	return &Manager{
		appData:  appData,
		dataPath: dataPath,
	}
}

// Data возвращает коллекцию, с которой работает менеджер
func (m *Manager) Data() *data.AppData {
	return m.appData
}

// ListSets возвращает копии всех наборов
func (m *Manager) ListSets() []data.BeatmapSet {
	sets := make([]data.BeatmapSet, len(m.appData.Sets))
	for i := range m.appData.Sets {
		sets[i] = *m.appData.Sets[i].Clone()
	}
	return sets
}

// Validate проверяет метаданные набора перед импортом
func Validate(set *data.BeatmapSet) error {
	switch {
	case set.ID == 0 && set.Hash == "":
		return fmt.Errorf("%w: у набора нет ни ID, ни хеша", ErrMalformed)
	case strings.TrimSpace(set.Metadata.Title) == "":
		return fmt.Errorf("%w: пустое название", ErrMalformed)
	case strings.TrimSpace(set.Metadata.Artist) == "":
		return fmt.Errorf("%w: пустой исполнитель", ErrMalformed)
	case len(set.Beatmaps) == 0:
		return fmt.Errorf("%w: в наборе нет сложностей", ErrMalformed)
	}

	for _, b := range set.Beatmaps {
		if !finite(b.Difficulty) {
			return fmt.Errorf("%w: нечисловые параметры сложности %q", ErrMalformed, b.Version)
		}
		if b.Difficulty.OverallDifficulty < 0 {
			return fmt.Errorf("%w: отрицательная OD у сложности %q", ErrMalformed, b.Version)
		}
		if !b.Ruleset.Valid() {
			return fmt.Errorf("%w: неизвестный режим у сложности %q", ErrMalformed, b.Version)
		}
		if b.BeatmapSetID != 0 && set.ID != 0 && b.BeatmapSetID != set.ID {
			return fmt.Errorf("%w: сложность %q относится к набору %d", ErrMalformed, b.Version, b.BeatmapSetID)
		}
	}
	return nil
}

func finite(d data.Difficulty) bool {
	for _, v := range []float64{d.OverallDifficulty, d.HPDrainRate, d.CircleSize, d.ApproachRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Import проверяет и добавляет набор. Для уже известного набора возвращается
// сохраненная копия и added == false.
func (m *Manager) Import(set data.BeatmapSet) (stored data.BeatmapSet, added bool, err error) {
	if err := Validate(&set); err != nil {
		return data.BeatmapSet{}, false, err
	}
	ptr, added := m.appData.AddSet(set)
	return *ptr.Clone(), added, nil
}

// Update заменяет метаданные существующего набора
func (m *Manager) Update(set data.BeatmapSet) error {
	if err := Validate(&set); err != nil {
		return err
	}
	return m.appData.UpdateSet(set)
}

// Delete удаляет набор по ID
func (m *Manager) Delete(id int) error {
	if err := m.appData.DeleteSetByID(id); err != nil {
		return err
	}
	if _, _, err := m.appData.BeatmapByID(m.appData.SelectedBeatmapID); err != nil {
		m.appData.SelectedBeatmapID = 0
	}
	return nil
}

// DeleteAll удаляет все наборы
func (m *Manager) DeleteAll() {
	m.appData.DeleteAll()
}

// RememberSelection запоминает выбранную карту для следующего запуска
func (m *Manager) RememberSelection(beatmapID int) {
	m.appData.SelectedBeatmapID = beatmapID
}

// Save сохраняет коллекцию в файл данных
func (m *Manager) Save() error {
	if m.dataPath == "" {
		return nil
	}
	return m.appData.SaveData(m.dataPath)
}
