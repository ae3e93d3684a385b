package data

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hazadus/go-songselect/internal/ruleset"
)

// Difficulty параметры сложности карты
type Difficulty struct {
	OverallDifficulty float64 `yaml:"overall_difficulty"`
	HPDrainRate       float64 `yaml:"hp_drain_rate"`
	CircleSize        float64 `yaml:"circle_size"`
	ApproachRate      float64 `yaml:"approach_rate"`
}

// Beatmap одна сложность (чарт) внутри набора
type Beatmap struct {
	ID           int        `yaml:"id"`
	BeatmapSetID int        `yaml:"beatmap_set_id"` // Ссылка на родительский набор, не владеющая
	Version      string     `yaml:"version"`
	Ruleset      ruleset.ID `yaml:"ruleset"`
	Path         string     `yaml:"path"` // Путь к .osu файлу внутри папки набора
	Difficulty   Difficulty `yaml:"difficulty"`
}

// Metadata метаданные песни
type Metadata struct {
	Artist      string `yaml:"artist"`
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	Source      string `yaml:"source,omitempty"`
	Tags        string `yaml:"tags,omitempty"`
	AudioFile   string `yaml:"audio_file,omitempty"`
	PreviewTime int    `yaml:"preview_time,omitempty"` // Начало превью в миллисекундах
	Description string `yaml:"description,omitempty"`  // Описание в формате Markdown
}

// BeatmapSet песня с одной или несколькими сложностями
type BeatmapSet struct {
	ID        int       `yaml:"id"`
	Hash      string    `yaml:"hash,omitempty"`
	Metadata  Metadata  `yaml:"metadata"`
	Beatmaps  []Beatmap `yaml:"beatmaps"`
	Directory string    `yaml:"directory,omitempty"` // Локальная папка с файлами набора
	Length    int       `yaml:"length,omitempty"`    // Длина аудио в секундах
	FileSize  int64     `yaml:"file_size,omitempty"` // Размер архива в байтах
	URL       string    `yaml:"url,omitempty"`       // URL архива в зеркале S3
}

// SameAs сообщает, описывают ли два набора одну и ту же песню
func (s *BeatmapSet) SameAs(other *BeatmapSet) bool {
	if s.ID != 0 && s.ID == other.ID {
		return true
	}
	return s.Hash != "" && s.Hash == other.Hash
}

// MaxOverallDifficulty возвращает наибольшую OD среди сложностей набора
func (s *BeatmapSet) MaxOverallDifficulty() float64 {
	var maxOD float64
	for i, b := range s.Beatmaps {
		if i == 0 || b.Difficulty.OverallDifficulty > maxOD {
			maxOD = b.Difficulty.OverallDifficulty
		}
	}
	return maxOD
}

// Link проставляет ссылку на набор во всех его сложностях
func (s *BeatmapSet) Link() {
	for i := range s.Beatmaps {
		s.Beatmaps[i].BeatmapSetID = s.ID
	}
}

// Clone возвращает глубокую копию набора
func (s *BeatmapSet) Clone() *BeatmapSet {
	clone := *s
	clone.Beatmaps = make([]Beatmap, len(s.Beatmaps))
	copy(clone.Beatmaps, s.Beatmaps)
	return &clone
}

// AppData коллекция наборов карт, сохраняемая между запусками
type AppData struct {
	Sets              []BeatmapSet `yaml:"sets"`
	SelectedBeatmapID int          `yaml:"selected_beatmap_id,omitempty"`
}

// NewAppData создает новую структуру AppData
func NewAppData() *AppData {
	return &AppData{
		Sets: make([]BeatmapSet, 0),
	}
}

// LoadData загружает данные из файла
func (d *AppData) LoadData(filePath string) error {
	path, err := expandHome(filePath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// Если файл не найден, инициализируем пустыми данными
		if os.IsNotExist(err) {
			*d = *NewAppData()
			return nil
		}
		return fmt.Errorf("ошибка чтения файла данных: %w", err)
	}
	if len(data) == 0 {
		*d = *NewAppData()
		return nil
	}
	if err := yaml.Unmarshal(data, d); err != nil {
		return fmt.Errorf("ошибка разбора данных: %w", err)
	}
	if d.Sets == nil {
		d.Sets = make([]BeatmapSet, 0)
	}
	// Ссылки на набор в файле не хранятся надежно, восстанавливаем их
	for i := range d.Sets {
		d.Sets[i].Link()
	}
	return nil
}

// SaveData сохраняет данные в файл
func (d *AppData) SaveData(filePath string) error {
	path, err := expandHome(filePath)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("ошибка сериализации данных: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла данных: %w", err)
	}
	return nil
}

// AddSet добавляет набор. Повторное добавление того же набора ничего не меняет,
// в этом случае возвращается уже сохраненный набор и false.
func (d *AppData) AddSet(set BeatmapSet) (*BeatmapSet, bool) {
	for i := range d.Sets {
		if d.Sets[i].SameAs(&set) {
			return &d.Sets[i], false
		}
	}

	// Локальным наборам без онлайн-ID выдаем отрицательные идентификаторы
	if set.ID == 0 {
		set.ID = d.nextLocalSetID()
	}
	nextBeatmapID := d.nextLocalBeatmapID()
	set.Beatmaps = append([]Beatmap(nil), set.Beatmaps...)
	for i := range set.Beatmaps {
		if set.Beatmaps[i].ID == 0 {
			set.Beatmaps[i].ID = nextBeatmapID
			nextBeatmapID--
		}
	}
	set.Link()

	d.Sets = append(d.Sets, set)
	return &d.Sets[len(d.Sets)-1], true
}

// UpdateSet заменяет сохраненный набор с тем же ID
func (d *AppData) UpdateSet(set BeatmapSet) error {
	for i := range d.Sets {
		if d.Sets[i].ID == set.ID {
			set.Link()
			d.Sets[i] = set
			return nil
		}
	}
	return fmt.Errorf("набора с ID %d не найдено", set.ID)
}

// DeleteSetByID удаляет набор по ID
func (d *AppData) DeleteSetByID(id int) error {
	for i := range d.Sets {
		if d.Sets[i].ID == id {
			d.Sets = append(d.Sets[:i], d.Sets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("набора с ID %d не найдено", id)
}

// DeleteAll удаляет все наборы и сбрасывает сохраненный выбор
func (d *AppData) DeleteAll() {
	d.Sets = make([]BeatmapSet, 0)
	d.SelectedBeatmapID = 0
}

// SetByID возвращает набор по ID
func (d *AppData) SetByID(id int) (*BeatmapSet, error) {
	for i := range d.Sets {
		if d.Sets[i].ID == id {
			return &d.Sets[i], nil
		}
	}
	return nil, fmt.Errorf("набора с ID %d не найдено", id)
}

// BeatmapByID возвращает сложность и набор, которому она принадлежит
func (d *AppData) BeatmapByID(id int) (*Beatmap, *BeatmapSet, error) {
	for i := range d.Sets {
		for j := range d.Sets[i].Beatmaps {
			if d.Sets[i].Beatmaps[j].ID == id {
				return &d.Sets[i].Beatmaps[j], &d.Sets[i], nil
			}
		}
	}
	return nil, nil, fmt.Errorf("карты с ID %d не найдено", id)
}

func (d *AppData) nextLocalSetID() int {
	minID := 0
	for _, s := range d.Sets {
		if s.ID < minID {
			minID = s.ID
		}
	}
	return minID - 1
}

func (d *AppData) nextLocalBeatmapID() int {
	minID := 0
	for _, s := range d.Sets {
		for _, b := range s.Beatmaps {
			if b.ID < minID {
				minID = b.ID
			}
		}
	}
	return minID - 1
}

func expandHome(filePath string) (string, error) {
	if !strings.HasPrefix(filePath, "~") {
		return filePath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return strings.Replace(filePath, "~", home, 1), nil
}
