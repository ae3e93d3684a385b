// Package carousel содержит модель экрана выбора песни: коллекцию наборов,
// текущий выбор, навигацию и откат к карте по умолчанию.
//
// Carousel не потокобезопасна. Все изменения должны выполняться в одном цикле
// обновления интерфейса; фоновые импорты передают результат в этот цикл
// сообщением и только там вызывают Import.
package carousel

import (
	"math/rand/v2"
	"time"

	"github.com/hazadus/go-songselect/internal/data"
	"github.com/hazadus/go-songselect/internal/filter"
)

// State состояние выбора карусели
type State int

const (
	// Empty - карусель еще не инициализирована
	Empty State = iota
	// HasDefaultSelected - выбрана карта по умолчанию
	HasDefaultSelected
	// HasUserSelected - выбрана карта из коллекции
	HasUserSelected
)

func (s State) String() string {
	switch s {
	case HasDefaultSelected:
		return "default"
	case HasUserSelected:
		return "selected"
	default:
		return "empty"
	}
}

// Selection выбранная карта вместе с ее набором
type Selection struct {
	Set     *data.BeatmapSet
	Beatmap *data.Beatmap
}

// Options параметры создания карусели
type Options struct {
	Sets     []data.BeatmapSet
	Sort     filter.SortMode
	Criteria filter.Criteria

	// Default подменяет карту-заглушку, показываемую при пустом выборе
	Default *data.BeatmapSet

	// SelectedBeatmapID восстанавливает выбор предыдущего сеанса
	SelectedBeatmapID int

	Rand *rand.Rand

	// OnSelectionChanged вызывается после каждой смены текущей карты
	OnSelectionChanged func(Selection)
}

// Carousel модель выбора песни
type Carousel struct {
	sets     []*data.BeatmapSet
	visible  []filter.Group
	sortMode filter.SortMode
	criteria filter.Criteria

	fallback Selection
	current  Selection
	state    State

	rng      *rand.Rand
	onChange func(Selection)
}

// DefaultSet возвращает набор-заглушку с единственной картой
func DefaultSet() *data.BeatmapSet {
	return &data.BeatmapSet{
		Metadata: data.Metadata{
			Artist: "please load a beatmap!",
			Title:  "no beatmaps available!",
		},
		Beatmaps: []data.Beatmap{{Version: "dummy"}},
	}
}

// New создает карусель и выбирает начальную карту
func New(opts Options) *Carousel {
	fallback := opts.Default
	if fallback == nil || len(fallback.Beatmaps) == 0 {
		fallback = DefaultSet()
	}

	rng := opts.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	c := &Carousel{
		sortMode: opts.Sort,
		criteria: opts.Criteria,
		fallback: Selection{Set: fallback, Beatmap: &fallback.Beatmaps[0]},
		rng:      rng,
	}
	c.current = c.fallback
	c.state = HasDefaultSelected

	for _, set := range opts.Sets {
		c.add(set)
	}
	c.refresh()

	// Сохраненная карта восстанавливается, только если она видна
	c.trySelect(opts.SelectedBeatmapID)
	if g, b := c.position(); (g < 0 || b < 0) && len(c.visible) > 0 {
		c.selectRandom()
	}

	// Начальный выбор не считается изменением
	c.onChange = opts.OnSelectionChanged
	return c
}

// Current возвращает текущий выбор. Он всегда определен
func (c *Carousel) Current() Selection {
	return c.current
}

// Default возвращает карту по умолчанию
func (c *Carousel) Default() Selection {
	return c.fallback
}

// IsDefault сообщает, выбрана ли карта по умолчанию
func (c *Carousel) IsDefault() bool {
	return c.current.Beatmap == c.fallback.Beatmap
}

// State возвращает состояние выбора
func (c *Carousel) State() State {
	return c.state
}

// Sort возвращает активный режим сортировки
func (c *Carousel) Sort() filter.SortMode {
	return c.sortMode
}

// Criteria возвращает активные условия отбора
func (c *Carousel) Criteria() filter.Criteria {
	return c.criteria
}

// Visible возвращает видимые группы в порядке отображения
func (c *Carousel) Visible() []filter.Group {
	out := make([]filter.Group, len(c.visible))
	copy(out, c.visible)
	return out
}

// Sets возвращает все наборы в порядке добавления
func (c *Carousel) Sets() []*data.BeatmapSet {
	out := make([]*data.BeatmapSet, len(c.sets))
	copy(out, c.sets)
	return out
}

// Len возвращает количество наборов в коллекции
func (c *Carousel) Len() int {
	return len(c.sets)
}

// Import добавляет набор. Повторный импорт того же набора игнорируется, как и
// набор без ID и хеша. Если была выбрана карта по умолчанию, выбирается
// случайная видимая карта.
func (c *Carousel) Import(set data.BeatmapSet) bool {
	if !c.add(set) {
		return false
	}
	c.refresh()

	if c.IsDefault() && len(c.visible) > 0 {
		c.selectRandom()
	}
	return true
}

// Remove удаляет набор по ID. Если удаляется текущий набор, выбор переходит
// на следующую видимую группу, затем на предыдущую, затем на карту по умолчанию.
func (c *Carousel) Remove(setID int) bool {
	idx := -1
	for i, s := range c.sets {
		if s.ID == setID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	wasCurrent := !c.IsDefault() && c.current.Set.ID == setID
	groupIdx := c.groupIndex(setID)

	c.sets = append(c.sets[:idx], c.sets[idx+1:]...)
	c.refresh()

	if !wasCurrent {
		return true
	}

	switch {
	case len(c.visible) == 0:
		c.setCurrent(c.fallback)
	case groupIdx >= 0 && groupIdx < len(c.visible):
		c.selectGroup(groupIdx, 0)
	case groupIdx > 0:
		c.selectGroup(groupIdx-1, 0)
	default:
		c.selectGroup(0, 0)
	}
	return true
}

// Update заменяет данные набора с тем же ID. Если выбранная сложность осталась
// в наборе и видна, выбор сохраняется без уведомления об изменении.
func (c *Carousel) Update(set data.BeatmapSet) bool {
	var existing *data.BeatmapSet
	for _, s := range c.sets {
		if s.ID == set.ID {
			existing = s
			break
		}
	}
	if existing == nil {
		return false
	}

	wasCurrent := !c.IsDefault() && c.current.Set == existing
	currentID := c.current.Beatmap.ID

	*existing = *set.Clone()
	existing.Link()
	c.refresh()

	if !wasCurrent {
		return true
	}
	for i := range existing.Beatmaps {
		if existing.Beatmaps[i].ID == currentID {
			c.current = Selection{Set: existing, Beatmap: &existing.Beatmaps[i]}
			break
		}
	}

	if g, b := c.position(); g >= 0 && b >= 0 {
		return true
	}
	if len(c.visible) > 0 {
		c.selectGroup(0, 0)
	} else {
		c.setCurrent(c.fallback)
	}
	return true
}

// DeleteAll очищает коллекцию и возвращает выбор к карте по умолчанию
func (c *Carousel) DeleteAll() {
	c.sets = nil
	c.visible = nil
	c.setCurrent(c.fallback)
}

// SetSort меняет порядок видимых групп. Текущий выбор не меняется
func (c *Carousel) SetSort(mode filter.SortMode) {
	c.sortMode = mode
	c.refresh()
}

// SetFilter применяет новые условия отбора. Если текущая карта скрыта,
// выбирается первая видимая; если видимых нет, выбор сохраняется.
func (c *Carousel) SetFilter(criteria filter.Criteria) {
	c.criteria = criteria
	c.refresh()

	if c.IsDefault() || len(c.visible) == 0 {
		return
	}
	if g, b := c.position(); g < 0 || b < 0 {
		c.selectGroup(0, 0)
	}
}

// Select делает карту текущей. Если карты нет в коллекции, выбор молча
// возвращается к карте по умолчанию.
func (c *Carousel) Select(beatmap data.Beatmap) bool {
	if c.trySelect(beatmap.ID) {
		return true
	}
	c.setCurrent(c.fallback)
	return false
}

// SelectNext выбирает следующую сложность, переходя к следующей группе в конце
func (c *Carousel) SelectNext() bool {
	return c.step(1)
}

// SelectPrevious выбирает предыдущую сложность
func (c *Carousel) SelectPrevious() bool {
	return c.step(-1)
}

// SelectNextSet выбирает первую сложность следующей группы
func (c *Carousel) SelectNextSet() bool {
	return c.stepSet(1)
}

// SelectPreviousSet выбирает первую сложность предыдущей группы
func (c *Carousel) SelectPreviousSet() bool {
	return c.stepSet(-1)
}

// SelectRandom выбирает случайную видимую карту, по возможности из другого набора
func (c *Carousel) SelectRandom() bool {
	if len(c.visible) == 0 {
		return false
	}
	c.selectRandom()
	return true
}

func (c *Carousel) add(set data.BeatmapSet) bool {
	if set.ID == 0 && set.Hash == "" {
		return false
	}
	for _, existing := range c.sets {
		if existing.SameAs(&set) {
			return false
		}
	}
	stored := set.Clone()
	stored.Link()
	c.sets = append(c.sets, stored)
	return true
}

func (c *Carousel) refresh() {
	c.visible = filter.Apply(c.sets, c.criteria, c.sortMode)
}

func (c *Carousel) trySelect(beatmapID int) bool {
	if beatmapID == 0 {
		return false
	}
	for _, set := range c.sets {
		for i := range set.Beatmaps {
			if set.Beatmaps[i].ID == beatmapID {
				c.setCurrent(Selection{Set: set, Beatmap: &set.Beatmaps[i]})
				return true
			}
		}
	}
	return false
}

func (c *Carousel) groupIndex(setID int) int {
	for i, g := range c.visible {
		if g.Set.ID == setID {
			return i
		}
	}
	return -1
}

// position возвращает индексы группы и сложности текущей карты среди видимых
func (c *Carousel) position() (int, int) {
	if c.IsDefault() {
		return -1, -1
	}
	g := c.groupIndex(c.current.Set.ID)
	if g < 0 {
		return -1, -1
	}
	return g, c.visible[g].IndexOf(c.current.Beatmap.ID)
}

func (c *Carousel) step(dir int) bool {
	if len(c.visible) == 0 {
		return false
	}

	g, b := c.position()
	if g < 0 || b < 0 {
		c.selectGroup(0, 0)
		return true
	}

	b += dir
	switch {
	case b >= len(c.visible[g].Beatmaps):
		g = (g + 1) % len(c.visible)
		b = 0
	case b < 0:
		g = (g - 1 + len(c.visible)) % len(c.visible)
		b = len(c.visible[g].Beatmaps) - 1
	}
	c.selectGroup(g, b)
	return true
}

func (c *Carousel) stepSet(dir int) bool {
	if len(c.visible) == 0 {
		return false
	}

	g, _ := c.position()
	if g < 0 {
		c.selectGroup(0, 0)
		return true
	}
	c.selectGroup((g+dir+len(c.visible))%len(c.visible), 0)
	return true
}

func (c *Carousel) selectRandom() {
	candidates := make([]int, 0, len(c.visible))
	currentGroup, _ := c.position()
	for i := range c.visible {
		if i != currentGroup || len(c.visible) == 1 {
			candidates = append(candidates, i)
		}
	}
	g := candidates[c.rng.IntN(len(candidates))]
	c.selectGroup(g, c.rng.IntN(len(c.visible[g].Beatmaps)))
}

func (c *Carousel) selectGroup(g, b int) {
	group := c.visible[g]
	c.setCurrent(Selection{Set: group.Set, Beatmap: group.Beatmaps[b]})
}

func (c *Carousel) setCurrent(sel Selection) {
	changed := sel.Beatmap != c.current.Beatmap
	c.current = sel
	if sel.Beatmap == c.fallback.Beatmap {
		c.state = HasDefaultSelected
	} else {
		c.state = HasUserSelected
	}
	if changed && c.onChange != nil {
		c.onChange(sel)
	}
}
