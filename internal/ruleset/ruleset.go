// Package ruleset описывает игровые режимы, для которых пишутся карты
package ruleset

import (
	"fmt"
	"strings"
)

// ID идентификатор режима игры (совпадает с полем Mode в .osu файле)
type ID int

const (
	// Osu - стандартный режим
	Osu ID = iota
	// Taiko - барабанный режим
	Taiko
	// Catch - режим "Catch the Beat"
	Catch
	// Mania - клавишный режим
	Mania
)

var names = map[ID]string{
	Osu:   "osu",
	Taiko: "taiko",
	Catch: "catch",
	Mania: "mania",
}

// All возвращает все известные режимы в порядке идентификаторов
func All() []ID {
	return []ID{Osu, Taiko, Catch, Mania}
}

// String возвращает короткое имя режима
func (id ID) String() string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("ruleset(%d)", int(id))
}

// Valid сообщает, известен ли режим
func (id ID) Valid() bool {
	_, ok := names[id]
	return ok
}

// Parse разбирает имя режима. Допускаются также числовые идентификаторы и "fruits"
func Parse(s string) (ID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "osu", "standard", "0":
		return Osu, nil
	case "taiko", "1":
		return Taiko, nil
	case "catch", "fruits", "ctb", "2":
		return Catch, nil
	case "mania", "3":
		return Mania, nil
	}
	return Osu, fmt.Errorf("неизвестный режим игры: %q", s)
}
