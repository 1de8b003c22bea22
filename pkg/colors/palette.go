package colors

import (
	"strconv"

	"github.com/harrisonrobin/taskgrid/pkg/model"
)

// CompletedColorID is Google Calendar's "Graphite"; done tasks always use it.
const CompletedColorID = "8"

// googleHex maps Google Calendar event colour ids to their web hex values.
var googleHex = map[string]string{
	"1":  "#7986cb", // Lavender
	"2":  "#33b679", // Sage
	"3":  "#8e24aa", // Grape
	"4":  "#e67c73", // Flamingo
	"5":  "#f6bf26", // Banana
	"6":  "#f4511e", // Tangerine
	"7":  "#039be5", // Peacock
	"8":  "#616161", // Graphite
	"9":  "#3f51b5", // Blueberry
	"10": "#0b8043", // Basil
	"11": "#d50000", // Tomato
}

// Palette assigns colour keys to tasks. Keys are stable: the same task id
// always maps to the same key for a given palette.
type Palette struct {
	Colors    []string
	Completed string
}

// DefaultPalette uses Google Calendar colour ids 1-11, reserving Graphite for done tasks.
func DefaultPalette() Palette {
	var ids []string
	for i := 1; i <= 11; i++ {
		id := strconv.Itoa(i)
		if id == CompletedColorID {
			continue
		}
		ids = append(ids, id)
	}
	return Palette{Colors: ids, Completed: CompletedColorID}
}

// Key returns the colour key for a task.
func (p Palette) Key(taskID string, status model.Status) string {
	if status == model.StatusDone {
		return p.Completed
	}
	if len(p.Colors) == 0 {
		return p.Completed
	}
	return p.Colors[Hash(taskID)%uint32(len(p.Colors))]
}

// Hash is a 31-based polynomial rolling hash over the runes of s.
func Hash(s string) uint32 {
	var h uint32
	for _, r := range s {
		h = h*31 + uint32(r)
	}
	return h
}

// Hex returns the display colour for a key. Keys that are already hex
// colours pass through; unknown keys fall back to Lavender.
func Hex(key string) string {
	if len(key) > 0 && key[0] == '#' {
		return key
	}
	if hex, ok := googleHex[key]; ok {
		return hex
	}
	return googleHex["1"]
}
