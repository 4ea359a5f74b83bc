// Package ordering holds the three-level manual ordering model: category
// order, subcategory order, and the implicit item order of the collection.
package ordering

import (
	"fmt"
	"strings"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// Direction is a single-step move.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down" in any case.
func ParseDirection(raw string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(raw))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	default:
		return "", fmt.Errorf("direction must be %q or %q, got %q", Up, Down, raw)
	}
}

func (d Direction) step() int {
	if d == Up {
		return -1
	}
	return 1
}

// MoveCategory swaps label with its neighbour in order. Unknown labels and
// moves past either end leave the order alone and report false.
func MoveCategory(order []string, label string, dir Direction) ([]string, bool) {
	return swapLabel(order, label, dir)
}

// MoveSubcategory behaves like MoveCategory, except that a label missing from
// the order is appended before the move is attempted. The returned bool is
// true whenever the order changed, including by the append alone.
func MoveSubcategory(order []string, label string, dir Direction) ([]string, bool) {
	appended := false
	if indexOf(order, label) < 0 {
		order = append(cloneLabels(order), label)
		appended = true
	}
	out, moved := swapLabel(order, label, dir)
	return out, moved || appended
}

// MoveItem swaps the record with the given id and its neighbour among records
// sharing its category label and resolved subcategory name. The swap happens
// on the global positions. Returns the input untouched with false for unknown
// ids and boundary moves.
func MoveItem(collection []standard.Standard, id string, dir Direction) ([]standard.Standard, bool) {
	pos := standard.IndexOf(collection, id)
	if pos < 0 {
		return collection, false
	}
	target := collection[pos]
	category, subcategory := target.CategoryLabel(), target.Subcategory().Name

	var peers []int
	self := -1
	for i, item := range collection {
		if item.CategoryLabel() != category || item.Subcategory().Name != subcategory {
			continue
		}
		if i == pos {
			self = len(peers)
		}
		peers = append(peers, i)
	}
	next := self + dir.step()
	if next < 0 || next >= len(peers) {
		return collection, false
	}

	out := standard.Clone(collection)
	a, b := peers[self], peers[next]
	out[a], out[b] = out[b], out[a]
	return out, true
}

func swapLabel(order []string, label string, dir Direction) ([]string, bool) {
	idx := indexOf(order, label)
	if idx < 0 {
		return order, false
	}
	next := idx + dir.step()
	if next < 0 || next >= len(order) {
		return order, false
	}
	out := cloneLabels(order)
	out[idx], out[next] = out[next], out[idx]
	return out, true
}

func indexOf(order []string, label string) int {
	for i, existing := range order {
		if existing == label {
			return i
		}
	}
	return -1
}

func cloneLabels(order []string) []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}
