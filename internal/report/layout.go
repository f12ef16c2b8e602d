package report

import (
	"math"
	"sort"
	"strings"
)

// PositionedFragment is a unit of text extracted from a PDF page together
// with its absolute position. PDF text APIs return fragments in no
// guaranteed reading order; the layout step reassembles them into rows.
type PositionedFragment struct {
	X    float64
	Y    float64
	Text string
}

// AssembleLines reconstructs the logical text lines of one page from its
// positioned fragments. Fragments sharing a rounded vertical coordinate
// form one row; rows are emitted top-to-bottom (descending y, since PDF
// coordinates grow upwards) and fragments within a row left-to-right.
// Fragment texts are joined with single spaces.
func AssembleLines(fragments []PositionedFragment) []string {
	if len(fragments) == 0 {
		return nil
	}

	rows := make(map[int][]PositionedFragment)
	for _, f := range fragments {
		key := int(math.Round(f.Y))
		rows[key] = append(rows[key], f)
	}

	keys := make([]int, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		row := rows[k]
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X < row[j].X
		})

		parts := make([]string, len(row))
		for i, f := range row {
			parts[i] = f.Text
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines
}
