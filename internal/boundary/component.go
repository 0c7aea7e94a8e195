// Package boundary implements connected-component labeling and
// Moore-neighborhood contour tracing over a binary probability mask,
// grounded on the teacher's internal/detector/postprocess.go and
// internal/detector/contour.go.
package boundary

import "container/list"

// Stats summarizes one labeled component's pixel footprint.
type Stats struct {
	Count                  int
	MinX, MinY, MaxX, MaxY int
}

// Binarize thresholds a probability map (row-major, w*h) into a boolean
// mask, true where prob >= threshold.
func Binarize(prob []float32, w, h int, threshold float32) []bool {
	mask := make([]bool, w*h)
	for i, p := range prob {
		mask[i] = p >= threshold
	}
	return mask
}

// ConnectedComponents labels 4-connected regions of the mask via BFS,
// returning each component's Stats and a label array (0 = background,
// labels start at 1).
func ConnectedComponents(mask []bool, w, h int) ([]Stats, []int) {
	visited := make([]bool, len(mask))
	labels := make([]int, len(mask))
	var comps []Stats
	label := 0
	idx := func(x, y int) int { return y*w + x }

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := idx(x, y)
			if !mask[i] || visited[i] {
				continue
			}
			label++
			comps = append(comps, bfsComponent(mask, visited, labels, w, h, x, y, label, idx))
		}
	}
	return comps, labels
}

func bfsComponent(mask []bool, visited []bool, labels []int, w, h, startX, startY, label int, idx func(int, int) int) Stats {
	startIdx := idx(startX, startY)
	st := Stats{MinX: startX, MinY: startY, MaxX: startX, MaxY: startY}

	q := list.New()
	q.PushBack(startIdx)
	visited[startIdx] = true
	labels[startIdx] = label

	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for q.Len() > 0 {
		e := q.Front()
		q.Remove(e)
		ci, _ := e.Value.(int)
		cx, cy := ci%w, ci/w

		st.Count++
		if cx < st.MinX {
			st.MinX = cx
		}
		if cy < st.MinY {
			st.MinY = cy
		}
		if cx > st.MaxX {
			st.MaxX = cx
		}
		if cy > st.MaxY {
			st.MaxY = cy
		}

		for _, d := range dirs {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			ni := idx(nx, ny)
			if mask[ni] && !visited[ni] {
				visited[ni] = true
				labels[ni] = label
				q.PushBack(ni)
			}
		}
	}
	return st
}
