package brickstream

import (
	"cmp"
	"slices"
)

// CompareNearFirst orders requests by ascending view distance.
// It is suitable for slices.SortStableFunc.
func CompareNearFirst(a, b LoadRequest) int {
	return cmp.Compare(a.Brick.ViewDistance(), b.Brick.ViewDistance())
}

// CompareFarFirst orders requests by descending view distance.
func CompareFarFirst(a, b LoadRequest) int {
	return cmp.Compare(b.Brick.ViewDistance(), a.Brick.ViewDistance())
}

// LessNearFirst reports whether a is strictly nearer than b.
func LessNearFirst(a, b LoadRequest) bool {
	return CompareNearFirst(a, b) < 0
}

// LessFarFirst reports whether a is strictly farther than b.
func LessFarFirst(a, b LoadRequest) bool {
	return CompareFarFirst(a, b) < 0
}

// SortNearFirst stably sorts reqs nearest first, for front-to-back
// rendering.
func SortNearFirst(reqs []LoadRequest) {
	slices.SortStableFunc(reqs, CompareNearFirst)
}

// SortFarFirst stably sorts reqs farthest first, for back-to-front
// rendering.
func SortFarFirst(reqs []LoadRequest) {
	slices.SortStableFunc(reqs, CompareFarFirst)
}
