package neighbor

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Filter decides whether a dataset point may appear in results. Filtered
// points still guide the descent; they are only withheld from the candidate
// list, so a query can for example exclude itself from its own neighborhood.
type Filter func(index int) bool

// Allow restricts results to the points contained in the bitmap.
func Allow(bm *roaring.Bitmap) Filter {
	return func(index int) bool {
		return index >= 0 && bm.Contains(uint32(index))
	}
}

// Deny excludes the points contained in the bitmap from results.
func Deny(bm *roaring.Bitmap) Filter {
	return func(index int) bool {
		return index < 0 || !bm.Contains(uint32(index))
	}
}
