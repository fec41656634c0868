// Package region converts detected text spans into pixel rectangles.
//
// [Build] maps every line's hits onto its pixel box, using per-glyph boxes
// when the OCR engine supplied them and proportional interpolation across the
// line otherwise. Hits that touch within a line are merged first; the
// resulting rectangles are then merged across the whole image by [Merge],
// which repeats its sweep until no two rectangles are within the gap of each
// other.
package region
