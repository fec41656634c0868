// Package ocr adapts external text recognizers to the redaction pipeline.
//
// Recognition results travel as a JSON [Document]: image dimensions, text
// lines with optional per-rune glyph boxes, and optional non-text regions
// such as faces or barcodes. Documents with "normalized": true use unit
// coordinates with a bottom-left origin, as produced by platform vision
// frameworks; they are flipped into top-left pixel space here so that the
// rest of the program only ever sees image coordinates.
//
// Two sources are provided. [Sidecar] reads a document written next to the
// screenshot (shot.png.json). [Client] posts the encoded image to an HTTP
// recognizer, rate limited and cached by image content.
package ocr
