// Package redact obscures rectangular regions of an image.
//
// [Redactor.Redact] builds a binary mask from the regions (each grown by a
// fixed compensation padding), runs the chosen filter over the whole image,
// and composites filtered pixels over the original wherever the mask is set.
// Pixels outside every padded region are copied through unchanged.
//
// Two filters are supported: Gaussian blur ([Blur]) and block pixelation
// ([Pixelate]). Failures are reported with the sentinel errors
// [ErrInvalidImage], [ErrFilterCreation], [ErrFilterProcessing] and
// [ErrConversion].
package redact
