// Package normalisers provides implementations of the Normaliser interface
// for the document formats the corpus scanner understands. Each normaliser
// knows how to extract plain text from one file format.
//
// Normalisers are registered with the Registry at startup and selected by
// file extension.
package normalisers
