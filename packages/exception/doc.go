// Package exception renders a failed case's error, cause chain and stack
// frames into a bounded block of text lines.
package exception
