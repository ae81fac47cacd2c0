// Package format writes generation results and history entries in the
// non-interactive output modes.
package format
