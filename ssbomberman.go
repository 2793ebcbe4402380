/*
Package ssbomberman is a library for extracting and rebuilding the talk
portraits and dialog of Saturn Bomberman.

The portraits are spread across three files: VS.BIN holds the image and
palette tables, TALKCOL.BIN the palettes and TALKCHR.BIN the pixel data. The
dialog lives in TALKANM.BIN whose pointer table is referenced from VS.BIN.
*/
package ssbomberman

import "log"

// Toolkit runs conversions using the file offsets in its Layout.
type Toolkit struct {
	layout Layout
	logger *log.Logger
}

// New returns a Toolkit for layout, logging progress and warnings to logger.
func New(layout Layout, logger *log.Logger) *Toolkit {
	return &Toolkit{
		layout: layout,
		logger: logger,
	}
}
