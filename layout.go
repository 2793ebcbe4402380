package ssbomberman

import (
	"errors"
	"os"

	"github.com/bodgit/ssbomberman/chr"
	"github.com/bodgit/ssbomberman/dialog"
	"github.com/bodgit/ssbomberman/index"
	"github.com/bodgit/ssbomberman/palette"
	"github.com/invopop/yaml"
)

// Layout holds the offsets and counts tied to one release of the game.
type Layout struct {
	// VS.BIN
	Entries          int     `json:"entries"`
	DescriptorOffset int64   `json:"descriptor_offset"`
	PaletteOffset    int64   `json:"palette_offset"`
	PointerOffsets   []int64 `json:"pointer_offsets"`

	// TALKCOL.BIN and TALKCHR.BIN
	PaletteBase int64 `json:"palette_base"`
	BPP         int   `json:"bpp"`

	// TALKANM.BIN
	DialogBase uint32 `json:"dialog_base"`
	TextLen    int    `json:"text_len"`
	Records    int    `json:"records"`
}

// DefaultLayout returns the layout of the Japanese release.
func DefaultLayout() Layout {
	return Layout{
		Entries:          index.DefaultEntries,
		DescriptorOffset: index.DescriptorOffset,
		PaletteOffset:    index.PaletteOffset,
		PointerOffsets:   append([]int64(nil), index.PointerOffsets...),
		PaletteBase:      palette.DefaultBase,
		BPP:              chr.DefaultBPP,
		DialogBase:       dialog.DefaultBase,
		TextLen:          dialog.DefaultTextLen,
		Records:          dialog.DefaultRecords,
	}
}

// LoadLayout reads a YAML layout from file. Any field not present keeps its
// default value.
func LoadLayout(file string) (Layout, error) {
	l := DefaultLayout()

	b, err := os.ReadFile(file)
	if err != nil {
		return Layout{}, err
	}

	if err := yaml.Unmarshal(b, &l); err != nil {
		return Layout{}, err
	}

	if err := l.validate(); err != nil {
		return Layout{}, err
	}

	return l, nil
}

func (l Layout) validate() error {
	switch {
	case l.Entries < 0, l.TextLen < 0, l.Records < 0:
		return errors.New("layout: counts must not be negative")
	case l.BPP != 4 && l.BPP != 8:
		return errors.New("layout: bpp must be 4 or 8")
	}
	return nil
}
