package ssbomberman

import (
	"bytes"
	"fmt"
	"os"

	"github.com/bodgit/ssbomberman/dialog"
	"github.com/bodgit/ssbomberman/errs"
	"github.com/bodgit/ssbomberman/index"
	"github.com/invopop/yaml"
)

// DialogDump is the editable form of a dialog container.
type DialogDump struct {
	Base    uint32          `json:"base"`
	Text    []uint16        `json:"text"`
	Records []dialog.Record `json:"records"`
}

func (t *Toolkit) readDialog(file string) (*dialog.Container, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := dialog.Decode(f, t.layout.DialogBase, t.layout.TextLen, t.layout.Records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	if err := c.Check(t.layout.DialogBase); err != nil {
		t.logger.Printf("warning: %s: %v\n", file, err)
	}

	return c, nil
}

func (t *Toolkit) writeDialog(file string, text []uint16, records []dialog.Record) (dialog.Layout, error) {
	b := new(bytes.Buffer)
	l, err := dialog.NewEncoder(t.layout.DialogBase, t.logger).Encode(b, text, records)
	if err != nil {
		return dialog.Layout{}, err
	}

	if err := os.WriteFile(file, b.Bytes(), 0o644); err != nil {
		return dialog.Layout{}, err
	}

	t.logger.Printf("Wrote %s (%d bytes, %d bytes padding, pointer table at %#x)\n", file, l.Length, l.Padding, l.PointerTable)

	return l, nil
}

// DumpDialog writes the dialog container in anmFile as YAML to out.
func (t *Toolkit) DumpDialog(anmFile, out string) error {
	c, err := t.readDialog(anmFile)
	if err != nil {
		return err
	}

	b, err := yaml.Marshal(DialogDump{
		Base:    t.layout.DialogBase,
		Text:    c.Text,
		Records: c.Records,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(out, b, 0o644)
}

// BuildDialog encodes the YAML dump in in as a new dialog container anmFile.
// If indexFile isn't empty, its references to the pointer table are patched.
func (t *Toolkit) BuildDialog(in, anmFile, indexFile string) (dialog.Layout, error) {
	b, err := os.ReadFile(in)
	if err != nil {
		return dialog.Layout{}, err
	}

	var dump DialogDump
	if err := yaml.Unmarshal(b, &dump); err != nil {
		return dialog.Layout{}, fmt.Errorf("%s: %w", in, err)
	}

	if dump.Base != 0 && dump.Base != t.layout.DialogBase {
		t.logger.Printf("warning: %s was dumped with base %#x, encoding with %#x\n", in, dump.Base, t.layout.DialogBase)
	}

	return t.finishDialog(anmFile, indexFile, dump.Text, dump.Records)
}

// ReplaceText replaces the text entries [start, end) of the dialog container
// in anmFile with s, writing the result to out. If indexFile isn't empty, its
// references to the pointer table are patched.
func (t *Toolkit) ReplaceText(anmFile, out, indexFile string, start, end int, s string) (dialog.Layout, error) {
	c, err := t.readDialog(anmFile)
	if err != nil {
		return dialog.Layout{}, err
	}

	text, err := dialog.ASCII(s)
	if err != nil {
		return dialog.Layout{}, err
	}

	if err := c.Splice(start, end, text); err != nil {
		return dialog.Layout{}, err
	}

	return t.finishDialog(out, indexFile, c.Text, c.Records)
}

func (t *Toolkit) finishDialog(anmFile, indexFile string, text []uint16, records []dialog.Record) (dialog.Layout, error) {
	l, err := t.writeDialog(anmFile, text, records)
	if err != nil {
		return dialog.Layout{}, err
	}

	if indexFile != "" {
		if err := t.PatchPointerTable(indexFile, l.PointerTable); err != nil {
			return dialog.Layout{}, err
		}
	}

	return l, nil
}

// PatchPointerTable writes address into each of the index file's references
// to the dialog container's pointer table.
func (t *Toolkit) PatchPointerTable(indexFile string, address int64) error {
	f, err := os.OpenFile(indexFile, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	for _, offset := range t.layout.PointerOffsets {
		if offset < 0 || offset+4 > info.Size() {
			return &errs.OutOfRangeError{Source: indexFile + ": pointer offset", Offset: offset, Value: offset, Limit: info.Size() - 3}
		}
	}

	if err := index.PatchPointer(f, t.layout.PointerOffsets, uint32(address)); err != nil {
		return err
	}

	t.logger.Printf("Patched %s with pointer table address %#x\n", indexFile, address)

	return f.Close()
}
