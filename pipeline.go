package ssbomberman

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/bodgit/ssbomberman/chr"
	"github.com/bodgit/ssbomberman/index"
	"github.com/bodgit/ssbomberman/palette"
	"github.com/cespare/xxhash"
	"github.com/invopop/yaml"
)

// ManifestFilename is the name of the manifest written alongside the
// extracted images.
const ManifestFilename = "manifest.yaml"

// ManifestEntry records where an extracted image came from.
type ManifestEntry struct {
	Entry   int    `json:"entry"`
	File    string `json:"file"`
	Offset  int64  `json:"offset"`
	Size    int    `json:"size"`
	Width   uint32 `json:"width"`
	Height  uint32 `json:"height"`
	ScaleX  uint16 `json:"scale_x"`
	ScaleY  uint16 `json:"scale_y"`
	Address uint16 `json:"address"`
	Palette uint16 `json:"palette"`
	XXHash  string `json:"xxhash"`
}

// Manifest lists every extracted image in entry order.
type Manifest struct {
	Images []ManifestEntry `json:"images"`
}

type job struct {
	entry  int
	offset int64
}

func imageFilename(entry int) string {
	return fmt.Sprintf("%03d.png", entry)
}

func (t *Toolkit) findJobs(ctx context.Context, offsets []int64, n int) (<-chan job, <-chan error, error) {
	out := make(chan job)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for i := 0; i < n; i++ {
			select {
			case out <- job{i, offsets[i]}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, errc, nil
}

func (t *Toolkit) imageWorker(ctx context.Context, cancel context.CancelFunc, d *chr.Decoder, r io.ReaderAt, dir string, manifest []ManifestEntry, in <-chan job) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for j := range in {
			m, err := d.DecodeAt(r, j.entry, j.offset)
			if err != nil {
				errc <- err
				cancel()
				return
			}

			file := imageFilename(j.entry)
			if err := imgio.Save(filepath.Join(dir, file), m, imgio.PNGEncoder()); err != nil {
				errc <- err
				cancel()
				return
			}

			// Each worker only touches the entries it was handed
			manifest[j.entry] = ManifestEntry{
				Entry:   m.Entry,
				File:    file,
				Offset:  m.Offset,
				Size:    m.Size,
				Width:   m.Descriptor.Width,
				Height:  m.Descriptor.Height,
				ScaleX:  m.Descriptor.ScaleX,
				ScaleY:  m.Descriptor.ScaleY,
				Address: m.Descriptor.Address,
				Palette: m.Palette,
				XXHash:  fmt.Sprintf("%016x", xxhash.Sum64(m.Pix)),
			}

			t.logger.Printf("Wrote %s (%dx%d, palette %#x, offset %#x)\n", file, m.Descriptor.Width, m.Descriptor.Height, m.Palette, m.Offset)
		}
	}()
	return errc, nil
}

// waitForPipeline drains every stage's error channel so no stage is left
// running, and returns the first error seen.
func waitForPipeline(errcs ...<-chan error) error {
	var first error
	for err := range mergeErrors(errcs...) {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

func mergeErrors(errcs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(errcs))
	for _, errc := range errcs {
		wg.Add(1)
		go func(errc <-chan error) {
			defer wg.Done()
			for err := range errc {
				out <- err
			}
		}(errc)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func openSized(file string) (*os.File, int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, 0, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}

	return f, info.Size(), nil
}

func (t *Toolkit) decoder(indexFile, colorFile string) (*chr.Decoder, error) {
	f, err := os.Open(indexFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := index.Read(f, t.layout.DescriptorOffset, t.layout.PaletteOffset, t.layout.Entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", indexFile, err)
	}

	c, size, err := openSized(colorFile)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	bank, err := palette.ReadBank(c, size, table.Palettes, t.layout.PaletteBase, t.layout.BPP)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", colorFile, err)
	}

	t.logger.Printf("Read %d descriptors using %d palettes\n", len(table.Descriptors), len(bank))

	d := chr.NewDecoder(table, bank)
	d.BPP = t.layout.BPP

	return d, nil
}

// ExtractImages converts every portrait in chrFile into a PNG in dir and
// writes a manifest alongside them. If chrFile is too short, the images that
// fit are still written and counted before the error is returned.
func (t *Toolkit) ExtractImages(ctx context.Context, indexFile, colorFile, chrFile, dir string) (int, error) {
	d, err := t.decoder(indexFile, colorFile)
	if err != nil {
		return 0, err
	}

	offsets, total, err := d.Offsets()
	if err != nil {
		return 0, err
	}

	f, size, err := openSized(chrFile)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if total < size {
		t.logger.Printf("warning: %s has %d bytes past the last image\n", chrFile, size-total)
	}

	sizes, err := d.Sizes()
	if err != nil {
		return 0, err
	}

	// Only the images wholly within the file are handed to the workers
	n := 0
	for n < len(offsets) && offsets[n]+int64(sizes[n]) <= size {
		n++
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var errcList []<-chan error

	jobs, errc, err := t.findJobs(ctx, offsets, n)
	if err != nil {
		return 0, err
	}
	errcList = append(errcList, errc)

	manifest := make([]ManifestEntry, n)
	for i := 0; i < runtime.NumCPU(); i++ {
		errc, err := t.imageWorker(ctx, cancel, d, f, dir, manifest, jobs)
		if err != nil {
			return 0, err
		}
		errcList = append(errcList, errc)
	}

	if err := waitForPipeline(errcList...); err != nil {
		return 0, err
	}
	if err := parent.Err(); err != nil {
		return 0, err
	}

	b, err := yaml.Marshal(Manifest{Images: manifest})
	if err != nil {
		return n, err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFilename), b, 0o644); err != nil {
		return n, err
	}

	if n < len(offsets) {
		// Decoding the first image that didn't fit reports why
		if _, err := d.DecodeAt(f, n, offsets[n]); err != nil {
			return n, fmt.Errorf("%s: %w", chrFile, err)
		}
	}

	return n, nil
}
