package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strconv"

	"github.com/bodgit/ssbomberman"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newToolkit(c *cli.Context) (*ssbomberman.Toolkit, error) {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	layout := ssbomberman.DefaultLayout()
	if file := c.String("layout"); file != "" {
		var err error
		if layout, err = ssbomberman.LoadLayout(file); err != nil {
			return nil, err
		}
	}

	return ssbomberman.New(layout, logger), nil
}

func parseInt(s string) (int, error) {
	i, err := strconv.ParseInt(s, 0, 0)
	return int(i), err
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "ssbomberman"
	app.Usage = "Saturn Bomberman talk portrait and dialog utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "layout",
			EnvVars: []string{"SSB_LAYOUT"},
			Usage:   "YAML file overriding the default offsets and counts",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "images",
			Usage:       "Extract talk portraits as PNG images",
			Description: "Reads the image and palette tables from VS.BIN, the palettes from TALKCOL.BIN and the pixel data from TALKCHR.BIN",
			ArgsUsage:   "VS.BIN TALKCOL.BIN TALKCHR.BIN DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 4 {
					cli.ShowSubcommandHelpAndExit(c, 1)
				}

				t, err := newToolkit(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				n, err := t.ExtractImages(context.Background(), c.Args().Get(0), c.Args().Get(1), c.Args().Get(2), c.Args().Get(3))
				if err != nil {
					return cli.Exit(fmt.Sprintf("extracted %d images: %v", n, err), 1)
				}

				return nil
			},
		},
		{
			Name:  "dialog",
			Usage: "Dump and rebuild TALKANM.BIN",
			Subcommands: []*cli.Command{
				{
					Name:      "dump",
					Usage:     "Dump the dialog container as YAML",
					ArgsUsage: "TALKANM.BIN FILE",
					Action: func(c *cli.Context) error {
						if c.NArg() < 2 {
							cli.ShowSubcommandHelpAndExit(c, 1)
						}

						t, err := newToolkit(c)
						if err != nil {
							return cli.Exit(err, 1)
						}

						if err := t.DumpDialog(c.Args().Get(0), c.Args().Get(1)); err != nil {
							return cli.Exit(err, 1)
						}

						return nil
					},
				},
				{
					Name:      "build",
					Usage:     "Build a dialog container from a YAML dump",
					ArgsUsage: "FILE TALKANM.BIN",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "patch",
							Usage: "patch the pointer table references in `VS.BIN`",
						},
					},
					Action: func(c *cli.Context) error {
						if c.NArg() < 2 {
							cli.ShowSubcommandHelpAndExit(c, 1)
						}

						t, err := newToolkit(c)
						if err != nil {
							return cli.Exit(err, 1)
						}

						l, err := t.BuildDialog(c.Args().Get(0), c.Args().Get(1), c.String("patch"))
						if err != nil {
							return cli.Exit(err, 1)
						}

						fmt.Printf("%#x\n", l.PointerTable)

						return nil
					},
				},
				{
					Name:      "replace",
					Usage:     "Replace a range of text entries with ASCII text",
					ArgsUsage: "TALKANM.BIN OUT START END TEXT",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "patch",
							Usage: "patch the pointer table references in `VS.BIN`",
						},
					},
					Action: func(c *cli.Context) error {
						if c.NArg() < 5 {
							cli.ShowSubcommandHelpAndExit(c, 1)
						}

						start, err := parseInt(c.Args().Get(2))
						if err != nil {
							return cli.Exit(err, 1)
						}
						end, err := parseInt(c.Args().Get(3))
						if err != nil {
							return cli.Exit(err, 1)
						}

						t, err := newToolkit(c)
						if err != nil {
							return cli.Exit(err, 1)
						}

						l, err := t.ReplaceText(c.Args().Get(0), c.Args().Get(1), c.String("patch"), start, end, c.Args().Get(4))
						if err != nil {
							return cli.Exit(err, 1)
						}

						fmt.Printf("%#x\n", l.PointerTable)

						return nil
					},
				},
			},
		},
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
