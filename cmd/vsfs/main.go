package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mit-pdos/go-vsfs/config"
	"github.com/mit-pdos/go-vsfs/util"
	"github.com/mit-pdos/go-vsfs/vsfs"
	"github.com/mit-pdos/go-vsfs/wal"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	var cfg *config.Config

	imageFlag := cli.StringFlag{
		Name:    "image",
		Aliases: []string{"i"},
		Usage:   "path of the image file (default from VSFS_IMAGE or the config file)",
	}
	debugFlag := cli.Uint64Flag{
		Name:  "debug",
		Usage: "debug log level",
	}

	withFs := func(f func(fs *vsfs.Fs, c *cli.Context) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			fs, err := vsfs.OpenFile(cfg.Image)
			if err != nil {
				return err
			}
			defer fs.Close()
			return f(fs, c)
		}
	}

	return &cli.App{
		Name:  "vsfs",
		Usage: "journaled file creation on a vsfs image",
		Flags: []cli.Flag{&imageFlag, &debugFlag},
		Before: func(c *cli.Context) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			if c.IsSet(imageFlag.Name) {
				cfg.Image = c.String(imageFlag.Name)
			}
			if c.IsSet(debugFlag.Name) {
				cfg.Debug = c.Uint64(debugFlag.Name)
			}
			util.SetDebug(cfg.Debug)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "mkfs",
				Usage: "format the image",
				Action: func(c *cli.Context) error {
					sb, err := vsfs.Mkfs(cfg.Image, time.Now())
					if err != nil {
						return err
					}
					fmt.Printf("Formatted %s: %d blocks, %d inodes, volume %s\n",
						cfg.Image, sb.NBlocks, sb.NInode, sb.UUID)
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "log the creation of a file in the root directory",
				ArgsUsage: "NAME",
				Action: withFs(func(fs *vsfs.Fs, c *cli.Context) error {
					if c.Args().Len() != 1 {
						return cli.Exit("usage: vsfs create NAME", 1)
					}
					name := c.Args().First()
					_, ok, err := fs.Create(name)
					if errors.Is(err, wal.ErrLogFull) {
						return cli.Exit("journal full; run `vsfs install` first", 1)
					}
					if err != nil {
						return err
					}
					if !ok {
						fmt.Println("No free inode or directory slot; nothing logged.")
						return nil
					}
					fmt.Printf("Logged creation of %q to journal.\n", name)
					return nil
				}),
			},
			{
				Name:  "install",
				Usage: "replay committed journal transactions",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "max",
						Value: -1,
						Usage: "install at most this many transactions; DISCARDS the rest",
					},
				},
				Action: withFs(func(fs *vsfs.Fs, c *cli.Context) error {
					n, err := fs.InstallN(c.Int("max"))
					if err != nil {
						return err
					}
					fmt.Printf("Installed %d committed transactions from journal\n", n)
					return nil
				}),
			},
			{
				Name:  "ls",
				Usage: "list the root directory, including logged creates",
				Action: withFs(func(fs *vsfs.Fs, c *cli.Context) error {
					des, err := fs.List()
					if err != nil {
						return err
					}
					for _, de := range des {
						ip, err := fs.Stat(de.Inum)
						if err != nil {
							return err
						}
						fmt.Printf("%4d %8d %s %s\n", de.Inum, ip.Size,
							time.Unix(int64(ip.Mtime), 0).Format(time.RFC3339), de.Name)
					}
					return nil
				}),
			},
			{
				Name:  "info",
				Usage: "show the superblock and journal state",
				Action: withFs(func(fs *vsfs.Fs, c *cli.Context) error {
					sb := fs.Super
					fmt.Printf("volume:       %s\n", sb.UUID)
					fmt.Printf("block size:   %d\n", sb.BlockSize)
					fmt.Printf("blocks:       %d\n", sb.NBlocks)
					fmt.Printf("inodes:       %d\n", sb.NInode)
					fmt.Printf("journal:      %d\n", sb.LogStart)
					fmt.Printf("inode bitmap: %d\n", sb.InodeBmap)
					fmt.Printf("data bitmap:  %d\n", sb.DataBmap)
					fmt.Printf("inode table:  %d\n", sb.InodeStart)
					fmt.Printf("data region:  %d\n", sb.DataStart)
					txns, err := fs.Pending()
					if err != nil {
						return err
					}
					fmt.Printf("pending:      %d transactions\n", len(txns))
					return nil
				}),
			},
		},
	}
}
