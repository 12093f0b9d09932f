package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ink-feather-org/neat-fs/cmd"
	"github.com/ink-feather-org/neat-fs/pkg/vfs"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/backend"
	"github.com/ink-feather-org/neat-fs/pkg/vfs/fspath"
)

func listMain(_ *cobra.Command, arguments []string) {
	// Determine the target path.
	path := "/"
	if len(arguments) == 1 {
		path = arguments[0]
	} else if len(arguments) > 1 {
		cmd.Fatal(errors.New("too many arguments"))
	}

	// Perform the listing.
	err := withFileSystem(func(ctx context.Context, fileSystem *vfs.FileSystem) error {
		names, err := fileSystem.ReadDir(ctx, path, false)
		if err != nil {
			return err
		}
		for _, name := range names {
			if !listConfiguration.long {
				fmt.Println(name)
				continue
			}
			entryPath := fspath.Join(path, name)
			entry, err := fileSystem.Linfo(ctx, entryPath)
			if err != nil {
				return err
			} else if entry == nil {
				continue
			}
			size := "-"
			if entry.FileType == backend.File {
				contents, err := fileSystem.ReadFile(ctx, entryPath)
				if err != nil {
					return err
				}
				size = humanize.IBytes(uint64(len(contents)))
			}
			modified := time.UnixMilli(entry.Meta.MTime).UTC().Format(time.RFC3339)
			suffix := ""
			if entry.FileType == backend.Symlink {
				suffix = " -> " + entry.Destination
			}
			fmt.Printf("%-9s  %8s  %s  %s%s\n", entry.FileType, size, modified, name, suffix)
		}
		return nil
	})
	if err != nil {
		cmd.Fatal(err)
	}
}

var listCommand = &cobra.Command{
	Use:   "ls [<path>]",
	Short: "List the entries of a directory",
	Run:   listMain,
}

var listConfiguration struct {
	// long indicates the presence of the -l/--long flag.
	long bool
}

func init() {
	flags := listCommand.Flags()
	flags.BoolVarP(&listConfiguration.long, "long", "l", false, "Show types, sizes, and modification times")
}
