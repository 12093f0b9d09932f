package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ink-feather-org/neat-fs/cmd"
	"github.com/ink-feather-org/neat-fs/pkg/vfs"
)

func duMain(_ *cobra.Command, arguments []string) {
	// Determine the target path.
	path := "/"
	if len(arguments) == 1 {
		path = arguments[0]
	} else if len(arguments) > 1 {
		cmd.Fatal(errors.New("too many arguments"))
	}

	// Compute the usage.
	err := withFileSystem(func(ctx context.Context, fileSystem *vfs.FileSystem) error {
		total, err := fileSystem.DiskUsage(ctx, path)
		if err != nil {
			return err
		}
		if duConfiguration.bytes {
			fmt.Println(total)
		} else {
			fmt.Println(humanize.IBytes(total))
		}
		return nil
	})
	if err != nil {
		cmd.Fatal(err)
	}
}

var duCommand = &cobra.Command{
	Use:   "du [<path>]",
	Short: "Print the total size of all files beneath a path",
	Run:   duMain,
}

var duConfiguration struct {
	// bytes indicates the presence of the -b/--bytes flag.
	bytes bool
}

func init() {
	flags := duCommand.Flags()
	flags.BoolVarP(&duConfiguration.bytes, "bytes", "b", false, "Print a raw byte count")
}
