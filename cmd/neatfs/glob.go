package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ink-feather-org/neat-fs/cmd"
	"github.com/ink-feather-org/neat-fs/pkg/vfs"
)

func globMain(_ *cobra.Command, arguments []string) {
	// Validate arguments.
	if len(arguments) != 1 {
		cmd.Fatal(errors.New("expected a pattern"))
	}

	// Perform the match.
	err := withFileSystem(func(ctx context.Context, fileSystem *vfs.FileSystem) error {
		matches, err := fileSystem.Glob(ctx, arguments[0])
		if err != nil {
			return err
		}
		for _, match := range matches {
			fmt.Println(match)
		}
		return nil
	})
	if err != nil {
		cmd.Fatal(err)
	}
}

var globCommand = &cobra.Command{
	Use:   "glob <pattern>",
	Short: "Print all paths matching a doublestar pattern",
	Run:   globMain,
}
