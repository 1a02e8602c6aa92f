package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hanamura/go-xdvdfs/extract"
)

var listSkipUpdate bool

// listCmd prints every entry of the image without touching any
// destination.
var listCmd = &cobra.Command{
	Use:   "list [iso]",
	Short: "List the contents of a disc image",
	Long: `List every file and directory inside a disc image, one line per
entry, without writing anything.

Examples:
  xdvdfs list game.iso
  xdvdfs list -s game.iso`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileSystem, closeImage, err := openImage(args[0])
		if err != nil {
			return err
		}
		defer closeImage()

		fmt.Printf("Contents of %s:\n", args[0])
		files, dirs, err := extract.List(os.Stdout, fileSystem, listSkipUpdate)
		if err != nil {
			return err
		}
		fmt.Printf("\n%d files, %d directories\n", files, dirs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVarP(&listSkipUpdate, "skip-update", "s", false, "skip the $SystemUpdate directory")
}
