package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/hanamura/go-xdvdfs/extract"
	"github.com/hanamura/go-xdvdfs/sink"
)

var (
	extractOut        string
	extractSkipUpdate bool
	extractReportPath string
	extractQuiet      bool
)

// extractCmd writes the image contents to a local directory or an FTP
// server.
var extractCmd = &cobra.Command{
	Use:   "extract [iso]",
	Short: "Extract the contents of a disc image",
	Long: `Extract every file and directory inside a disc image to a local
directory or straight onto a console over FTP.

Without -o the files land next to the image, in a directory named
after it. FTP destinations take the form
ftp://[user[:pass]@]host[:port]/dir and default to the xbox:xbox
credentials on port 21. Files already on the server with the right
size are skipped, so an interrupted upload can be resumed by running
the same command again.

Examples:
  xdvdfs extract game.iso
  xdvdfs extract -s -o /games/halo game.iso
  xdvdfs extract -o ftp://192.168.0.5/F/Games/Halo game.iso`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		fileSystem, closeImage, err := openImage(input)
		if err != nil {
			return err
		}
		defer closeImage()

		out := extractOut
		if out == "" {
			out = strings.TrimSuffix(input, filepath.Ext(input))
		}

		snk, err := openSink(out)
		if err != nil {
			return err
		}

		fmt.Printf("Extracting %s to %s\n", input, out)

		opts := extract.Options{SkipSystemUpdate: extractSkipUpdate}
		if !extractQuiet {
			opts.Progress = &barProgress{}
		}
		report, err := extract.Run(cmd.Context(), fileSystem, snk, opts)
		if err != nil {
			return err
		}

		fmt.Printf("\n%d files extracted (%d bytes), %d directories created, %d skipped\n",
			report.Files, report.Bytes, report.Dirs, report.Skipped)
		if report.Failed() {
			fmt.Printf("%d entries failed:\n", len(report.Failures))
			for _, failure := range report.Failures {
				fmt.Printf("  %s: %s\n", failure.Path, failure.Reason)
			}
		}

		if extractReportPath != "" {
			if err := writeReport(extractReportPath, report); err != nil {
				return err
			}
		}
		return nil
	},
}

// openSink picks the destination type from its form. Anything that is
// not an ftp:// url is a local directory. An existing directory is
// replaced; anything else at that path, the input image included, is
// refused rather than removed.
func openSink(out string) (sink.Sink, error) {
	if strings.HasPrefix(out, "ftp://") {
		return sink.DialFTP(out)
	}

	if info, err := os.Stat(out); err == nil {
		if !info.IsDir() {
			return nil, xerrors.Errorf("output path %s is not a directory", out)
		}
		fmt.Printf("Output directory %s already exists, replacing\n", out)
		if err := os.RemoveAll(out); err != nil {
			return nil, xerrors.Errorf("failed to replace %s: %w", out, err)
		}
	}
	return sink.NewLocal(out)
}

func writeReport(path string, report *extract.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.Errorf("failed to create report %s: %w", path, err)
	}
	defer f.Close()

	return report.WriteYAML(f)
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "output directory or ftp:// url (default: image path without extension)")
	extractCmd.Flags().BoolVarP(&extractSkipUpdate, "skip-update", "s", false, "skip the $SystemUpdate directory")
	extractCmd.Flags().StringVar(&extractReportPath, "report", "", "write a YAML extraction report to this file")
	extractCmd.Flags().BoolVarP(&extractQuiet, "quiet", "q", false, "disable progress bars")
}
