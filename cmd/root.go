// Package cmd provides the command-line interface for go-xdvdfs.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/hanamura/go-xdvdfs/log"
	"github.com/hanamura/go-xdvdfs/xdvdfs"
)

var (
	verbose  bool
	maxDepth int
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "xdvdfs",
	Short: "List and extract the contents of Xbox disc images",
	Long: `xdvdfs reads the XDVDFS filesystem found on Xbox disc images,
plain XISO files and full redump dumps alike.

Examples:
  xdvdfs list game.iso
  xdvdfs extract game.iso
  xdvdfs extract -s -o /games/halo game.iso
  xdvdfs extract -o ftp://192.168.0.5/F/Games/Halo game.iso
  xdvdfs info game.iso`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			if logger, err := zap.NewDevelopment(); err == nil {
				log.SetLogger(logger)
			}
		}
	},
	SilenceUsage: true,
}

// Execute runs the selected command. An interrupt cancels a running
// extraction between entries.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// SetVersionInfo wires the build-time version variables from main.
func SetVersionInfo(version, commit, buildTime string) {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildTime)
}

// openImage opens a disc image and parses its filesystem. The returned
// function closes the underlying file.
func openImage(path string) (*xdvdfs.FileSystem, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, xerrors.Errorf("failed to stat %s: %w", path, err)
	}

	cfg := xdvdfs.Config{MaxDepth: maxDepth}
	fileSystem, err := xdvdfs.NewWithConfig(io.NewSectionReader(f, 0, info.Size()), cfg)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return fileSystem, func() { f.Close() }, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "depth", xdvdfs.DefaultMaxDepth, "maximum directory nesting")
}
