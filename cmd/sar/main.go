// Command sar packs directories or tar archives into SAR archives and
// inspects existing ones. Output (and archive) paths may be bucket URLs
// such as "s3://bucket/data.sar"; plain paths use the local file system.
package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/bsm/sarfile"
	"github.com/bsm/sarfile/sarbfs"
	"github.com/cheggaaa/pb"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

var rootCmd = &cobra.Command{
	Use:           "sar",
	Short:         "Pack and inspect SAR archives",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		viper.SetEnvPrefix("sar")
		viper.AutomaticEnv()
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if viper.GetBool("verbose") {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}

		var err error
		log, err = cfg.Build()
		return err
	},
}

var packCmd = &cobra.Command{
	Use:   "pack <input> <output>",
	Short: "Pack a directory or tar file into a SAR archive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, out := args[0], args[1]
		if strings.HasSuffix(strings.ToLower(in), ".sar") {
			return fmt.Errorf("cannot pack a SAR archive; did you mix up the input and output paths?")
		}

		fsys, outName, closeFS, err := resolveFS(cmd.Context(), out)
		if err != nil {
			return err
		}
		defer closeFS()

		opts := sarfile.DirOptions{
			Only:    viper.GetStringSlice("only"),
			Exclude: viper.GetStringSlice("exclude"),
		}

		var bar *pb.ProgressBar
		if !viper.GetBool("no-progress") {
			opts.Progress = func(done, total int) {
				if bar == nil {
					bar = pb.New(total).Start()
				}
				bar.Set(done)
			}
		}

		lower := strings.ToLower(in)
		if strings.HasSuffix(lower, ".tar") || strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
			err = packTarTo(fsys, outName, in, &opts.PackOptions)
		} else {
			err = sarfile.PackDir(fsys, outName, in, &opts)
		}
		if bar != nil {
			bar.Finish()
		}
		if err != nil {
			return err
		}

		// Re-open the result to confirm it decodes.
		archive, err := sarfile.OpenFS(fsys, outName)
		if err != nil {
			return err
		}
		log.Info("packed archive",
			zap.String("input", in),
			zap.String("output", out),
			zap.Int("members", archive.Len()))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list <archive>",
	Short: "List the members of a SAR archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, name, closeFS, err := resolveFS(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer closeFS()

		archive, err := sarfile.OpenFS(fsys, name)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"#", "Name", "Size"})
		for i, f := range archive.Header().Files {
			table.Append([]string{fmt.Sprint(i), f.Name, fmt.Sprint(f.Size)})
		}
		table.Render()
		return nil
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <archive> <member>",
	Short: "Write one member's bytes to stdout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, name, closeFS, err := resolveFS(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer closeFS()

		archive, err := sarfile.OpenFS(fsys, name)
		if err != nil {
			return err
		}
		item, err := archive.Get(args[1])
		if err != nil {
			return err
		}
		defer item.Close()

		_, err = io.Copy(os.Stdout, item)
		return err
	},
}

// resolveFS picks the storage backend for a path: bucket URLs connect
// through bfs and the object key within the bucket is returned as the
// name, anything else uses the local file system as-is.
func resolveFS(ctx context.Context, path string) (sarfile.FS, string, func() error, error) {
	u, err := url.Parse(path)
	if err != nil || u.Scheme == "" {
		return sarfile.LocalFS, path, func() error { return nil }, nil
	}

	name := strings.TrimPrefix(u.Path, "/")
	u.Path = ""
	fsys, err := sarbfs.Connect(ctx, u.String())
	if err != nil {
		return nil, "", nil, err
	}
	return fsys, name, fsys.Close, nil
}

// packTarTo reads the tar from local disk while writing the archive
// through the resolved output storage.
func packTarTo(out sarfile.FS, outName, tarPath string, o *sarfile.PackOptions) error {
	return sarfile.PackTar(splitFS{read: sarfile.LocalFS, write: out}, outName, tarPath, o)
}

type splitFS struct{ read, write sarfile.FS }

func (s splitFS) OpenRead(name string) (io.ReadSeekCloser, error) { return s.read.OpenRead(name) }
func (s splitFS) OpenWrite(name string) (io.WriteCloser, error)   { return s.write.OpenWrite(name) }

func init() {
	packCmd.Flags().StringSliceP("only", "o", nil, "Only pack files with these extensions (e.g. .txt)")
	packCmd.Flags().StringSliceP("exclude", "e", nil, "Exclude files with these extensions")
	packCmd.Flags().Bool("no-progress", false, "Do not show a progress bar")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(packCmd, listCmd, catCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if log != nil {
			log.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
