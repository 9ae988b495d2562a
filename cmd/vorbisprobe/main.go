// Command vorbisprobe parses an Ogg Vorbis I file's headers and prints its
// decoded stream configuration. It is a minimal stand-in for the CLI/GUI
// front ends that are outside this package's scope: it exists to
// dogfood the parser, not to be a full-featured media tool.
package main

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	vorbis "github.com/semyon-v-dot/ogg-vorbis"
)

func main() {
	k := koanf.New(".")

	root := &cobra.Command{
		Use:   "vorbisprobe [file.ogg]",
		Short: "Parse and print an Ogg Vorbis I file's header configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
				return err
			}
			return run(cmd, args[0], k)
		},
	}
	root.Flags().Bool("verify-checksums", false, "verify Ogg page CRC-32 checksums")
	root.Flags().Bool("verbose", false, "log parse progress at debug level")
	root.Flags().Bool("debug", false, "include byte offsets in error messages")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "vorbisprobe:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, path string, k *koanf.Koanf) error {
	level := zerolog.InfoLevel
	if k.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		With().Timestamp().Logger().Level(level)

	vorbis.Debug = k.Bool("debug")

	opts := []vorbis.Option{vorbis.WithLogger(&logger)}
	if k.Bool("verify-checksums") {
		opts = append(opts, vorbis.WithChecksumVerification(true))
	}

	p, err := vorbis.Open(path, opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	info, err := p.ProcessHeaders()
	if err != nil {
		return err
	}

	printInfo(cmd, info)
	return nil
}

func printInfo(cmd *cobra.Command, info *vorbis.LogicalStreamInfo) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "channels:    %d\n", info.AudioChannels)
	fmt.Fprintf(out, "sample rate: %d Hz\n", info.AudioSampleRate)
	fmt.Fprintf(out, "bitrate:     max=%d nominal=%d min=%d\n", info.BitrateMax, info.BitrateNominal, info.BitrateMin)
	fmt.Fprintf(out, "blocksizes:  %d / %d\n", info.Blocksize0, info.Blocksize1)
	fmt.Fprintf(out, "vendor:      %s\n", info.VendorString)
	fmt.Fprintf(out, "comments:    %d\n", len(info.UserComments))
	if info.CommentHeaderDecodingFailed {
		fmt.Fprintln(out, "             (comment header decoding failed)")
	}
	fmt.Fprintf(out, "codebooks:   %d\n", len(info.Codebooks))
	fmt.Fprintf(out, "floors:      %d\n", len(info.Floors))
	fmt.Fprintf(out, "residues:    %d\n", len(info.Residues))
	fmt.Fprintf(out, "mappings:    %d\n", len(info.Mappings))
	fmt.Fprintf(out, "modes:       %d\n", len(info.Modes))
}
