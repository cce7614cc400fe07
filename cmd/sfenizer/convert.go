// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/sfenizer/internal/acquire"
	"github.com/pdiddy/sfenizer/internal/capture"
	"github.com/pdiddy/sfenizer/internal/clipboard"
	"github.com/pdiddy/sfenizer/internal/notify"
	"github.com/pdiddy/sfenizer/internal/session"
	"github.com/pdiddy/sfenizer/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [image | -]",
	Short: "Convert a board photo to SFEN and CSA",
	Long: `Convert selects one image, sends it to the conversion service and prints
the recognized position.

The image is the file at the given path, stdin when the path is "-", a
fresh photo with --camera, or the first image on the clipboard with --paste.
Inputs that are not images are ignored. With --copy the SFEN or CSA text is
also placed on the clipboard.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	addConvertFlags(convertCmd.Flags())
	rootCmd.AddCommand(convertCmd)
}

func addConvertFlags(fs *pflag.FlagSet) {
	fs.Bool("camera", false, "take the photo with the camera")
	fs.String("device", "", "camera device (default: the capture tool's default)")
	fs.Duration("warmup", 0, "camera warm-up before the shot")
	fs.Bool("paste", false, "use the first image on the clipboard")
	fs.String("copy", "", "copy a result field to the clipboard: sfen or csa")
	fs.String("format", "text", "output format: text, json or yaml")
}

// convertOptions are the parsed convert flags.
type convertOptions struct {
	path   string
	camera bool
	paste  bool
	copy   types.Field
	format string
	device capture.Options
	stdin  io.Reader
}

func parseConvertOptions(cmd *cobra.Command, args []string) (convertOptions, error) {
	var o convertOptions
	o.camera, _ = cmd.Flags().GetBool("camera")
	o.paste, _ = cmd.Flags().GetBool("paste")
	o.format, _ = cmd.Flags().GetString("format")
	o.device.Device, _ = cmd.Flags().GetString("device")
	o.device.Warmup, _ = cmd.Flags().GetDuration("warmup")
	o.stdin = cmd.InOrStdin()
	if len(args) == 1 {
		o.path = args[0]
	}

	sources := 0
	for _, set := range []bool{o.path != "", o.camera, o.paste} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return o, errors.New("give exactly one of: an image path, -, --camera or --paste")
	}

	if f, _ := cmd.Flags().GetString("copy"); f != "" {
		field, ok := types.ParseField(f)
		if !ok {
			return o, fmt.Errorf("unknown --copy field %q (want sfen or csa)", f)
		}
		o.copy = field
	}
	if !validFormat(o.format) {
		return o, fmt.Errorf("unknown --format %q (want text, json or yaml)", o.format)
	}
	return o, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	opts, err := parseConvertOptions(cmd, args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	deps := session.Deps{
		HTTPClient: httpClient(cfg),
		Notifier:   notify.NewConsole(cmd.ErrOrStderr()),
		Logger:     logger,
	}
	var clip *clipboard.Clipboard
	if opts.paste || opts.copy != "" {
		clip, err = clipboard.Detect()
		if err != nil {
			return err
		}
		deps.Clipboard = clip
	}
	sess := session.New(cfg, deps)

	if err := acquireImage(ctx, sess, clip, opts, cfg.Acquisition.MaxImageBytes); err != nil {
		return err
	}

	if _, err := sess.Dispatch.Convert(ctx); err != nil {
		return fmt.Errorf("converting: %w", err)
	}
	snap := sess.Snapshot()
	if snap.Result == nil {
		// The selection changed under us; nothing to print.
		return errors.New("conversion result was discarded")
	}

	if opts.copy != "" {
		if err := sess.Feedback.Copy(ctx, opts.copy); err != nil {
			return err
		}
	}
	return writeResult(cmd.OutOrStdout(), opts.format, snap.Artifact, snap.Result)
}

// acquireImage feeds the chosen input through its acquisition channel.
func acquireImage(ctx context.Context, sess *session.Session, clip *clipboard.Clipboard, opts convertOptions, maxBytes int64) error {
	var err error
	switch {
	case opts.camera:
		var cam *capture.Camera
		cam, err = capture.Detect()
		if err != nil {
			return err
		}
		logger.Debug().Str("tool", cam.Name()).Msg("capturing from camera")
		var c acquire.Candidate
		c, err = cam.Capture(ctx, opts.device)
		if err != nil {
			return err
		}
		_, err = sess.Acquire.FromCamera(ctx, []acquire.Candidate{c})

	case opts.paste:
		var items []types.ClipboardItem
		items, err = clip.Items(ctx)
		if err != nil {
			return err
		}
		_, err = sess.Acquire.FromPaste(ctx, items)

	case opts.path == "-":
		var c acquire.Candidate
		c, err = acquire.ReaderCandidate("stdin", opts.stdin, maxBytes)
		if err != nil {
			return err
		}
		_, err = sess.Acquire.FromDrop(ctx, []acquire.Candidate{c})

	default:
		var c acquire.Candidate
		c, err = acquire.FileCandidate(opts.path)
		if err != nil {
			return err
		}
		_, err = sess.Acquire.FromFileDialog(ctx, []acquire.Candidate{c})
	}

	if acquire.Ignored(err) {
		return fmt.Errorf("no image to convert: %w", err)
	}
	return err
}
