// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package capture takes a still photo with whatever camera tool the machine
// has: libcamera-still (Raspberry Pi), fswebcam (V4L2) or imagesnap (macOS).
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/sfenizer/internal/acquire"
	"github.com/pdiddy/sfenizer/internal/toolexec"
)

// Options tunes a capture.
type Options struct {
	// Device is the camera device (e.g. /dev/video1). Empty uses the tool default.
	Device string

	// Warmup gives auto-exposure time to settle before the shot.
	Warmup time.Duration
}

type backend struct {
	name string
	req  toolexec.Requirement
	argv func(out string, opts Options) []string
}

func (b *backend) Name() string                      { return b.name }
func (b *backend) Requirement() toolexec.Requirement { return b.req }

var (
	libcamera = &backend{
		name: "libcamera-still",
		req:  toolexec.Requirement{Bins: []string{"libcamera-still"}},
		argv: func(out string, opts Options) []string {
			args := []string{"libcamera-still", "--nopreview", "--encoding", "jpg", "-o", out}
			if opts.Warmup > 0 {
				args = append(args, "--timeout", fmt.Sprint(opts.Warmup.Milliseconds()))
			} else {
				args = append(args, "--immediate")
			}
			return args
		},
	}
	fswebcam = &backend{
		name: "fswebcam",
		req:  toolexec.Requirement{Bins: []string{"fswebcam"}},
		argv: func(out string, opts Options) []string {
			args := []string{"fswebcam", "--no-banner", "--jpeg", "95"}
			if opts.Device != "" {
				args = append(args, "--device", opts.Device)
			}
			if opts.Warmup > 0 {
				args = append(args, "--delay", fmt.Sprint(int(opts.Warmup.Seconds())))
			}
			return append(args, out)
		},
	}
	imagesnap = &backend{
		name: "imagesnap",
		req:  toolexec.Requirement{Bins: []string{"imagesnap"}},
		argv: func(out string, opts Options) []string {
			args := []string{"imagesnap", "-q"}
			if opts.Device != "" {
				args = append(args, "-d", opts.Device)
			}
			if opts.Warmup > 0 {
				args = append(args, "-w", fmt.Sprintf("%.1f", opts.Warmup.Seconds()))
			}
			return append(args, out)
		},
	}
)

// Camera takes photos with one detected tool.
type Camera struct {
	b      *backend
	ex     toolexec.Executor
	tmpDir string
}

// Detect picks the first camera tool usable on this machine.
func Detect() (*Camera, error) {
	return detect(toolexec.Default, "")
}

func detect(ex toolexec.Executor, tmpDir string) (*Camera, error) {
	b, err := toolexec.Detect(ex, "camera tool", libcamera, fswebcam, imagesnap)
	if err != nil {
		return nil, err
	}
	return &Camera{b: b, ex: ex, tmpDir: tmpDir}, nil
}

// Name returns the tool in use.
func (c *Camera) Name() string { return c.b.name }

// Capture takes one JPEG photo and offers it as an acquisition candidate.
// The photo is held in memory; the temporary file is removed.
func (c *Camera) Capture(ctx context.Context, opts Options) (acquire.Candidate, error) {
	dir, err := os.MkdirTemp(c.tmpDir, "sfenizer-capture-*")
	if err != nil {
		return acquire.Candidate{}, fmt.Errorf("creating capture directory: %w", err)
	}
	defer os.RemoveAll(dir)

	name := "capture-" + time.Now().Format("20060102-150405") + ".jpg"
	out := filepath.Join(dir, name)

	argv := c.b.argv(out, opts)
	if err := c.ex.Run(ctx, argv[0], argv[1:], nil, nil); err != nil {
		return acquire.Candidate{}, fmt.Errorf("capturing with %s: %w", c.b.name, err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return acquire.Candidate{}, fmt.Errorf("reading capture: %w", err)
	}
	if len(data) == 0 {
		return acquire.Candidate{}, fmt.Errorf("%s produced an empty image", c.b.name)
	}
	return acquire.BytesCandidate(name, "image/jpeg", data), nil
}
