package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	fx "depthfx/pkg/depthfx"
)

type options struct {
	colorPath   string
	depthPath   string
	background  string
	mode        string
	filter      string
	focus       float64
	out         string
	annotate    bool
	orientation int
	upright     bool
	frames      string
	fps         float64
	realtime    bool
	debug       bool
}

func main() {
	var opts options
	flag.StringVar(&opts.colorPath, "color", "", "color image")
	flag.StringVar(&opts.depthPath, "depth", "", "depth or disparity image belonging to -color")
	flag.StringVar(&opts.background, "background", "", "replacement image for the greenscreen filter")
	flag.StringVar(&opts.mode, "mode", "filtered", "preview mode: original, depth, mask or filtered")
	flag.StringVar(&opts.filter, "filter", "spotlight", "filter: spotlight, color, blur, bw, greenscreen, comic, crystallize, edges, rotate")
	flag.Float64Var(&opts.focus, "focus", 0.5, "normalized disparity to focus on, 0 (far) to 1 (near)")
	flag.StringVar(&opts.out, "out", "out.png", "output file, or output directory with -frames")
	flag.BoolVar(&opts.annotate, "annotate", false, "print mode, filter and focus onto the output")
	flag.IntVar(&opts.orientation, "orientation", 1, "EXIF orientation of the color image (1-8)")
	flag.BoolVar(&opts.upright, "upright", false, "rotate the output upright according to -orientation")
	flag.StringVar(&opts.frames, "frames", "", "directory of color_*/depth_* frames to process as a sequence")
	flag.Float64Var(&opts.fps, "fps", 30, "frame rate used to timestamp -frames")
	flag.BoolVar(&opts.realtime, "realtime", false, "replay -frames at -fps like a live camera, dropping frames the worker cannot keep up with")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.Parse()

	logger := initLogger(opts.debug)
	if err := run(opts, logger); err != nil {
		logger.WithError(err).Error("depthfx failed")
		os.Exit(1)
	}
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger
}

func run(opts options, logger *logrus.Logger) error {
	mode, err := fx.ParsePreviewMode(opts.mode)
	if err != nil {
		return err
	}
	filter, err := fx.ParseFilterType(opts.filter)
	if err != nil {
		return err
	}
	sel := fx.Selection{Mode: mode, Filter: filter, Focus: opts.focus}

	ctx := fx.NewContext()
	if opts.background != "" {
		bg, err := loadColor(opts.background)
		if err != nil {
			return fmt.Errorf("background: %w", err)
		}
		ctx.Background = bg
	}
	proc := fx.NewProcessor(ctx, fx.WithLogger(logger))
	proc.SetSelection(sel)

	logger.WithFields(logrus.Fields{
		"mode":   mode.String(),
		"filter": filter.String(),
		"focus":  opts.focus,
	}).Info("starting")

	if opts.frames != "" {
		return runSequence(opts, proc, logger)
	}
	return runPhoto(opts, proc, logger)
}

func runPhoto(opts options, proc *fx.Processor, logger *logrus.Logger) error {
	if opts.colorPath == "" {
		return errors.New("usage: depthfx -color <image> -depth <depth image> [flags]")
	}
	start := time.Now()
	img, err := loadColor(opts.colorPath)
	if err != nil {
		return err
	}
	pair := fx.Pair{Seq: 1, Color: fx.ColorFrame{Image: img, Orientation: fx.Orientation(opts.orientation)}}
	if opts.depthPath != "" {
		buf, err := loadDepth(opts.depthPath)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"format": buf.Format.String(),
			"width":  buf.Width,
			"height": buf.Height,
		}).Debug("depth loaded")
		pair.Depth = fx.DepthFrame{Buffer: buf}
	}

	res := proc.Process(pair, proc.Selection())
	if res.Fallback != nil {
		logger.WithError(res.Fallback).Warn("writing unfiltered image")
	}
	if err := writeResult(opts, opts.out, res, proc.Selection()); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"out":     opts.out,
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	}).Info("done")
	return nil
}

func runSequence(opts options, proc *fx.Processor, logger *logrus.Logger) error {
	colors, err := filepath.Glob(filepath.Join(opts.frames, "color_*"))
	if err != nil {
		return err
	}
	depths, err := filepath.Glob(filepath.Join(opts.frames, "depth_*"))
	if err != nil {
		return err
	}
	sort.Strings(colors)
	sort.Strings(depths)
	if len(colors) == 0 {
		return fmt.Errorf("no color_* frames in %s", opts.frames)
	}
	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interval := time.Duration(float64(time.Second) / max(1, opts.fps))
	frames := fx.NewSynchronizer(fx.NewSyncParams())

	// Without -realtime every pair is handed over only once the worker has
	// taken the previous one, so no frame is dropped.
	go func() {
		defer frames.Close()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		epoch := time.Now()
		for i, path := range colors {
			ts := epoch.Add(time.Duration(i) * interval)
			img, err := loadColor(path)
			if err != nil {
				logger.WithError(err).WithField("frame", path).Warn("skipping color frame")
				continue
			}
			if !opts.realtime {
				if err := frames.WaitIdle(ctx); err != nil {
					return
				}
			}
			if i < len(depths) {
				buf, err := loadDepth(depths[i])
				if err != nil {
					logger.WithError(err).WithField("frame", depths[i]).Warn("depth frame unreadable")
				} else {
					frames.PublishDepth(fx.DepthFrame{Timestamp: ts, Buffer: buf})
				}
			}
			frames.PublishColor(fx.ColorFrame{Timestamp: ts, Image: img, Orientation: fx.Orientation(opts.orientation)})

			if !opts.realtime {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	written := 0
	var writeErr error
	err = proc.Run(ctx, frames, func(res fx.Result) {
		if writeErr != nil {
			return
		}
		path := filepath.Join(opts.out, fmt.Sprintf("frame_%05d.png", res.Seq))
		if res.Fallback != nil {
			logger.WithError(res.Fallback).WithField("seq", res.Seq).Warn("frame left unfiltered")
		}
		writeErr = writeResult(opts, path, res, proc.Selection())
		written++
	})
	if writeErr != nil {
		return writeErr
	}

	stats := frames.Stats()
	total, fallbacks := proc.Processed()
	logger.WithFields(logrus.Fields{
		"written":   written,
		"paired":    stats.Paired,
		"unmatched": stats.Unmatched,
		"dropped":   stats.Dropped,
		"fallbacks": fallbacks,
		"processed": total,
	}).Info("sequence done")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func writeResult(opts options, path string, res fx.Result, sel fx.Selection) error {
	if res.Output == nil {
		return fmt.Errorf("frame %d produced no output: %w", res.Seq, res.Fallback)
	}
	var img image.Image = res.Output.Image
	if opts.upright {
		img = res.Output.Orientation.Apply(img)
	}
	if opts.annotate {
		img = fx.Annotate(img,
			fmt.Sprintf("%s / %s", sel.Mode, sel.Filter),
			fmt.Sprintf("focus %.2f", sel.Focus))
	}
	return fx.WriteImage(path, img)
}

func loadColor(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}
