// Command arsim runs a scripted AR placement session headlessly.
//
// The scenario drives a simulated device; every rendered frame can be
// written as a PNG with the instruction overlay, and the run can be
// recorded as CBOR and replayed later.
//
// Usage:
//
//	arsim --scenario place.yaml --out frames/ --record run.cbor
//	arsim --replay run.cbor --lang es
//
// Every flag falls back to an ARPLACE_* environment variable.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/gogpu/arplace"
	"github.com/gogpu/arplace/asset"
	"github.com/gogpu/arplace/experience"
	"github.com/gogpu/arplace/internal/config"
	"github.com/gogpu/arplace/internal/otel"
	"github.com/gogpu/arplace/overlay"
	"github.com/gogpu/arplace/render"
	"github.com/gogpu/arplace/xrsim"
)

// passthrough stands in for the camera feed behind the transparent scene.
var passthrough = color.RGBA{R: 0x5a, G: 0x60, B: 0x66, A: 0xff}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "arsim: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := pflag.NewFlagSet("arsim", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "YAML scenario to run")
	fs.StringVar(&cfg.Replay, "replay", cfg.Replay, "CBOR recording to replay instead of a scenario")
	fs.StringVar(&cfg.Record, "record", cfg.Record, "write a CBOR recording of the run to this file")
	fs.StringVar(&cfg.Asset, "asset", cfg.Asset, "glTF/GLB model; the simulated loader is used if the file does not exist")
	fs.StringVarP(&cfg.OutDir, "out", "o", cfg.OutDir, "directory for PNG frames (none written if empty)")
	fs.IntVar(&cfg.Every, "every", cfg.Every, "write every Nth frame")
	fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "overlay language")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "frame width in pixels")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "frame height in pixels")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.Renderer, "renderer", cfg.Renderer, "software, or gpu to compile the placement shader (frames still rasterize on the CPU)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	arplace.SetLogger(logger)
	defer arplace.SetLogger(nil)

	ctx := context.Background()
	shutdown, err := otel.Setup(ctx, "arsim", cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			logger.Warn("trace shutdown failed", "err", err)
		}
	}()

	script, err := loadScript(cfg)
	if err != nil {
		return err
	}
	return simulate(ctx, cfg, script, logger, stdout)
}

func loadScript(cfg config.Config) (*xrsim.Script, error) {
	if cfg.Replay != "" {
		rec, err := xrsim.ReadRecording(cfg.Replay)
		if err != nil {
			return nil, err
		}
		return rec.Script(), nil
	}
	return xrsim.LoadScript(cfg.Scenario)
}

func simulate(ctx context.Context, cfg config.Config, script *xrsim.Script, logger *slog.Logger, stdout io.Writer) error {
	device := xrsim.NewDevice(script)

	var loader asset.Loader = device.AssetLoader(script.Asset)
	if _, err := os.Stat(cfg.Asset); err == nil {
		loader = asset.NewGLTFLoader()
	} else {
		logger.Info("model file not found, using simulated loader", "asset", cfg.Asset)
	}

	cat := overlay.DefaultCatalog()
	var ui overlay.State
	signals := func(sig arplace.Signal, err error) {
		ui.Handle(sig, err)
		logger.Debug("signal", "signal", sig, "err", err)
	}

	renderer, err := newRenderer(cfg.Renderer)
	if err != nil {
		return err
	}
	defer func() { _ = renderer.Flush() }()

	target := render.NewPixmapTarget(cfg.Width, cfg.Height)
	exp := experience.New(device, device,
		experience.WithAsset(cfg.Asset),
		experience.WithLoader(loader),
		experience.WithRenderer(renderer, target),
		experience.WithSignals(signals),
	)

	if cfg.OutDir != "" {
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return err
		}
	}
	writeFrame := func(step int) error {
		if cfg.OutDir == "" {
			return nil
		}
		path := filepath.Join(cfg.OutDir, fmt.Sprintf("frame_%04d.png", step))
		return savePNG(path, compose(target, cat.Text(ui.Instruction(), cfg.Lang)))
	}

	if err := exp.Start(ctx); err != nil {
		ui.StartFailed(err)
		if !errors.Is(err, arplace.ErrCapabilityUnavailable) {
			return err
		}
		logger.Warn("AR unavailable", "err", err)
		if err := writeFrame(0); err != nil {
			return err
		}
		return report(stdout, exp.Snapshot(), cat.Text(ui.Instruction(), cfg.Lang))
	}

	var rec *xrsim.Recording
	if cfg.Record != "" {
		rec = xrsim.NewRecording(script)
	}
	var writeErr error
	device.Play(exp, func(step int, input xrsim.FrameSpec, ran bool) {
		snap := exp.Snapshot()
		if rec != nil {
			rec.Add(xrsim.StepRecord{
				Step:      step,
				Input:     input,
				Ran:       ran,
				Session:   snap.Session.String(),
				Placement: snap.Placement.String(),
				Reticle:   snap.Reticle.Visible,
				Asset:     snap.AssetVisible,
			})
		}
		if ran && writeErr == nil && step%cfg.Every == 0 {
			writeErr = writeFrame(step)
		}
	})
	if writeErr != nil {
		return writeErr
	}
	if rec != nil {
		if err := xrsim.WriteRecording(cfg.Record, rec); err != nil {
			return err
		}
	}
	return report(stdout, exp.Snapshot(), cat.Text(ui.Instruction(), cfg.Lang))
}

func newRenderer(kind string) (render.Renderer, error) {
	if kind != "gpu" {
		return render.NewSoftwareRenderer(), nil
	}
	r, err := render.NewGPURenderer(render.NullDeviceHandle{})
	if err != nil {
		return nil, err
	}
	arplace.Logger().Info("placement shader compiled", "words", len(r.SPIRV()), "gpu", r.HasShaderModule())
	return r, nil
}

// compose lays the rendered scene over the passthrough color and draws the
// instruction band.
func compose(target *render.PixmapTarget, text string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, target.Width(), target.Height()))
	draw.Draw(img, img.Bounds(), image.NewUniform(passthrough), image.Point{}, draw.Src)
	draw.Draw(img, img.Bounds(), target.Image(), image.Point{}, draw.Over)
	overlay.Draw(img, text, overlay.DefaultStyle)
	return img
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func report(w io.Writer, s experience.Snapshot, instruction string) error {
	p := s.Asset.Position
	_, err := fmt.Fprintf(w,
		"session:     %s\nplacement:   %s\nframes:      %d\nasset:       visible=%t loaded=%t failed=%t at (%.3f, %.3f, %.3f)\ninstruction: %s\n",
		s.Session, s.Placement, s.Frames,
		s.AssetVisible, s.AssetLoaded, s.AssetFailed, p.X, p.Y, p.Z,
		instruction)
	return err
}
