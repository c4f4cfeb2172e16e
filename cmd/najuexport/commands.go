package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/Faultbox/naju-export/internal/animation"
	"github.com/Faultbox/naju-export/internal/config"
	"github.com/Faultbox/naju-export/internal/exporter"
	"github.com/Faultbox/naju-export/internal/logger"
	"github.com/Faultbox/naju-export/internal/watch"
	"github.com/Faultbox/naju-export/pkg/naju"
	"github.com/Faultbox/naju-export/pkg/scene"
)

func cmdExport(args []string, cfg *config.Config, out io.Writer) error {
	if len(args) < 2 {
		return usageError(os.Stderr, "export <scene.yaml> <name>")
	}

	s, err := scene.Load(args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	e, err := exporter.New(exporter.OptionsFromConfig(cfg), logger.Named("exporter"))
	if err != nil {
		return err
	}

	paths, err := e.Export(s.Selection(), args[1])
	for _, p := range paths {
		fmt.Fprintf(out, "wrote %s\n", p)
	}
	return err
}

func cmdWatch(args []string, cfg *config.Config, out io.Writer) error {
	if len(args) < 2 {
		return usageError(os.Stderr, "watch <scene.yaml> <name>")
	}

	export := func() error {
		return cmdExport(args[:2], cfg, out)
	}
	// A broken scene on startup is reported like any later failure.
	if err := export(); err != nil {
		logger.Error("export failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := &watch.Watcher{
		Path:   args[0],
		Action: export,
		Log:    logger.Named("watch"),
	}
	return w.Run(ctx)
}

func cmdAnimate(args []string, cfg *config.Config, out io.Writer) error {
	fs := flag.NewFlagSet("animate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	objectName := fs.String("object", "", "Armature object (default: first selected armature)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < 1 {
		return usageError(os.Stderr, "animate [-object name] <scene.yaml> [out.yaml]")
	}

	in := fs.Arg(0)
	dst := in
	if fs.NArg() > 1 {
		dst = fs.Arg(1)
	}

	s, err := scene.Load(in)
	if err != nil {
		return fmt.Errorf("loading %s: %w", in, err)
	}

	obj, err := pickArmature(s, *objectName)
	if err != nil {
		return err
	}

	res, err := animation.Apply(s, obj, animation.Options{
		Filter: cfg.Animation.Target,
		Step:   cfg.Animation.FrameStep,
	}, logger.Named("animation"))
	if err != nil {
		return err
	}

	if err := s.Save(dst); err != nil {
		return fmt.Errorf("saving %s: %w", dst, err)
	}
	fmt.Fprintf(out, "applied '%s' to %s: %d frames, range 0-%d, saved %s\n",
		res.Animation, obj.Name, res.Frames, res.FrameEnd, dst)
	return nil
}

// pickArmature returns the named object, or the first selected armature.
func pickArmature(s *scene.Scene, name string) (*scene.Object, error) {
	if name != "" {
		obj := s.Object(name)
		if obj == nil {
			return nil, fmt.Errorf("%w: object '%s'", scene.ErrUnknownReference, name)
		}
		return obj, nil
	}
	for _, obj := range s.Selection() {
		if obj.Kind == scene.KindArmature {
			return obj, nil
		}
	}
	return nil, fmt.Errorf("%w: no armature selected", animation.ErrNotArmature)
}

func cmdFrames(args []string, cfg *config.Config, out io.Writer) error {
	if len(args) < 1 {
		return usageError(os.Stderr, "frames <scene.yaml>")
	}

	s, err := scene.Load(args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	parser, err := naju.NewFrameParser(cfg.Animation.NamePattern)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OBJECT\tANIMATION\tTIME\tPOSE\tMIRROR OF")
	for _, obj := range s.Objects {
		if obj.Kind != scene.KindArmature {
			continue
		}
		anims, err := naju.CollectFrames(obj.Armature.Library, parser)
		if err != nil {
			return fmt.Errorf("object '%s': %w", obj.Name, err)
		}
		for _, name := range anims.Names() {
			anim := anims[name]
			for _, t := range anim.Times() {
				f := anim.Frames[t]
				mirror := "-"
				if f.Mirror {
					mirror = fmt.Sprint(f.MirrorOf)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", obj.Name, name, t, f.Pose, mirror)
			}
		}
	}
	return tw.Flush()
}

func cmdInspect(args []string, out io.Writer) error {
	if len(args) < 1 {
		return usageError(os.Stderr, "inspect <scene.yaml>")
	}

	s, err := scene.Load(args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	fmt.Fprintf(out, "Scene:   %s\n", args[0])
	fmt.Fprintf(out, "Frames:  %d-%d\n", s.FrameStart, s.FrameEnd)
	fmt.Fprintf(out, "Images:  %d\n", len(s.Images))
	fmt.Fprintf(out, "Objects: %d\n", len(s.Objects))
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSELECTED\tDETAILS")
	for _, obj := range s.Objects {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", obj.Name, obj.TypeTag, obj.Selected, details(obj))
	}
	return tw.Flush()
}

func details(obj *scene.Object) string {
	switch obj.Kind {
	case scene.KindMesh:
		m := obj.Mesh
		images := naju.CollectImages(m)
		n := len(images)
		if images[0] == nil {
			n = 0
		}
		return fmt.Sprintf("%d vertices, %d faces, %d images", len(m.Vertices), len(m.Polygons), n)
	case scene.KindArmature:
		a := obj.Armature
		return fmt.Sprintf("%d bones, %d poses, %d keyframes", len(a.Bones), len(a.Library), len(a.Keyframes))
	default:
		return "not exported"
	}
}
