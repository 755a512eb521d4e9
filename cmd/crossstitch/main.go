// Command crossstitch turns an image into a cross-stitch pattern.
//
//	crossstitch [flags] image
//
// The image is resized to at most -max-side stitches on its longer side,
// reduced to -n thread colors and drawn as a grid. resized.bmp, floss.bmp,
// full_floss.bmp and palette.png are written to -o.
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/setanarut/crossstitch"
	"github.com/setanarut/crossstitch/palette"
	"github.com/setanarut/crossstitch/pattern"
	"github.com/setanarut/crossstitch/utils"
)

type config struct {
	input         string
	outputDir     string
	colors        int
	algorithm     string
	strategy      string
	kdTree        bool
	palettePath   string
	paletteMethod string
	paletteSize   int
	maxSide       int
	seed          uint64
	maxIter       int
	workers       int
	verbose       bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.outputDir, "o", ".", "output directory")
	flag.IntVar(&cfg.colors, "n", 16, "number of thread colors")
	flag.StringVar(&cfg.algorithm, "a", "median_cut", "algorithm: median_cut or lloyds")
	flag.StringVar(&cfg.strategy, "s", "", "median cut: size, population or hybrid; lloyds: random or forgy")
	flag.BoolVar(&cfg.kdTree, "k", false, "use a k-d tree for lloyds nearest-region search")
	flag.StringVar(&cfg.palettePath, "palette", "", "thread table, CSV or CSV.zst (default: palette extracted from the image)")
	flag.StringVar(&cfg.paletteMethod, "palette-method", "dominantcolor", "palette extraction: dominantcolor or kmeans")
	flag.IntVar(&cfg.paletteSize, "palette-size", 32, "size of an extracted palette")
	flag.IntVar(&cfg.maxSide, "max-side", 100, "longest side of the pattern in stitches")
	flag.Uint64Var(&cfg.seed, "seed", 0, "random seed for lloyds (0 picks one)")
	flag.IntVar(&cfg.maxIter, "max-iter", 0, "lloyds iteration cap (0 uses the default)")
	flag.IntVar(&cfg.workers, "workers", 0, "lloyds assignment goroutines (0 uses one per CPU)")
	flag.BoolVar(&cfg.verbose, "v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] image\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	cfg.input = flag.Arg(0)

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(cfg, log); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cfg config, log *slog.Logger) error {
	alg, err := crossstitch.ParseAlgorithm(cfg.algorithm)
	if err != nil {
		return err
	}
	opt := crossstitch.DefaultOptions()
	opt.Colors = cfg.colors
	opt.Algorithm = alg
	opt.KDTree = cfg.kdTree
	opt.MaxIterations = cfg.maxIter
	opt.Workers = cfg.workers
	opt.Logger = log
	if cfg.strategy != "" {
		opt.SetStrategy(cfg.strategy)
	}
	if cfg.seed != 0 {
		opt.Rand = rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15))
	}
	if err := os.MkdirAll(cfg.outputDir, 0o755); err != nil {
		return err
	}

	src, err := utils.ReadImage(cfg.input)
	if err != nil {
		return err
	}
	log.Info("resizing image into a reasonable stitching size")
	resized := utils.Resize(src, cfg.maxSide)
	size := resized.Bounds().Size()
	log.Info("image size",
		"original", src.Bounds().Size(),
		"resized", size,
		"final", size.Mul(pattern.DefaultOptions().Cell))
	if err := utils.SaveImage(resized, filepath.Join(cfg.outputDir, "resized.bmp")); err != nil {
		return err
	}

	pal, err := loadPalette(cfg, resized, log)
	if err != nil {
		return err
	}

	log.Info("flossing image", "algorithm", opt.Algorithm)
	res, err := crossstitch.Quantize(crossstitch.ImageFromStd(resized), pal, opt)
	if err != nil {
		return err
	}
	flossed := res.Image()
	if err := utils.SaveImage(flossed, filepath.Join(cfg.outputDir, "floss.bmp")); err != nil {
		return err
	}

	log.Info("drawing pattern")
	if err := utils.SaveImage(pattern.Render(flossed, pattern.DefaultOptions()), filepath.Join(cfg.outputDir, "full_floss.bmp")); err != nil {
		return err
	}

	legend := pattern.Legend(res)
	used := make(palette.Palette, len(legend))
	for i, s := range legend {
		fmt.Printf("%-8s %s %6d\n", s.Entry.Label, s.Entry.Hex(), s.Count)
		used[i] = s.Entry
	}
	return utils.SavePalette(used, 64, filepath.Join(cfg.outputDir, "palette.png"))
}

func loadPalette(cfg config, img *image.NRGBA, log *slog.Logger) (palette.Palette, error) {
	if cfg.palettePath != "" {
		pal, err := palette.Load(cfg.palettePath)
		if err != nil {
			return nil, err
		}
		log.Info("loaded thread table", "path", cfg.palettePath, "threads", len(pal))
		return pal, nil
	}
	method, err := utils.ParsePaletteMethod(cfg.paletteMethod)
	if err != nil {
		return nil, err
	}
	pal := utils.ExtractPalette(img, cfg.paletteSize, method, log)
	if len(pal) == 0 {
		return nil, palette.ErrEmpty
	}
	utils.SortByBrightness(pal)
	log.Info("extracted palette", "method", method, "threads", len(pal))
	return pal, nil
}
