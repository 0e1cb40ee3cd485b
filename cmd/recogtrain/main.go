// Command recogtrain builds template recognizer models from directories of
// symbol images. Labeled training reads the label from the file name
// prefix; unlabeled material can be bootstrapped with the packaged digit
// recognizer or with Tesseract.
//
// Usage: recogtrain train <samples-dir> --out model.json [options]
package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/tiff"
	"golang.org/x/sync/errgroup"

	"glyph-recog/internal/config"
	"glyph-recog/internal/imaging"
	"glyph-recog/internal/ocrboot"
	"glyph-recog/internal/recog"
	"glyph-recog/pkg/geometry"
)

var (
	flagConfig string

	flagOut         string
	flagScaleWidth  int
	flagScaleHeight int
	flagLineWidth   int
	flagThreshold   int
	flagMaxYShift   int
	flagCharset     string
	flagDebugDir    string

	flagRemoveOutliers bool
	flagMinScore       float64
	flagMinFraction    float64
	flagPad            bool

	flagBootScaleH  int
	flagBootLineW   int
	flagBootUseOCR  bool
	flagBootMinConf float64
)

func main() {
	root := &cobra.Command{
		Use:           "recogtrain",
		Short:         "Train and inspect template symbol recognizers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "recogtrain.toml", "TOML config file (missing file is ignored)")

	train := &cobra.Command{
		Use:   "train <samples-dir>",
		Short: "Build a model from labeled sample images",
		Long: "Build a model from a directory of sample images. The label is the\n" +
			"file name up to the first '_' or '.'; a multi-symbol label triggers\n" +
			"segmentation of the image into that many symbols.",
		Args: cobra.ExactArgs(1),
		RunE: runTrain,
	}
	train.Flags().StringVar(&flagOut, "out", "model.json", "Output model file")
	train.Flags().IntVar(&flagScaleWidth, "scale-width", 0, "Template width, 0 to disable")
	train.Flags().IntVar(&flagScaleHeight, "scale-height", 0, "Template height, 0 to disable")
	train.Flags().IntVar(&flagLineWidth, "line-width", 0, "Stroke normalization width, 0 to disable")
	train.Flags().IntVar(&flagThreshold, "threshold", 128, "Binarization threshold, 0 for Otsu")
	train.Flags().IntVar(&flagMaxYShift, "max-y-shift", 1, "Vertical matching jiggle in pixels")
	train.Flags().StringVar(&flagCharset, "charset", "", "Expected charset (digits, upper-alpha, ...)")
	train.Flags().BoolVar(&flagRemoveOutliers, "remove-outliers", false, "Drop poorly matching samples after training")
	train.Flags().Float64Var(&flagMinScore, "min-score", 0, "Outlier correlation floor, 0 for default")
	train.Flags().Float64Var(&flagMinFraction, "min-fraction", 0, "Per-class retention fraction, 0 for default")
	train.Flags().BoolVar(&flagPad, "pad", false, "Pad deficient digit classes with synthetic templates")
	train.Flags().StringVar(&flagDebugDir, "debug-dir", "", "Write debug sheets to this directory")

	boot := &cobra.Command{
		Use:   "boot <samples-dir>",
		Short: "Build a digit model from unlabeled sample images",
		Args:  cobra.ExactArgs(1),
		RunE:  runBoot,
	}
	boot.Flags().StringVar(&flagOut, "out", "model.json", "Output model file")
	boot.Flags().IntVar(&flagBootScaleH, "boot-scale-height", 40, "Boot template height")
	boot.Flags().IntVar(&flagBootLineW, "boot-line-width", 0, "Boot stroke normalization width")
	boot.Flags().Float64Var(&flagMinScore, "min-score", 0.75, "Labeling confidence floor")
	boot.Flags().IntVar(&flagThreshold, "threshold", 128, "Binarization threshold, 0 for Otsu")
	boot.Flags().BoolVar(&flagBootUseOCR, "ocr", false, "Label with Tesseract instead of the packaged digit recognizer")
	boot.Flags().Float64Var(&flagBootMinConf, "ocr-min-conf", 0.5, "Tesseract confidence floor")
	boot.Flags().StringVar(&flagDebugDir, "debug-dir", "", "Write debug sheets to this directory")

	show := &cobra.Command{
		Use:   "show <model.json>",
		Short: "Dump a model's classes and parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
	show.Flags().StringVar(&flagDebugDir, "debug-dir", "", "Write the class average sheet to this directory")

	identify := &cobra.Command{
		Use:   "identify <model.json> <image>",
		Short: "Match one symbol image against a model",
		Args:  cobra.ExactArgs(2),
		RunE:  runIdentify,
	}

	root.AddCommand(train, boot, show, identify)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTrain(cmd *cobra.Command, args []string) error {
	params, cfgMinScore, cfgMinFract, err := loadParams()
	if err != nil {
		return err
	}
	if flagMinScore == 0 {
		flagMinScore = cfgMinScore
	}
	if flagMinFraction == 0 {
		flagMinFraction = cfgMinFract
	}

	samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d sample images from %s\n", len(samples), args[0])

	diag := &recog.Diagnostics{}
	model := recog.New(params)
	trained, failed := 0, 0
	for _, s := range samples {
		if err := model.TrainLabeled(s.img, geometry.RectInt{}, s.label, diag); err != nil {
			fmt.Printf("  %s: %v\n", s.path, err)
			failed++
			continue
		}
		trained++
	}
	fmt.Printf("Trained on %d images (%d failed)\n", trained, failed)
	if err := model.TrainingFinished(true); err != nil {
		return err
	}

	if flagRemoveOutliers {
		kept, removed, _, err := recog.RemoveOutliers(model.ExtractGlyphs(), flagMinScore, flagMinFraction, diag)
		if err != nil {
			return err
		}
		fmt.Printf("Outlier filter: kept %d, removed %d\n", len(kept), len(removed))
		if len(removed) > 0 {
			model, err = recog.NewFromGlyphs(kept, params)
			if err != nil {
				return err
			}
		}
	}

	if flagPad {
		model, err = recog.PadDigitTrainingSet(model, params.ScaleH, -1)
		if err != nil {
			return err
		}
	}

	if err := model.ComputeAverages(); err != nil {
		return err
	}
	recog.ShowContent(os.Stdout, model)
	diag.Summary(os.Stdout)

	if err := writeDebugSheets(diag, model); err != nil {
		return err
	}
	return model.Save(flagOut)
}

func runBoot(cmd *cobra.Command, args []string) error {
	samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d unlabeled images from %s\n", len(samples), args[0])

	diag := &recog.Diagnostics{}
	var glyphs []recog.Glyph
	if flagBootUseOCR {
		labeler, err := ocrboot.NewLabeler("")
		if err != nil {
			return err
		}
		defer labeler.Close()
		glyphs, err = ocrLabel(labeler, samples)
		if err != nil {
			return err
		}
	} else {
		bootModel, err := recog.MakeBootDigitRecog(flagBootScaleH, flagBootLineW, 1)
		if err != nil {
			return err
		}
		images := make([]image.Image, len(samples))
		for i, s := range samples {
			images[i] = s.img
		}
		glyphs, err = recog.TrainFromBoot(bootModel, images, flagMinScore, flagThreshold, diag)
		if err != nil {
			return err
		}
	}
	if len(glyphs) == 0 {
		return fmt.Errorf("no samples could be labeled")
	}

	model, err := recog.NewFromGlyphs(glyphs, recog.Params{
		ScaleH:    flagBootScaleH,
		LineWidth: flagBootLineW,
		Threshold: flagThreshold,
		MaxYShift: 1,
		Charset:   recog.CharsetDigits,
	})
	if err != nil {
		return err
	}
	if err := model.ComputeAverages(); err != nil {
		return err
	}
	recog.ShowContent(os.Stdout, model)
	diag.Summary(os.Stdout)

	if err := writeDebugSheets(diag, model); err != nil {
		return err
	}
	return model.Save(flagOut)
}

func runShow(cmd *cobra.Command, args []string) error {
	model, err := recog.Load(args[0])
	if err != nil {
		return err
	}
	if err := model.ComputeAverages(); err != nil {
		return err
	}
	recog.ShowContent(os.Stdout, model)
	if flagDebugDir != "" {
		return writeDebugSheets(nil, model)
	}
	return nil
}

func runIdentify(cmd *cobra.Command, args []string) error {
	model, err := recog.Load(args[0])
	if err != nil {
		return err
	}
	img, err := loadImage(args[1])
	if err != nil {
		return err
	}
	bm, err := imaging.Binarize(img, model.Params.Threshold)
	if err != nil {
		return err
	}
	tight := bm.TightCrop()
	if tight == nil {
		return fmt.Errorf("image has no foreground")
	}
	probe, err := model.ModifyTemplate(tight)
	if err != nil {
		return err
	}
	idx, score, label, err := model.IdentifyAverages(probe)
	if err != nil {
		return err
	}
	fmt.Printf("%s: class %d %q, score %.3f\n", args[1], idx, label, score)
	return nil
}

// loadParams merges the config file onto the flag values.
func loadParams() (recog.Params, float64, float64, error) {
	params := recog.DefaultParams()
	params.ScaleW = flagScaleWidth
	params.ScaleH = flagScaleHeight
	params.LineWidth = flagLineWidth
	params.Threshold = flagThreshold
	params.MaxYShift = flagMaxYShift
	if flagCharset != "" {
		cs, err := config.ParseCharset(flagCharset)
		if err != nil {
			return params, 0, 0, err
		}
		params.Charset = cs
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return params, 0, 0, err
	}
	return cfg.Apply(params)
}

// sample is one decoded input image with the label taken from its file
// name.
type sample struct {
	path  string
	label string
	img   image.Image
}

// loadSamples decodes every supported image under dir in parallel,
// preserving a stable path order.
func loadSamples(dir string) ([]sample, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no image files under %s", dir)
	}
	sort.Strings(paths)

	samples := make([]sample, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			img, err := loadImage(path)
			if err != nil {
				return err
			}
			samples[i] = sample{path: path, label: labelFromPath(path), img: img}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return samples, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// labelFromPath takes the file name up to the first '_' or '.' as the
// label, so "7_003.png" and "45.png" both work.
func labelFromPath(path string) string {
	name := filepath.Base(path)
	if i := strings.IndexAny(name, "_."); i >= 0 {
		name = name[:i]
	}
	return name
}

// ocrLabel binarizes the samples and labels them with Tesseract. The
// client handles one image at a time, so this runs serially.
func ocrLabel(labeler *ocrboot.Labeler, samples []sample) ([]recog.Glyph, error) {
	var glyphs []recog.Glyph
	for _, s := range samples {
		bm, err := imaging.Binarize(s.img, flagThreshold)
		if err != nil {
			return nil, fmt.Errorf("binarizing %s: %w", s.path, err)
		}
		tight := bm.TightCrop()
		if tight == nil {
			continue
		}
		label, conf, err := labeler.Label(tight)
		if err != nil {
			return nil, fmt.Errorf("labeling %s: %w", s.path, err)
		}
		if label == "" || conf < flagBootMinConf {
			continue
		}
		glyphs = append(glyphs, recog.Glyph{Image: tight, Label: label})
	}
	return glyphs, nil
}

// writeDebugSheets saves the outlier and class-average sheets when a
// debug directory is configured.
func writeDebugSheets(diag *recog.Diagnostics, model *recog.Recog) error {
	if flagDebugDir == "" {
		return nil
	}
	if err := os.MkdirAll(flagDebugDir, 0755); err != nil {
		return fmt.Errorf("creating debug dir: %w", err)
	}
	if sheet := diag.RenderOutliers(); sheet != nil {
		if err := savePNG(filepath.Join(flagDebugDir, "outliers.png"), sheet); err != nil {
			return err
		}
	}
	if sheet := recog.RenderAverages(model); sheet != nil {
		if err := savePNG(filepath.Join(flagDebugDir, "averages.png"), sheet); err != nil {
			return err
		}
	}
	return nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	fmt.Printf("Saved debug sheet: %s\n", path)
	return nil
}
