package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/speedreader/speedreader/internal/config"
	"github.com/speedreader/speedreader/internal/detection"
	"github.com/speedreader/speedreader/internal/engine"
	"github.com/speedreader/speedreader/internal/kernel"
	"github.com/speedreader/speedreader/internal/kernel/mock"
	"github.com/speedreader/speedreader/internal/kernel/onnxrt"
	"github.com/speedreader/speedreader/internal/models"
	"github.com/speedreader/speedreader/internal/ocrpipeline"
	"github.com/speedreader/speedreader/internal/recognition"
	"github.com/spf13/cobra"
)

// detectionMockShape is the DBNet-class [batch, 1, height, width]
// probability map shape the mock kernel fabricates when --mock is set.
var detectionMockShape = []int{1, 1, 160, 160}

// recognitionMockTimesteps is the sequence length the mock recognition
// kernel fabricates when --mock is set.
const recognitionMockTimesteps = 40

var readCmd = &cobra.Command{
	Use:   "read IMAGE [IMAGE...]",
	Short: "Detect and recognize text in one or more images",
	Long: `read loads one or more image files, runs them through the detection
and recognition pipeline, and prints one JSON result per image to stdout
in submission order.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runRead,
}

func init() {
	readCmd.Flags().Int("max-parallelism", 4, "initial inference parallelism; the pipeline admits up to twice this many images at once")
}

// wordResult is the per-detected-region shape of read's JSON output.
type wordResult struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Box        [][2]int `json:"box"`
}

// imageResult is the per-image shape of read's JSON output.
type imageResult struct {
	Path  string       `json:"path"`
	Words []wordResult `json:"words"`
	Error string       `json:"error,omitempty"`
}

func runRead(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	useMock, _ := cmd.Flags().GetBool("mock")
	maxParallelism, _ := cmd.Flags().GetInt("max-parallelism")
	if maxParallelism > 0 {
		cfg.Executor.InitialParallelism = maxParallelism
	}

	pipe, closeFn, err := buildPipeline(cfg, useMock)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}
	defer closeFn()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	paths := make([]string, 0, len(args))
	images := make(chan image.Image, len(args))
	for _, path := range args {
		img, err := loadImage(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		paths = append(paths, path)
		images <- img
	}
	close(images)

	results := pipe.ReadMany(ctx, images)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	i := 0
	for res := range results {
		out := imageResult{Path: paths[i]}
		if res.Err != nil {
			out.Error = res.Err.Error()
		} else {
			for j, rec := range res.Recognitions {
				word := wordResult{Text: rec.Text, Confidence: rec.Confidence}
				if j < len(res.Detections) {
					word.Box = corners(res.Detections[j])
				}
				out.Words = append(out.Words, word)
			}
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
		i++
	}
	return nil
}

func corners(box detection.Box) [][2]int {
	pts := box.Rotated.Corners()
	out := make([][2]int, len(pts))
	for i, p := range pts {
		out[i] = [2]int{int(p.X), int(p.Y)}
	}
	return out
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// buildPipeline wires a detection.Detector and recognition.Recognizer,
// each backed by its own engine.Engine (and, unless useMock, its own
// onnxrt.Session), into one ocrpipeline.Pipeline, grounded on the
// teacher's cmd/ocr/cmd/image.go model-loading sequence.
func buildPipeline(cfg *config.Config, useMock bool) (*ocrpipeline.Pipeline, func(), error) {
	modelsDir := models.Dir(cfg.ModelsDir)

	var charset *models.Charset
	var detKernel, recKernel kernel.Kernel
	var err error

	if useMock {
		detKernel = mock.New([]int{1, 3, 640, 640}, detectionMockShape)
		charset = &models.Charset{Tokens: []string{"a", "b", "c"}}
		recKernel = mock.New(
			[]int{1, 3, recognition.TargetHeight, recognition.TargetWidth},
			[]int{1, recognitionMockTimesteps, charset.Size() + 1},
		)
	} else {
		if err = models.ValidateExists(models.DetectionModelPath(modelsDir)); err != nil {
			return nil, nil, err
		}
		if err = models.ValidateExists(models.RecognitionModelPath(modelsDir)); err != nil {
			return nil, nil, err
		}
		charset, err = models.LoadCharset(models.DictionaryPath(modelsDir))
		if err != nil {
			return nil, nil, fmt.Errorf("loading dictionary: %w", err)
		}

		detSession, err := onnxrt.New(onnxrt.Config{
			ModelPath:  models.DetectionModelPath(modelsDir),
			NumThreads: cfg.Detector.NumThreads,
			GPU:        onnxrt.GPUConfig{UseGPU: cfg.GPU.Enabled, DeviceID: cfg.GPU.Device},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("loading detection model: %w", err)
		}
		detKernel = detSession

		recSession, err := onnxrt.New(onnxrt.Config{
			ModelPath:  models.RecognitionModelPath(modelsDir),
			NumThreads: cfg.Recognizer.NumThreads,
			GPU:        onnxrt.GPUConfig{UseGPU: cfg.GPU.Enabled, DeviceID: cfg.GPU.Device},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("loading recognition model: %w", err)
		}
		recKernel = recSession
	}

	detEngine := engine.New(detKernel, cfg.ToEngineConfig())
	recEngine := engine.New(recKernel, cfg.ToEngineConfig())
	detEngine.Start(context.Background())
	recEngine.Start(context.Background())

	detector := detection.New(detEngine, cfg.ToDetectionConfig())
	recognizer := recognition.New(recEngine, charset)
	pipe := ocrpipeline.New(detector, recognizer, cfg.ToPipelineConfig())

	closeFn := func() {
		_ = detEngine.Close()
		_ = recEngine.Close()
	}
	return pipe, closeFn, nil
}
