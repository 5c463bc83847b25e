package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/ByLCY/rollingdot/dsl"
	"github.com/ByLCY/rollingdot/engine"
	"github.com/ByLCY/rollingdot/layout"
	"github.com/ByLCY/rollingdot/preview"
	"github.com/ByLCY/rollingdot/renderer"
	canvasrenderer "github.com/ByLCY/rollingdot/renderer/canvas"
	"github.com/ByLCY/rollingdot/scene"
)

// 视口内标题容器的内边距与标题间距（px）
const (
	viewportPadding = 48.0
	headlineGap     = 32.0
)

type options struct {
	input         string
	output        string
	framesDir     string
	format        renderer.Format
	fps           int
	width         float64
	debugPath     string
	data          any
	reducedMotion bool
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("读取 .env 失败: %v", err)
	}

	input := flag.String("in", "examples/landing.dot", "场景文件路径")
	output := flag.String("out", "output/storyboard.pdf", "PDF 分镜输出路径，留空则不输出")
	framesDir := flag.String("frames", "", "逐帧图像输出目录")
	format := flag.String("format", "svg", "逐帧图像格式：svg 或 png")
	fps := flag.Int("fps", 10, "录制帧率")
	width := flag.Float64("width", envFloat("ROLLINGDOT_WIDTH"), "覆盖视口宽度（px），0 表示使用场景声明")
	debug := flag.String("debug", "", "场景调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到场景的 JSON 数据")
	reduced := flag.Bool("reduced-motion", envBool("ROLLINGDOT_REDUCED_MOTION"), "减少动态效果：直接呈现最终状态")
	interactive := flag.Bool("preview", false, "在终端中交互预览第一条标题")
	verbose := flag.Bool("v", false, "输出引擎日志")
	flag.Parse()

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	opts := options{
		input:         *input,
		output:        *output,
		framesDir:     *framesDir,
		format:        renderer.Format(*format),
		fps:           *fps,
		width:         *width,
		debugPath:     *debug,
		data:          inputData,
		reducedMotion: *reduced,
	}

	if *interactive {
		if *verbose {
			// 终端被预览界面占用，日志写入文件
			f, err := os.Create("rollingdot.log")
			if err != nil {
				log.Fatalf("创建日志文件失败: %v", err)
			}
			defer f.Close()
			engine.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
		if err := runPreview(opts); err != nil {
			log.Fatalf("预览失败: %v", err)
		}
		return
	}

	if *verbose {
		engine.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	n, err := run(opts)
	if err != nil {
		log.Fatalf("生成动画失败: %v", err)
	}
	if opts.output != "" {
		fmt.Printf("已生成分镜：%s（%d 帧）\n", opts.output, n)
	}
	if opts.framesDir != "" {
		fmt.Printf("已输出逐帧图像：%s\n", opts.framesDir)
	}
}

// run 串联解析、场景构建、录制与输出，返回录制的帧数。
func run(opts options) (int, error) {
	sc, err := loadScene(opts.input, opts.data)
	if err != nil {
		return 0, err
	}
	if opts.debugPath != "" {
		if err := writeDebug(sc, opts.debugPath); err != nil {
			return 0, err
		}
	}

	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: filepath.Dir(opts.input),
		Fonts:   sc.Resources.Fonts,
		Logger:  engine.Logger(),
	})
	shots, err := record(sc, r, opts)
	if err != nil {
		return 0, err
	}

	if opts.framesDir != "" {
		if err := writeFrames(r, shots, opts.framesDir, opts.format); err != nil {
			return 0, err
		}
	}
	if opts.output != "" {
		if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
			return 0, fmt.Errorf("创建输出目录失败: %w", err)
		}
		pdfBytes, err := r.Storyboard(sc.Meta, shots)
		if err != nil {
			return 0, fmt.Errorf("渲染分镜失败: %w", err)
		}
		if err := os.WriteFile(opts.output, pdfBytes, 0o644); err != nil {
			return 0, fmt.Errorf("写入 PDF 文件失败: %w", err)
		}
	}
	return len(shots), nil
}

func loadScene(path string, data any) (*scene.Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开场景文件 %s: %w", path, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(path, file)
	if err != nil {
		return nil, fmt.Errorf("解析场景失败: %w", err)
	}
	sc, err := scene.Build(doc, data, scene.BuildOptions{Logger: engine.Logger()})
	if err != nil {
		return nil, fmt.Errorf("构建场景失败: %w", err)
	}
	return sc, nil
}

// record 为每个视口中的每条标题创建容器与引擎，离线录制一次完整播放。
// 同一视口内的标题自上而下排列。
func record(sc *scene.Scene, r *canvasrenderer.Renderer, opts options) ([]renderer.Shot, error) {
	fps := opts.fps
	if fps <= 0 {
		fps = 10
	}
	interval := time.Second / time.Duration(fps)
	start := time.Now()

	var shots []renderer.Shot
	for vi, vp := range sc.Viewports {
		if opts.width > 0 {
			vp.Width = layout.Length{Value: opts.width, Unit: layout.UnitPX}
		}
		width := vp.Width.PX()
		y := viewportPadding
		for hi, h := range vp.Headlines {
			s, err := r.NewSurface(h, width-2*viewportPadding)
			if err != nil {
				return nil, fmt.Errorf("视口 %d 标题 %d: %w", vi+1, hi+1, err)
			}
			s.SetOrigin(viewportPadding, y)
			eng, err := engine.New(h.Config(), engine.Options{
				Container:     s,
				Policy:        vp.Policy(),
				FontSize:      h.FontSize.PX(),
				ReducedMotion: opts.reducedMotion,
			})
			if err != nil {
				return nil, fmt.Errorf("视口 %d 标题 %d: %w", vi+1, hi+1, err)
			}
			for _, f := range eng.Record(start, width, interval) {
				shots = append(shots, s.Shot(vp, f))
			}
			y += s.Height() + headlineGap
		}
	}
	if len(shots) == 0 {
		return nil, fmt.Errorf("场景中没有可录制的标题")
	}
	return shots, nil
}

func writeFrames(r renderer.Renderer, shots []renderer.Shot, dir string, format renderer.Format) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建帧目录失败: %w", err)
	}
	for i, shot := range shots {
		name := filepath.Join(dir, fmt.Sprintf("frame-%04d.%s", i, format))
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("创建帧文件失败: %w", err)
		}
		err = r.RenderFrame(f, shot, format)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("输出第 %d 帧失败: %w", i, err)
		}
	}
	return nil
}

func writeDebug(sc *scene.Scene, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := scene.WriteDebugJSON(sc, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func runPreview(opts options) error {
	sc, err := loadScene(opts.input, opts.data)
	if err != nil {
		return err
	}
	for _, vp := range sc.Viewports {
		if len(vp.Headlines) == 0 {
			continue
		}
		return preview.Run(preview.Options{
			Headline:      vp.Headlines[0],
			MobileLines:   vp.MobileLines,
			ReducedMotion: opts.reducedMotion,
		})
	}
	return fmt.Errorf("场景中没有可预览的标题")
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func envFloat(key string) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return 0
	}
	return v
}
