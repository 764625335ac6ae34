package headless

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// writePlaceholder writes a flat-color PNG sized to the requested
// resolution. The fill color varies with the object count so successive
// renders of a changing scene produce visibly different files.
func (e *Engine) writePlaceholder(outputPath string, resolution [2]int, objectCount int) (string, error) {
	if outputPath == "" {
		dir := e.renderDir
		if dir == "" {
			dir = os.TempDir()
		}
		outputPath = filepath.Join(dir, fmt.Sprintf("render_%d.png", time.Now().UnixMilli()))
	}
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, resolution[0], resolution[1]))
	fill := color.RGBA{
		R: uint8(40 + objectCount*20%200),
		G: uint8(40 + objectCount*35%200),
		B: 80,
		A: 255,
	}
	for y := 0; y < resolution[1]; y++ {
		for x := 0; x < resolution[0]; x++ {
			img.SetRGBA(x, y, fill)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return outputPath, nil
}
