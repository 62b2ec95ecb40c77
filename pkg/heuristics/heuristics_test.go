package heuristics

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// halfAndHalf is black on the left half and white on the right half.
func halfAndHalf(w, h int) *image.NRGBA {
	img := solid(w, h, color.NRGBA{A: 255})
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return img
}

func TestGreenFraction(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want float64
	}{
		{"solid leaf green", solid(40, 40, color.NRGBA{G: 200, A: 255}), 1},
		{"yellow", solid(40, 40, color.NRGBA{R: 220, G: 200, B: 30, A: 255}), 0},
		{"too dark to count", solid(40, 40, color.NRGBA{G: 40, A: 255}), 0},
		{"grey has no saturation", solid(40, 40, color.NRGBA{R: 120, G: 128, B: 120, A: 255}), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GreenFraction(tt.img))
		})
	}
}

func TestGreenFractionPartialCover(t *testing.T) {
	img := solid(10, 10, color.NRGBA{A: 255})
	for x := 0; x < 10; x++ {
		for y := 0; y < 3; y++ {
			img.SetNRGBA(x, y, color.NRGBA{G: 200, A: 255})
		}
	}
	assert.Equal(t, 0.3, GreenFraction(img))
}

func TestYellowBrownFraction(t *testing.T) {
	assert.Equal(t, 1.0, YellowBrownFraction(solid(20, 20, color.NRGBA{R: 220, G: 200, B: 30, A: 255})))
	assert.Equal(t, 1.0, YellowBrownFraction(solid(20, 20, color.NRGBA{R: 110, G: 70, B: 20, A: 255})))
	assert.Equal(t, 0.0, YellowBrownFraction(solid(20, 20, color.NRGBA{G: 200, A: 255})))
	assert.Equal(t, 0.0, YellowBrownFraction(solid(20, 20, color.NRGBA{A: 255})))
}

func TestEdgeDensity(t *testing.T) {
	assert.Equal(t, 0.0, EdgeDensity(solid(50, 50, color.NRGBA{G: 200, A: 255})))
	// Only the two columns either side of the black/white boundary respond.
	assert.Equal(t, 0.02, EdgeDensity(halfAndHalf(100, 100)))
}

func TestResizeForAnalysis(t *testing.T) {
	big := resizeForAnalysis(solid(1024, 256, color.NRGBA{A: 255}))
	assert.Equal(t, 512, big.Rect.Dx())
	assert.Equal(t, 128, big.Rect.Dy())

	small := resizeForAnalysis(solid(100, 60, color.NRGBA{A: 255}))
	assert.Equal(t, 100, small.Rect.Dx(), "small images are never upscaled")
	assert.Equal(t, 60, small.Rect.Dy())
}

func TestLumaIsEightBit(t *testing.T) {
	// 0.299*10 + 0.587*20 + 0.114*30 = 18.15, stored as 18.
	got := luma(solid(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))
	assert.Equal(t, []float64{18.0 / 255, 18.0 / 255}, got)

	got = luma(solid(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
	assert.Equal(t, []float64{1}, got)
}

func TestReflect(t *testing.T) {
	assert.Equal(t, 0, reflect(-1, 5))
	assert.Equal(t, 1, reflect(-2, 5))
	assert.Equal(t, 4, reflect(5, 5))
	assert.Equal(t, 3, reflect(6, 5))
	assert.Equal(t, 0, reflect(-1, 1))
	assert.Equal(t, 0, reflect(1, 1))
}

func TestGuessCropFamily(t *testing.T) {
	tests := []struct {
		green, edges float64
		want         string
	}{
		{0.6, 0.1, CropGourds},
		{0.3, 0.3, CropSolanaceae},
		{0.6, 0.25, CropSolanaceae},
		{0.5, 0.45, CropLeafyGreens},
		{0.3, 0.45, CropUnknown},
		{0.2, 0.1, CropUnknown},
		{0.6, 0.24, CropUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GuessCropFamily(tt.green, tt.edges), "green=%v edges=%v", tt.green, tt.edges)
	}
}

func TestGuessStage(t *testing.T) {
	assert.Equal(t, StageSeedling, GuessStage(0.1, 0.5, 0))
	assert.Equal(t, StageSeedling, GuessStage(0.5, 0.1, 0))
	assert.Equal(t, StageVegetative, GuessStage(0.5, 0.3, 0))
	assert.Equal(t, StageVegetative, GuessStage(0.5, 0.3, 0.9))
}

func TestHealthScore(t *testing.T) {
	assert.InDelta(t, 5.0, HealthScore(1, 1, 0), 1e-9)
	assert.InDelta(t, 0.0, HealthScore(0, 0, 1), 1e-9)
	assert.InDelta(t, 3.5, HealthScore(1, 0, 0), 1e-9)
	assert.InDelta(t, 2.3, HealthScore(0.6, 0.2, 0.5), 1e-9)
	assert.InDelta(t, 5.0, HealthScore(2, 2, 0), 1e-9, "clamped to 5")
	assert.InDelta(t, 0.0, HealthScore(0, 0, 3), 1e-9, "clamped to 0")
}

func TestRecommendations(t *testing.T) {
	assert.Equal(t, []string{RecYellowing, RecSparse}, Recommendations(0, 0, 0.5))
	assert.Equal(t, []string{RecVigorous}, Recommendations(0.6, 0.35, 0))
	assert.Equal(t, []string{RecIrrigate, RecMulch}, Recommendations(0.4, 0.3, 0.1))
}

func TestAnalyze(t *testing.T) {
	got := Analyze(solid(64, 48, color.NRGBA{G: 200, A: 255}))

	assert.Equal(t, 1.0, got.GreenFraction)
	assert.Equal(t, 0.0, got.YellowBrownFraction)
	assert.Equal(t, 0.0, got.EdgeDensity)
	assert.Equal(t, CropGourds, got.CropGuess)
	assert.Equal(t, StageSeedling, got.Stage)
	assert.InDelta(t, 3.5, got.HealthScore, 1e-9)
	assert.Equal(t, []string{RecSparse}, got.Recommendations)
}
