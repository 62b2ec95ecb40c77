// Package heuristics estimates plant cover, stress and canopy texture from a
// garden photo using plain colour and gradient rules. Nothing here is a
// trained model; every threshold is a hand-tuned constant.
package heuristics

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// MaxSide bounds the longest side of the image used for analysis.
const MaxSide = 512

const (
	CropGourds      = "Gourds (pumpkin/bottle/ash)"
	CropSolanaceae  = "Solanaceae (brinjal/tomato/chili)"
	CropLeafyGreens = "Leafy Greens (spinach/amaranth/methi)"
	CropUnknown     = "Unknown"

	StageSeedling   = "Seedling"
	StageVegetative = "Vegetative"
)

const (
	RecYellowing = "Some yellowing detected—consider a balanced feed or compost tea."
	RecSparse    = "Sparse canopy—check watering consistency and spacing; remove weeds."
	RecVigorous  = "Vigorous growth—maintain irrigation; stake/trellis if vining."
	RecIrrigate  = "Maintain regular irrigation."
	RecMulch     = "Mulch around base to reduce weeds and retain moisture."
)

const edgeThreshold = 0.25

// Assessment is the full result of analysing one photo.
type Assessment struct {
	GreenFraction       float64  `json:"green_fraction"`
	YellowBrownFraction float64  `json:"yellow_brown_fraction"`
	EdgeDensity         float64  `json:"edge_density"`
	CropGuess           string   `json:"crop_guess"`
	Stage               string   `json:"stage"`
	HealthScore         float64  `json:"health_score"`
	Recommendations     []string `json:"recommendations"`
}

// Analyze runs every estimator on img. The image is downscaled once and
// shared between the estimators.
func Analyze(img image.Image) Assessment {
	small := resizeForAnalysis(img)

	green := greenFraction(small)
	yellowBrown := yellowBrownFraction(small)
	edges := edgeDensity(small)

	return Assessment{
		GreenFraction:       green,
		YellowBrownFraction: yellowBrown,
		EdgeDensity:         edges,
		CropGuess:           GuessCropFamily(green, edges),
		Stage:               GuessStage(green, edges, yellowBrown),
		HealthScore:         HealthScore(green, edges, yellowBrown),
		Recommendations:     Recommendations(green, edges, yellowBrown),
	}
}

// GreenFraction approximates the proportion of green foliage pixels.
func GreenFraction(img image.Image) float64 {
	return greenFraction(resizeForAnalysis(img))
}

// YellowBrownFraction is a rough stress proxy: the share of yellow or brown pixels.
func YellowBrownFraction(img image.Image) float64 {
	return yellowBrownFraction(resizeForAnalysis(img))
}

// EdgeDensity is a canopy fullness proxy based on Sobel gradient magnitude.
func EdgeDensity(img image.Image) float64 {
	return edgeDensity(resizeForAnalysis(img))
}

// GuessCropFamily buckets the photo into a broad crop family from texture cues.
func GuessCropFamily(green, edges float64) string {
	switch {
	case green > 0.5 && edges < 0.23:
		return CropGourds
	case edges >= 0.25 && edges <= 0.38:
		return CropSolanaceae
	case edges > 0.38 && green > 0.45:
		return CropLeafyGreens
	default:
		return CropUnknown
	}
}

// GuessStage returns a broad growth stage bucket.
func GuessStage(green, edges, _ float64) string {
	if green < 0.25 || edges < 0.18 {
		return StageSeedling
	}
	return StageVegetative
}

// HealthScore blends the three measures into a 0-5 score with one decimal.
func HealthScore(green, edges, yellowBrown float64) float64 {
	score := 5.0 * (0.5*green + 0.3*edges + 0.2*(1.0-yellowBrown))
	score = math.Round(score*10) / 10
	return math.Max(0, math.Min(5, score))
}

// Recommendations returns two or three short care tips.
func Recommendations(green, edges, yellowBrown float64) []string {
	var recs []string
	if yellowBrown > 0.22 {
		recs = append(recs, RecYellowing)
	}
	if edges < 0.25 {
		recs = append(recs, RecSparse)
	}
	if green > 0.55 && edges > 0.30 {
		recs = append(recs, RecVigorous)
	}
	if len(recs) == 0 {
		recs = []string{RecIrrigate, RecMulch}
	}
	return recs
}

func resizeForAnalysis(img image.Image) *image.NRGBA {
	return imaging.Fit(img, MaxSide, MaxSide, imaging.CatmullRom)
}

func greenFraction(img *image.NRGBA) float64 {
	var hits, total int
	eachPixel(img, func(r, g, b float64) {
		total++
		maxc := math.Max(r, math.Max(g, b))
		minc := math.Min(r, math.Min(g, b))
		var s float64
		if maxc != 0 {
			s = (maxc - minc) / (maxc + 1e-6)
		}
		if g > r*1.05 && g > b*1.05 && s > 0.15 && maxc > 0.2 {
			hits++
		}
	})
	return fraction(hits, total)
}

func yellowBrownFraction(img *image.NRGBA) float64 {
	var hits, total int
	eachPixel(img, func(r, g, b float64) {
		total++
		v := math.Max(r, math.Max(g, b))
		yellow := r > 0.3 && g > 0.3 && b < 0.25 && r > b*1.3 && g > b*1.3
		brown := r > 0.2 && g > 0.15 && b < 0.2 && v < 0.5
		if yellow || brown {
			hits++
		}
	})
	return fraction(hits, total)
}

var (
	sobelX = [3][3]float64{{1, 0, -1}, {2, 0, -2}, {1, 0, -1}}
	sobelY = [3][3]float64{{1, 2, 1}, {0, 0, 0}, {-1, -2, -1}}
)

func edgeDensity(img *image.NRGBA) float64 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return 0
	}
	gray := luma(img)

	var hits int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				sy := reflect(y+ky, h)
				for kx := -1; kx <= 1; kx++ {
					v := gray[sy*w+reflect(x+kx, w)]
					gx += sobelX[ky+1][kx+1] * v
					gy += sobelY[ky+1][kx+1] * v
				}
			}
			if math.Sqrt(gx*gx+gy*gy) > edgeThreshold {
				hits++
			}
		}
	}
	return fraction(hits, w*h)
}

// luma converts to 8-bit grayscale with ITU-R 601 weights, scaled to [0,1].
func luma(img *image.NRGBA) []float64 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]float64, 0, w*h)
	eachPixel(img, func(r, g, b float64) {
		out = append(out, math.Round(255*(0.299*r+0.587*g+0.114*b))/255)
	})
	return out
}

// reflect mirrors an out-of-range index back into [0,n), repeating the edge
// sample (symmetric boundary).
func reflect(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}

// eachPixel visits pixels row-major with channels scaled to [0,1]. Alpha is ignored.
func eachPixel(img *image.NRGBA, fn func(r, g, b float64)) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4]
			fn(float64(p[0])/255, float64(p[1])/255, float64(p[2])/255)
		}
	}
}

func fraction(hits, total int) float64 {
	if total == 0 {
		return 0
	}
	return round3(float64(hits) / float64(total))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
