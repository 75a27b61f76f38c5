package charts

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/models"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Fixed raster canvas; decks embed the result, they never re-render.
const (
	canvasWidth  = 800
	canvasHeight = 500

	marginTop    = 70
	marginBottom = 70
	marginLeft   = 60
	marginRight  = 30
)

// series palette, applied per label position.
var palette = []string{"#3b82f6", "#8b5cf6", "#f59e0b", "#10b981", "#ef4444", "#6b7280"}

// RenderError reports a chart that could not be rasterized. The caller
// substitutes an empty asset; the slide is never dropped.
type RenderError struct {
	Reason string
}

func (e *RenderError) Error() string {
	return "chart render failed: " + e.Reason
}

// Renderer rasterizes chart specs to fixed-size PNG data URIs.
type Renderer struct {
	titleFace   font.Face
	labelFace   font.Face
	captionFace font.Face
}

// NewRenderer creates a renderer. fontPath optionally points to a TTF file;
// when empty or unreadable the built-in bitmap face is used for all text.
func NewRenderer(fontPath string) *Renderer {
	r := &Renderer{
		titleFace:   basicfont.Face7x13,
		labelFace:   basicfont.Face7x13,
		captionFace: basicfont.Face7x13,
	}
	if fontPath == "" {
		return r
	}
	data, err := os.ReadFile(fontPath)
	if err != nil {
		log.Warn().Err(err).Str("path", fontPath).Msg("Chart font unreadable, using built-in face")
		return r
	}
	f, err := truetype.Parse(data)
	if err != nil {
		log.Warn().Err(err).Str("path", fontPath).Msg("Chart font unparseable, using built-in face")
		return r
	}
	r.titleFace = truetype.NewFace(f, &truetype.Options{Size: 22})
	r.labelFace = truetype.NewFace(f, &truetype.Options{Size: 13})
	r.captionFace = truetype.NewFace(f, &truetype.Options{Size: 12})
	return r
}

// Render rasterizes a validated spec, dispatching on its type, and returns
// the chart as an inline base64 PNG data reference.
func (r *Renderer) Render(spec *models.ChartSpec) (*models.MediaAsset, error) {
	if !spec.Valid() {
		return nil, &RenderError{Reason: fmt.Sprintf(
			"spec invalid: %d labels, %d values", len(spec.Labels), len(spec.Values))}
	}

	dc := gg.NewContext(canvasWidth, canvasHeight)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	r.drawTitle(dc, spec.Title)

	switch spec.Type {
	case models.ChartTypePie:
		r.drawPie(dc, spec)
	case models.ChartTypeLine:
		r.drawAxes(dc)
		r.drawLine(dc, spec)
	case models.ChartTypeScatter:
		r.drawAxes(dc)
		r.drawScatter(dc, spec)
	default: // bar, and anything unrecognized
		r.drawAxes(dc)
		r.drawBars(dc, spec)
	}

	if spec.Description != "" {
		dc.SetFontFace(r.captionFace)
		dc.SetHexColor("#6b7280")
		dc.DrawStringAnchored(spec.Description, canvasWidth/2, canvasHeight-14, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, &RenderError{Reason: "png encode: " + err.Error()}
	}
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	log.Debug().
		Str("chart_type", spec.Type).
		Int("points", len(spec.Values)).
		Int("png_bytes", buf.Len()).
		Msg("Chart rendered")
	return &models.MediaAsset{Provider: models.ProviderChart, Payload: payload}, nil
}

func (r *Renderer) drawTitle(dc *gg.Context, title string) {
	if title == "" {
		return
	}
	dc.SetFontFace(r.titleFace)
	dc.SetHexColor("#1f2937")
	dc.DrawStringAnchored(title, canvasWidth/2, float64(marginTop)/2, 0.5, 0.5)
}

// drawAxes draws left and bottom spines only; top and right stay clear.
func (r *Renderer) drawAxes(dc *gg.Context) {
	dc.SetHexColor("#9ca3af")
	dc.SetLineWidth(1.5)
	dc.DrawLine(marginLeft, marginTop, marginLeft, canvasHeight-marginBottom)
	dc.DrawLine(marginLeft, canvasHeight-marginBottom, canvasWidth-marginRight, canvasHeight-marginBottom)
	dc.Stroke()
}

func plotArea() (x, y, w, h float64) {
	return marginLeft, marginTop,
		canvasWidth - marginLeft - marginRight,
		canvasHeight - marginTop - marginBottom
}

func maxValue(values []float64) float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		max = 1
	}
	return max
}

func (r *Renderer) drawBars(dc *gg.Context, spec *models.ChartSpec) {
	px, py, pw, ph := plotArea()
	max := maxValue(spec.Values)
	n := float64(len(spec.Values))
	slot := pw / n
	barWidth := slot * 0.6

	dc.SetFontFace(r.labelFace)
	for i, v := range spec.Values {
		barHeight := (v / max) * (ph - 20)
		if barHeight < 0 {
			barHeight = 0
		}
		x := px + float64(i)*slot + (slot-barWidth)/2
		y := py + ph - barHeight

		dc.SetHexColor(palette[i%len(palette)])
		dc.DrawRectangle(x, y, barWidth, barHeight)
		dc.Fill()

		dc.SetHexColor("#1f2937")
		dc.DrawStringAnchored(formatValue(v), x+barWidth/2, y-10, 0.5, 0.5)
		dc.DrawStringAnchored(spec.Labels[i], x+barWidth/2, py+ph+16, 0.5, 0.5)
	}
}

func (r *Renderer) drawPie(dc *gg.Context, spec *models.ChartSpec) {
	// Equal aspect: radius bound by the shorter plot dimension.
	_, py, _, ph := plotArea()
	cx := float64(canvasWidth) / 2
	cy := py + ph/2
	radius := math.Min(ph, canvasWidth-marginLeft-marginRight) / 2 * 0.85

	total := 0.0
	for _, v := range spec.Values {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 {
		total = 1
	}

	dc.SetFontFace(r.labelFace)
	angle := -math.Pi / 2
	for i, v := range spec.Values {
		if v <= 0 {
			continue
		}
		sweep := v / total * 2 * math.Pi

		dc.SetHexColor(palette[i%len(palette)])
		dc.MoveTo(cx, cy)
		dc.DrawArc(cx, cy, radius, angle, angle+sweep)
		dc.ClosePath()
		dc.Fill()

		// Percentage and label annotated at the wedge midpoint.
		mid := angle + sweep/2
		lx := cx + math.Cos(mid)*radius*1.15
		ly := cy + math.Sin(mid)*radius*1.15
		dc.SetHexColor("#1f2937")
		dc.DrawStringAnchored(
			fmt.Sprintf("%s %.0f%%", spec.Labels[i], v/total*100), lx, ly, 0.5, 0.5)

		angle += sweep
	}
}

func (r *Renderer) drawLine(dc *gg.Context, spec *models.ChartSpec) {
	px, py, pw, ph := plotArea()
	max := maxValue(spec.Values)
	n := len(spec.Values)

	pointX := func(i int) float64 {
		if n == 1 {
			return px + pw/2
		}
		return px + float64(i)/float64(n-1)*pw
	}
	pointY := func(v float64) float64 {
		y := py + ph - (v/max)*(ph-20)
		if y > py+ph {
			y = py + ph
		}
		return y
	}

	dc.SetHexColor(palette[0])
	dc.SetLineWidth(2.5)
	for i := 1; i < n; i++ {
		dc.DrawLine(pointX(i-1), pointY(spec.Values[i-1]), pointX(i), pointY(spec.Values[i]))
	}
	dc.Stroke()

	dc.SetFontFace(r.labelFace)
	for i, v := range spec.Values {
		x, y := pointX(i), pointY(v)
		dc.SetHexColor(palette[0])
		dc.DrawCircle(x, y, 4)
		dc.Fill()
		dc.SetHexColor("#1f2937")
		dc.DrawStringAnchored(formatValue(v), x, y-14, 0.5, 0.5)
		dc.DrawStringAnchored(spec.Labels[i], x, py+ph+16, 0.5, 0.5)
	}
}

func (r *Renderer) drawScatter(dc *gg.Context, spec *models.ChartSpec) {
	px, py, pw, ph := plotArea()
	max := maxValue(spec.Values)
	n := len(spec.Values)

	dc.SetFontFace(r.labelFace)
	for i, v := range spec.Values {
		x := px + (float64(i)+0.5)/float64(n)*pw
		y := py + ph - (v/max)*(ph-20)
		if y > py+ph {
			y = py + ph
		}
		dc.SetHexColor(palette[i%len(palette)])
		dc.DrawCircle(x, y, 6)
		dc.Fill()
		dc.SetHexColor("#1f2937")
		dc.DrawStringAnchored(spec.Labels[i], x, py+ph+16, 0.5, 0.5)
	}
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
