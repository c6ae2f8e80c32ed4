package spray

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// RampResolution is the texel count of a baked 1D lookup texture.
const RampResolution = 256

// GradientKey is one keyframe of a color gradient. T is the normalized
// position in [0,1]; Color may exceed [0,1] for HDR ramps.
type GradientKey struct {
	T     float32
	Color mgl32.Vec4
}

// Gradient is a keyframed color ramp. Keys need not be sorted.
type Gradient []GradientKey

// Sample evaluates the gradient at t with linear interpolation between the
// two surrounding keys and clamping outside the key range.
func (g Gradient) Sample(t float32) mgl32.Vec4 {
	if len(g) == 0 {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	keys := make(Gradient, len(g))
	copy(keys, g)
	sort.Slice(keys, func(i, j int) bool { return keys[i].T < keys[j].T })

	if t <= keys[0].T {
		return keys[0].Color
	}
	last := keys[len(keys)-1]
	if t >= last.T {
		return last.Color
	}
	for i := 1; i < len(keys); i++ {
		if t <= keys[i].T {
			a, b := keys[i-1], keys[i]
			span := b.T - a.T
			if span <= 0 {
				return b.Color
			}
			f := (t - a.T) / span
			return mgl32.Vec4{
				lerp(a.Color[0], b.Color[0], f),
				lerp(a.Color[1], b.Color[1], f),
				lerp(a.Color[2], b.Color[2], f),
				lerp(a.Color[3], b.Color[3], f),
			}
		}
	}
	return last.Color
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// RampTexture is a baked 1D lookup texture consumed read-only by the update
// kernel, indexed by normalized life fraction or speed.
type RampTexture struct {
	Id      string
	Texture *wgpu.Texture
	View    *wgpu.TextureView

	released bool
}

// Bake renders the gradient into a RampResolution-texel rgba32float 1D
// texture. Texel values are unclamped.
func (g Gradient) Bake(device *wgpu.Device) (*RampTexture, error) {
	texels := make([]float32, RampResolution*4)
	for i := 0; i < RampResolution; i++ {
		c := g.Sample(float32(i) / float32(RampResolution-1))
		texels[i*4+0] = c[0]
		texels[i*4+1] = c[1]
		texels[i*4+2] = c[2]
		texels[i*4+3] = c[3]
	}
	return bakeTexels(device, texels)
}

// BakeImage resamples a gradient strip image down to the ramp resolution
// and bakes it. Any image height works; rows are averaged by the scaler.
func BakeImage(device *wgpu.Device, img image.Image) (*RampTexture, error) {
	strip := image.NewRGBA64(image.Rect(0, 0, RampResolution, 1))
	draw.ApproxBiLinear.Scale(strip, strip.Bounds(), img, img.Bounds(), draw.Src, nil)

	texels := make([]float32, RampResolution*4)
	for i := 0; i < RampResolution; i++ {
		c := strip.RGBA64At(i, 0)
		texels[i*4+0] = float32(c.R) / 0xffff
		texels[i*4+1] = float32(c.G) / 0xffff
		texels[i*4+2] = float32(c.B) / 0xffff
		texels[i*4+3] = float32(c.A) / 0xffff
	}
	return bakeTexels(device, texels)
}

func bakeTexels(device *wgpu.Device, texels []float32) (*RampTexture, error) {
	extent := wgpu.Extent3D{
		Width:              RampResolution,
		Height:             1,
		DepthOrArrayLayers: 1,
	}
	texture, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "RampTexture",
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension1D,
		Format:        wgpu.TextureFormatRGBA32Float,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ramp texture: %w", err)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("failed to create ramp texture view: %w", err)
	}

	err = device.GetQueue().WriteTexture(
		texture.AsImageCopy(),
		wgpu.ToBytes(texels),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  RampResolution * 16,
			RowsPerImage: 1,
		},
		&extent,
	)
	if err != nil {
		view.Release()
		texture.Release()
		return nil, fmt.Errorf("failed to upload ramp texels: %w", err)
	}

	return &RampTexture{
		Id:      uuid.NewString(),
		Texture: texture,
		View:    view,
	}, nil
}

// WritePNG renders the gradient as an 8-bit strip for inspection. HDR
// values are clamped into [0,1] on export.
func (g Gradient) WritePNG(w io.Writer, height int) error {
	if height <= 0 {
		height = 16
	}
	img := image.NewRGBA(image.Rect(0, 0, RampResolution, height))
	for x := 0; x < RampResolution; x++ {
		c := g.Sample(float32(x) / float32(RampResolution-1))
		px := color.RGBA{
			R: uint8(clamp01(c[0]) * 255),
			G: uint8(clamp01(c[1]) * 255),
			B: uint8(clamp01(c[2]) * 255),
			A: uint8(clamp01(c[3]) * 255),
		}
		for y := 0; y < height; y++ {
			img.SetRGBA(x, y, px)
		}
	}
	return png.Encode(w, img)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Release frees the texture and its view. Safe to call once.
func (r *RampTexture) Release() {
	if r == nil || r.released {
		return
	}
	r.released = true
	r.View.Release()
	r.Texture.Release()
}
