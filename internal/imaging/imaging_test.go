package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hikayat/internal/models"
)

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResize(t *testing.T) {
	data := pngImage(t, 400, 200)

	t.Run("Уменьшение с сохранением пропорций", func(t *testing.T) {
		out, mimeType, err := Resize(data, MIMETypePNG, 100, "catmullrom")
		require.NoError(t, err)
		assert.Equal(t, MIMETypePNG, mimeType)

		cfg, err := png.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.Width)
		assert.Equal(t, 50, cfg.Height)
	})

	t.Run("Маленькое изображение не увеличивается", func(t *testing.T) {
		out, _, err := Resize(data, MIMETypePNG, 1000, "bilinear")
		require.NoError(t, err)

		cfg, err := png.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 400, cfg.Width)
	})

	t.Run("Неизвестный интерполятор", func(t *testing.T) {
		_, _, err := Resize(data, MIMETypePNG, 100, "lanczos")
		assert.ErrorIs(t, err, ErrUnknownInterpolator)
	})

	t.Run("Неподдерживаемый тип", func(t *testing.T) {
		_, _, err := Resize(data, "image/gif", 100, "catmullrom")
		assert.ErrorIs(t, err, models.ErrUnsupportedMedia)
	})

	t.Run("Повреждённые данные", func(t *testing.T) {
		_, _, err := Resize([]byte("not an image"), MIMETypeJPEG, 100, "catmullrom")
		assert.ErrorIs(t, err, models.ErrUnsupportedMedia)
	})
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(MIMETypeWebP))
	assert.True(t, Supported(MIMETypeJPEG))
	assert.False(t, Supported("image/svg+xml"))
}
