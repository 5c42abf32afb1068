package imagegroup

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"
)

// makeJPEG returns a minimal valid JPEG of the given dimensions.
func makeJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	// Fill with a solid color so the encoder produces a valid JPEG.
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 100, G: 149, B: 237, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		panic("makeJPEG: " + err.Error())
	}
	return buf.Bytes()
}

func newImageServer(t *testing.T, contentType string, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckDimensions_EmptyImage(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.defaults()

	err := cfg.checkDimensions("https://example.com/zero.gif", emptyGIF(t))
	if !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("err = %v, want ErrEmptyImage", err)
	}
	if !errors.Is(err, ErrFetch) {
		t.Errorf("err = %v, want it to match ErrFetch", err)
	}
}

func TestCheckMinWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		minWidth int
		data     []byte
		wantErr  bool
	}{
		{name: "wide image passes", minWidth: 880, data: makeJPEG(1000, 600)},
		{name: "exact width passes", minWidth: 880, data: makeJPEG(880, 10)},
		{name: "narrow image fails", minWidth: 880, data: makeJPEG(400, 300), wantErr: true},
		{name: "check disabled", minWidth: 0, data: makeJPEG(10, 10)},
		{name: "undecodable data accepted", minWidth: 880, data: []byte("not an image")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := &Config{MinImageWidth: tc.minWidth}
			cfg.defaults()

			err := cfg.checkDimensions("https://example.com/p.jpg", tc.data)
			if tc.wantErr {
				if !errors.Is(err, ErrTooNarrow) {
					t.Fatalf("err = %v, want ErrTooNarrow", err)
				}
				if !errors.Is(err, ErrFetch) {
					t.Errorf("err = %v, want it to match ErrFetch", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
