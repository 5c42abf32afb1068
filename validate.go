package imagegroup

import (
	"bytes"
	"fmt"
	"image"
)

// checkDimensions refuses images without pixels and, when MinImageWidth is
// set, images narrower than it. Data whose dimensions cannot be decoded is
// accepted; it passed the content-type check and the grouping pass reports
// it if it is really broken.
func (cfg *Config) checkDimensions(rawURL string, data []byte) error {
	imgCfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		cfg.Logger.Debug("imagegroup: cannot decode dimensions", "url", rawURL, "error", err)
		return nil
	}

	if imgCfg.Width <= 0 || imgCfg.Height <= 0 {
		return &FetchError{URL: rawURL, Err: fmt.Errorf("%w: %dx%d", ErrEmptyImage, imgCfg.Width, imgCfg.Height)}
	}
	if cfg.MinImageWidth > 0 && imgCfg.Width < cfg.MinImageWidth {
		cfg.Logger.Debug("imagegroup: too narrow", "url", rawURL, "width", imgCfg.Width, "min", cfg.MinImageWidth)
		return &FetchError{URL: rawURL, Err: fmt.Errorf("%w: %dpx < %dpx", ErrTooNarrow, imgCfg.Width, cfg.MinImageWidth)}
	}
	return nil
}
