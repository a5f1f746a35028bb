package assets

import (
	"bytes"
	_ "embed"
	"errors"
	"image"

	"github.com/soocke/monster-detector-go/domain/detection"
)

// DefaultTemplatePNG is the bundled monster sprite used when no template file is found.
//
//go:embed monster.png
var DefaultTemplatePNG []byte

// DefaultTemplate decodes the bundled sprite, flattened onto white like file templates.
func DefaultTemplate() (image.Image, error) {
	if len(DefaultTemplatePNG) == 0 {
		return nil, errors.New("embedded monster.png is empty")
	}
	return detection.DecodeTemplate(bytes.NewReader(DefaultTemplatePNG))
}
