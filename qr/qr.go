// Package qr renders pairing codes as scannable images. Pure formatting,
// no state.
package qr

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/chatbridge/go-wa-gateway/internal/errors"
)

const imageSize = 256

// DataURL encodes the pairing code as a PNG data URL suitable for direct
// embedding in an <img> tag.
func DataURL(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, imageSize)
	if err != nil {
		return "", errors.Wrapf(err, "qr.DataURL")
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
