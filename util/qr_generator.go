package util

import "github.com/skip2/go-qrcode"

// Encode content as a PNG QR code of size x size pixels
func GenerateQRCode(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}
