package qrcode

import (
	"fmt"
	"strings"

	"parish/internal/domain/service"

	"github.com/skip2/go-qrcode"
)

const defaultSize = 256

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance.
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = defaultSize
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GenerateLinkQR renders the given URL as a PNG QR code.
func (s *qrcodeService) GenerateLinkQR(url string) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("qr code url must not be empty")
	}

	qrCode, err := qrcode.New(url, s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}
