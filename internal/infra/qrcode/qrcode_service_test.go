package qrcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
		{"Default size", 0, "M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, tt.errorCorrectionLevel)
			assert.NotNil(t, service)
		})
	}
}

func TestQRCodeService_GenerateLinkQR(t *testing.T) {
	service := NewQRCodeService(256, "M")

	qrBytes, err := service.GenerateLinkQR("https://parish.example.com/donate")
	require.NoError(t, err)
	assert.NotEmpty(t, qrBytes)

	// PNG magic number
	assert.Equal(t, byte(0x89), qrBytes[0])
	assert.Equal(t, byte(0x50), qrBytes[1])
	assert.Equal(t, byte(0x4E), qrBytes[2])
	assert.Equal(t, byte(0x47), qrBytes[3])
}

func TestQRCodeService_GenerateLinkQR_DifferentSizes(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"Small QR", 128},
		{"Medium QR", 256},
		{"Large QR", 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewQRCodeService(tt.size, "M")

			qrBytes, err := service.GenerateLinkQR("https://parish.example.com/donate")
			require.NoError(t, err)
			assert.NotEmpty(t, qrBytes)
		})
	}
}

func TestQRCodeService_GenerateLinkQR_EmptyURL(t *testing.T) {
	service := NewQRCodeService(256, "M")

	_, err := service.GenerateLinkQR("   ")
	assert.Error(t, err)
}
