package service

// QRCodeService renders shareable links as QR code images.
type QRCodeService interface {
	// GenerateLinkQR renders the given URL as a PNG QR code.
	GenerateLinkQR(url string) ([]byte, error)
}
