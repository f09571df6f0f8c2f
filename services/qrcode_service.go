// services/qrcode_service.go
package services

import (
	"errors"
	"fmt"

	"ctf-catalog/models"
	"github.com/skip2/go-qrcode"
)

// QRCodeEncoder matches qrcode.Encode so tests can swap it out.
type QRCodeEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

// GenerateQRCode encodes content as a square PNG of the given size.
func GenerateQRCode(content string, size int, encode QRCodeEncoder) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("invalid dimensions: size must be positive")
	}
	if content == "" {
		return nil, errors.New("nothing to encode")
	}
	png, err := encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}

// QRCodeTarget picks what a QR code points to: the collection's repository when
// collectionID names one, otherwise the application URL.
func QRCodeTarget(cat *models.Catalog, collectionID int, applicationURL string) (string, error) {
	if collectionID == 0 {
		return applicationURL, nil
	}
	col, ok := cat.FindCollection(collectionID)
	if !ok {
		return "", fmt.Errorf("collection %d not found", collectionID)
	}
	if col.GithubURL == "" {
		return applicationURL, nil
	}
	return col.GithubURL, nil
}
