package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
	"go.uber.org/zap"
)

// QRCode serves a PNG QR code of the game URL so the game can be continued on another device
func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromRequest(w, r)
	if !ok {
		return
	}

	base := h.config.Server.PublicURL
	if base == "" {
		base = getBaseURL(r)
	}
	target := strings.TrimRight(base, "/") + "/game/" + sess.Code

	png, err := generateQRCode(target)
	if err != nil {
		h.log.Error("generating qr code", zap.String("code", sess.Code), zap.Error(err))
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(png)
}

// nopCloser lets the QR writer close an in-memory buffer
type nopCloser struct {
	*bytes.Buffer
}

func (nopCloser) Close() error { return nil }

// generateQRCode encodes url as a PNG image
func generateQRCode(url string) ([]byte, error) {
	qrc, err := qrcode.NewWith(url,
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
		qrcode.WithEncodingMode(qrcode.EncModeByte),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	buf := nopCloser{Buffer: &bytes.Buffer{}}
	writer := standard.NewWithWriter(buf,
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(8), // 8 pixels per module
	)
	if err := qrc.Save(writer); err != nil {
		return nil, fmt.Errorf("failed to save QR code: %w", err)
	}
	return buf.Bytes(), nil
}

// getBaseURL constructs the base URL from the request
func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	// Check for X-Forwarded-Proto header (common in reverse proxy setups)
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	host := r.Host
	if forwardedHost := r.Header.Get("X-Forwarded-Host"); forwardedHost != "" {
		host = forwardedHost
	}

	return fmt.Sprintf("%s://%s", scheme, host)
}
