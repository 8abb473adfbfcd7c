package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// invoiceScanPrompt is the shared prompt used by all providers for
// extracting invoice fields.
const invoiceScanPrompt = `You are analyzing a paper invoice. Carefully read all text in the image and extract the following information:

1. **Vendor Name**: The business issuing the invoice, usually the largest text or in a header. Leave empty if no business name is readable - never guess.

2. **Invoice Date** and **Due Date**: Convert both to ISO 8601 format (YYYY-MM-DD). The due date may be labeled "Due", "Payment Due", or "Net 30" relative to the invoice date.

3. **Currency**: The 3-letter currency code (e.g. USD, EUR). Infer from symbols if needed.

4. **Category**: A short spending category if one is obvious (e.g. "Utilities", "Office Supplies"), otherwise empty.

5. **Line Items**: Every billed line with its description, quantity and per-unit rate. Extract only numeric values for quantity and rate.

Return ONLY valid JSON in this exact format:
{
  "vendor_name": "Business Name",
  "date": "YYYY-MM-DD",
  "due_date": "YYYY-MM-DD",
  "currency": "USD",
  "category": "",
  "tags": [],
  "items": [
    {"description": "Item description", "quantity": 1, "rate": 0.00}
  ]
}

Important:
- Quantities and rates must be numbers (not strings)
- Use "" for unreadable text fields and omit unreadable items
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// prepareImageData normalizes the MIME type and converts the payload to
// PNG. PDFs are rendered (first page - most invoices are single page),
// HEIC/HEIF phone photos are decoded with the pure Go decoder, and other
// image formats go through the standard library decoders.
func prepareImageData(imageData []byte, contentType string) ([]byte, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg" // default
	}

	if mimeType == "application/pdf" {
		return pdfToPNG(imageData)
	}
	if mimeType == "image/png" && !isHEIC(imageData, mimeType) {
		return imageData, nil
	}

	var img image.Image
	var err error
	if isHEIC(imageData, mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") || strings.Contains(err.Error(), "unsupported") {
				return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	return encodePNG(img)
}

func pdfToPNG(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEIC detects HEIC/HEIF payloads by MIME type or the ftyp box brand,
// since the standard image package cannot decode them.
func isHEIC(data []byte, mimeType string) bool {
	if strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif") {
		return true
	}
	if len(data) >= 12 && string(data[4:8]) == "ftyp" {
		switch string(data[8:12]) {
		case "heic", "heif", "mif1", "msf1":
			return true
		}
	}
	return false
}
