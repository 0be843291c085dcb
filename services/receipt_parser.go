package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"invoicepro-backend/models"
)

// ParsedReceipt holds the fields suggested by the receipt parsing service.
type ParsedReceipt struct {
	Vendor      string  `json:"vendor"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// ReceiptParser sends receipt images to an external AI endpoint.
type ReceiptParser struct {
	URL    string
	APIKey string
	Client *http.Client
}

func NewReceiptParser(url, apiKey string) *ReceiptParser {
	return &ReceiptParser{URL: url, APIKey: apiKey, Client: &http.Client{Timeout: 60 * time.Second}}
}

// Enabled reports whether a parsing endpoint is configured.
func (p *ReceiptParser) Enabled() bool {
	return p != nil && p.URL != ""
}

type receiptRequest struct {
	MimeType   string   `json:"mimeType"`
	Data       string   `json:"data"`
	Categories []string `json:"categories"`
}

// Parse posts the image and returns the extracted fields. Unknown categories become "other".
func (p *ReceiptParser) Parse(ctx context.Context, data []byte, mimeType string) (*ParsedReceipt, error) {
	if !p.Enabled() {
		return nil, ErrReceiptParserDisabled
	}

	body, err := json.Marshal(receiptRequest{
		MimeType:   mimeType,
		Data:       base64.StdEncoding.EncodeToString(data),
		Categories: models.ExpenseCategories,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("receipt parser: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("receipt parser: unexpected status %d", resp.StatusCode)
	}

	var parsed ParsedReceipt
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("receipt parser: decode: %w", err)
	}
	parsed.Category = strings.ToLower(strings.TrimSpace(parsed.Category))
	if !models.ValidExpenseCategory(parsed.Category) {
		parsed.Category = "other"
	}
	return &parsed, nil
}
