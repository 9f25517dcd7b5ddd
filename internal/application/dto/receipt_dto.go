package dto

// ReceiptFields structured fields extracted by the scanner. Every field is optional.
type ReceiptFields struct {
	Description string   `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// ReceiptPreview local preview handle of a captured file.
type ReceiptPreview struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	DataURL     string `json:"data_url"`
}

// ScanResponse outcome of a scan request.
type ScanResponse struct {
	State   string         `json:"state"`
	Preview ReceiptPreview `json:"preview"`
	Fields  ReceiptFields  `json:"fields"`
	// Prefill value for the /add?data= parameter.
	Prefill string `json:"prefill"`
	AddURL  string `json:"add_url"`
}
