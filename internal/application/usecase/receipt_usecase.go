package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/ports"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
)

// MaxReceiptBytes upper bound of an uploaded receipt.
const MaxReceiptBytes = 10 << 20

// IntakeState step of the receipt intake flow.
type IntakeState string

const (
	IntakeIdle         IntakeState = "idle"
	IntakeFileSelected IntakeState = "file-selected"
	IntakeScanning     IntakeState = "scanning"
	IntakeScanned      IntakeState = "scanned"
	IntakeScanFailed   IntakeState = "scan-failed"
	IntakeSkipped      IntakeState = "skipped"
	IntakeCreationForm IntakeState = "creation-form"
)

var intakeTransitions = map[IntakeState][]IntakeState{
	IntakeIdle:         {IntakeFileSelected, IntakeSkipped},
	IntakeFileSelected: {IntakeFileSelected, IntakeScanning, IntakeSkipped},
	IntakeScanning:     {IntakeScanned, IntakeScanFailed},
	IntakeScanned:      {IntakeCreationForm},
	// a failed scan falls back to a blank manual-entry form
	IntakeScanFailed: {IntakeCreationForm},
	IntakeSkipped:    {IntakeCreationForm},
}

// Intake state of one pass through the upload screen.
type Intake struct {
	state   IntakeState
	upload  *Upload
	fields  dto.ReceiptFields
	prefill string
	err     error
}

// NewIntake starts in idle.
func NewIntake() *Intake { return &Intake{state: IntakeIdle} }

// State current step.
func (in *Intake) State() IntakeState { return in.state }

// Upload file selected for scanning, nil when skipped.
func (in *Intake) Upload() *Upload { return in.upload }

// Err scan failure, if any.
func (in *Intake) Err() error { return in.err }

func (in *Intake) move(to IntakeState) error {
	for _, next := range intakeTransitions[in.state] {
		if next == to {
			in.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: intake cannot go from %s to %s", domain.ErrInvalidInput, in.state, to)
}

// Select records the captured file.
func (in *Intake) Select(u *Upload) error {
	if err := in.move(IntakeFileSelected); err != nil {
		return err
	}
	in.upload = u
	return nil
}

// Skip bypasses scanning.
func (in *Intake) Skip() error { return in.move(IntakeSkipped) }

// OpenForm finishes the flow and returns the /add URL for the creation form.
func (in *Intake) OpenForm() (string, error) {
	from := in.state
	if err := in.move(IntakeCreationForm); err != nil {
		return "", err
	}
	switch from {
	case IntakeScanned:
		prefill, err := EncodePrefill(in.fields)
		if err != nil {
			return "", err
		}
		in.prefill = prefill
		return AddURL(prefill, false), nil
	case IntakeScanFailed:
		return AddURL("", true), nil
	default:
		return AddURL("", false), nil
	}
}

// Upload a captured receipt held in memory.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Preview local preview handle of the upload.
func (u *Upload) Preview() dto.ReceiptPreview {
	return dto.ReceiptPreview{
		Filename:    u.Filename,
		ContentType: u.ContentType,
		Size:        len(u.Content),
		DataURL:     "data:" + u.ContentType + ";base64," + base64.StdEncoding.EncodeToString(u.Content),
	}
}

// ReceiptUseCase captures receipts and sends them to the scanner.
type ReceiptUseCase struct {
	scanner ports.ReceiptScanner
	timeout time.Duration
}

// NewReceiptUseCase builds the use case. timeout bounds the single scanner request.
func NewReceiptUseCase(scanner ports.ReceiptScanner, timeout time.Duration) *ReceiptUseCase {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ReceiptUseCase{scanner: scanner, timeout: timeout}
}

// Capture turns raw bytes into an upload with a detected content type.
func (uc *ReceiptUseCase) Capture(filename string, content []byte) (*Upload, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: receipt file is empty", domain.ErrInvalidInput)
	}
	if len(content) > MaxReceiptBytes {
		return nil, fmt.Errorf("%w: receipt file exceeds %d bytes", domain.ErrInvalidInput, MaxReceiptBytes)
	}
	if filename == "" {
		filename = "receipt"
	}
	return &Upload{
		Filename:    filename,
		ContentType: mimetype.Detect(content).String(),
		Content:     content,
	}, nil
}

// Scan runs select -> scanning -> scanned|scan-failed -> creation-form for u.
// The response is always filled in; on failure the error wraps ErrScanFailed
// and AddURL points at the blank manual-entry form.
func (uc *ReceiptUseCase) Scan(ctx context.Context, u *Upload) (*dto.ScanResponse, error) {
	in := NewIntake()
	if err := in.Select(u); err != nil {
		return nil, err
	}
	if err := in.move(IntakeScanning); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	fields, err := uc.scanner.Scan(ctx, u.Filename, u.Content)
	if err != nil || fields == nil {
		if err == nil {
			err = fmt.Errorf("empty scanner result")
		}
		in.err = err
		_ = in.move(IntakeScanFailed)
	} else {
		in.fields = *fields
		_ = in.move(IntakeScanned)
	}

	outcome := in.State()
	addURL, err := in.OpenForm()
	if err != nil {
		return nil, err
	}
	resp := &dto.ScanResponse{
		State:   string(outcome),
		Preview: u.Preview(),
		Fields:  in.fields,
		Prefill: in.prefill,
		AddURL:  addURL,
	}
	if outcome == IntakeScanFailed {
		return resp, fmt.Errorf("%w: %v", domain.ErrScanFailed, in.err)
	}
	return resp, nil
}

// Skip opens the blank creation form.
func (uc *ReceiptUseCase) Skip() string {
	in := NewIntake()
	_ = in.Skip()
	addURL, _ := in.OpenForm()
	return addURL
}

// EncodePrefill serializes fields as base64url JSON for the /add?data= parameter.
func EncodePrefill(f dto.ReceiptFields) (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode prefill: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodePrefill reverses EncodePrefill. Padded input is accepted too.
func DecodePrefill(s string) (dto.ReceiptFields, error) {
	var f dto.ReceiptFields
	if s == "" {
		return f, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return f, fmt.Errorf("%w: prefill is not base64url", domain.ErrInvalidInput)
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("%w: prefill is not valid JSON", domain.ErrInvalidInput)
	}
	return f, nil
}

// AddURL builds the creation form URL.
func AddURL(prefill string, scanFailed bool) string {
	switch {
	case prefill != "":
		return "/add?data=" + url.QueryEscape(prefill)
	case scanFailed:
		return "/add?scan=failed"
	default:
		return "/add"
	}
}
