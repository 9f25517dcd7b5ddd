package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Howzley/EEIRS-14-SP2025/internal/application/dto"
	"github.com/Howzley/EEIRS-14-SP2025/internal/application/usecase"
	"github.com/Howzley/EEIRS-14-SP2025/internal/domain"
)

type fakeScanner struct {
	calls  int
	fields *dto.ReceiptFields
	err    error
}

func (f *fakeScanner) Scan(ctx context.Context, filename string, content []byte) (*dto.ReceiptFields, error) {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("scanner called without deadline")
	}
	return f.fields, f.err
}

// smallest valid PNG header is enough for content sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestReceiptUseCase_Capture(t *testing.T) {
	uc := usecase.NewReceiptUseCase(&fakeScanner{}, time.Second)

	u, err := uc.Capture("lunch.png", pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "image/png", u.ContentType)

	p := u.Preview()
	assert.Equal(t, len(pngBytes), p.Size)
	assert.Contains(t, p.DataURL, "data:image/png;base64,")

	_, err = uc.Capture("empty.png", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceiptUseCase_ScanSuccessCarriesPrefill(t *testing.T) {
	total := 18.75
	sc := &fakeScanner{fields: &dto.ReceiptFields{Description: "Corner Cafe", Amount: &total, Category: "meals"}}
	uc := usecase.NewReceiptUseCase(sc, time.Second)
	u, err := uc.Capture("r.png", pngBytes)
	require.NoError(t, err)

	resp, err := uc.Scan(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, 1, sc.calls)
	assert.Equal(t, string(usecase.IntakeScanned), resp.State)
	assert.Equal(t, "/add?data="+resp.Prefill, resp.AddURL)

	got, err := usecase.DecodePrefill(resp.Prefill)
	require.NoError(t, err)
	assert.Equal(t, "Corner Cafe", got.Description)
	require.NotNil(t, got.Amount)
	assert.Equal(t, 18.75, *got.Amount)
	assert.Equal(t, "meals", got.Category)
}

func TestReceiptUseCase_ScanFailureFallsBackToManualEntry(t *testing.T) {
	sc := &fakeScanner{err: errors.New("scanner returned 500")}
	uc := usecase.NewReceiptUseCase(sc, time.Second)
	u, _ := uc.Capture("r.png", pngBytes)

	resp, err := uc.Scan(context.Background(), u)
	assert.ErrorIs(t, err, domain.ErrScanFailed)
	require.NotNil(t, resp)
	assert.Equal(t, 1, sc.calls, "no retry")
	assert.Equal(t, string(usecase.IntakeScanFailed), resp.State)
	assert.Equal(t, "/add?scan=failed", resp.AddURL)
	assert.Empty(t, resp.Prefill)
}

func TestReceiptUseCase_Skip(t *testing.T) {
	sc := &fakeScanner{}
	uc := usecase.NewReceiptUseCase(sc, time.Second)

	assert.Equal(t, "/add", uc.Skip())
	assert.Zero(t, sc.calls)
}

func TestIntake_Transitions(t *testing.T) {
	in := usecase.NewIntake()
	assert.Equal(t, usecase.IntakeIdle, in.State())

	_, err := in.OpenForm()
	assert.Error(t, err, "idle cannot jump to the form")

	require.NoError(t, in.Select(&usecase.Upload{Filename: "a.png"}))
	require.NoError(t, in.Select(&usecase.Upload{Filename: "b.png"}), "picking another file is allowed")
	assert.Equal(t, "b.png", in.Upload().Filename)

	require.NoError(t, in.Skip())
	url, err := in.OpenForm()
	require.NoError(t, err)
	assert.Equal(t, "/add", url)
	assert.Equal(t, usecase.IntakeCreationForm, in.State())

	assert.Error(t, in.Skip(), "creation-form is terminal")
}

func TestPrefill_RoundTripAndTolerance(t *testing.T) {
	encoded, err := usecase.EncodePrefill(dto.ReceiptFields{Description: "Taxi ~ airport?"})
	require.NoError(t, err)
	assert.NotContains(t, encoded, "=")
	assert.NotContains(t, encoded, "+")
	assert.NotContains(t, encoded, "/")

	got, err := usecase.DecodePrefill(encoded + "==")
	require.NoError(t, err)
	assert.Equal(t, "Taxi ~ airport?", got.Description)

	empty, err := usecase.DecodePrefill("")
	require.NoError(t, err)
	assert.Equal(t, dto.ReceiptFields{}, empty)

	_, err = usecase.DecodePrefill("%%%")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
