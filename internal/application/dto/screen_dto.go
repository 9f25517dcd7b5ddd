package dto

// NavAction link or form target offered by a screen.
type NavAction struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Method string `json:"method"`
}

// AuthView /login and /signup.
type AuthView struct {
	Screen  string      `json:"screen"`
	Error   string      `json:"error,omitempty"`
	Actions []NavAction `json:"actions"`
}

// MenuView / for an authenticated user.
type MenuView struct {
	Screen  string      `json:"screen"`
	Email   string      `json:"email"`
	Role    string      `json:"role"`
	Actions []NavAction `json:"actions"`
}

// CategoryOption one entry of the category picker.
type CategoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AddView creation form, optionally prefilled from a scanned receipt.
type AddView struct {
	Screen     string           `json:"screen"`
	Categories []CategoryOption `json:"categories"`
	Prefill    ReceiptFields    `json:"prefill"`
	ScanFailed bool             `json:"scan_failed"`
	Notice     string           `json:"notice,omitempty"`
	Actions    []NavAction      `json:"actions"`
}

// DraftResponse editable copy of a record, separate from the record itself.
type DraftResponse struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

// EditRow record as stored plus the draft the form starts from.
type EditRow struct {
	Record ExpenseResponse `json:"record"`
	Draft  DraftResponse   `json:"draft"`
	Save   NavAction       `json:"save"`
	Delete NavAction       `json:"delete"`
}

// EditView /edit.
type EditView struct {
	Screen     string           `json:"screen"`
	Role       string           `json:"role"`
	Categories []CategoryOption `json:"categories"`
	Rows       []EditRow        `json:"rows"`
}

// SummaryView /summary.
type SummaryView struct {
	Screen  string           `json:"screen"`
	Role    string           `json:"role"`
	Summary *SummaryResponse `json:"summary"`
	Live    string           `json:"live"`
}

// UploadView /upload.
type UploadView struct {
	Screen   string      `json:"screen"`
	MaxBytes int         `json:"max_bytes"`
	Actions  []NavAction `json:"actions"`
}

// FormResult outcome of a screen form submission that did not redirect.
type FormResult struct {
	Screen  string      `json:"screen"`
	OK      bool        `json:"ok"`
	Message string      `json:"message"`
	Form    interface{} `json:"form,omitempty"`
}
