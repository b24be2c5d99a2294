package domain

// ReceiptJob is one receipt waiting to be printed, durable enough to survive
// a register restart. Attempts counts delivery tries so the retry loop can
// flag jobs that keep failing.
type ReceiptJob struct {
	ID          string `json:"id"`
	PrinterID   string `json:"printerId"`
	PrinterType string `json:"printerType"`
	Address     string `json:"address"`
	Kitchen     bool   `json:"kitchen"`
	Order       Order  `json:"order"`
	// Summary is set instead of a meaningful Order for sales-report prints.
	Summary  string `json:"summary,omitempty"`
	Attempts int    `json:"attempts"`
}
