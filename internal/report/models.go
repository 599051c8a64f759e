package report

import "time"

// DateRange is an inclusive day range. Both bounds are calendar days;
// the query window covers From 00:00 UTC through the end of To.
type DateRange struct {
	From time.Time
	To   time.Time
}

// RevenueDay holds the issued and collected totals for one calendar day.
type RevenueDay struct {
	Day            string `json:"day"`
	IssuedCents    int64  `json:"issued_cents"`
	CollectedCents int64  `json:"collected_cents"`
}

type RevenueReport struct {
	From                string       `json:"from"`
	To                  string       `json:"to"`
	Days                []RevenueDay `json:"days"`
	TotalIssuedCents    int64        `json:"total_issued_cents"`
	TotalCollectedCents int64        `json:"total_collected_cents"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type ProviderCount struct {
	ProviderID string `json:"provider_id"`
	Count      int    `json:"count"`
}

type AppointmentVolumeReport struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	Total      int             `json:"total"`
	ByStatus   []StatusCount   `json:"by_status"`
	ByProvider []ProviderCount `json:"by_provider"`
}

// LabTurnaroundReport averages the ordered-to-verified duration of
// orders verified inside the range.
type LabTurnaroundReport struct {
	From                 string  `json:"from"`
	To                   string  `json:"to"`
	VerifiedCount        int     `json:"verified_count"`
	AvgTurnaroundMinutes float64 `json:"avg_turnaround_minutes"`
}

type MedicationDispenseCount struct {
	MedicationID      string `json:"medication_id"`
	Code              string `json:"code"`
	Name              string `json:"name"`
	DispenseCount     int    `json:"dispense_count"`
	QuantityDispensed int    `json:"quantity_dispensed"`
}

type DispenseReport struct {
	From        string                    `json:"from"`
	To          string                    `json:"to"`
	Medications []MedicationDispenseCount `json:"medications"`
}

type LowStockMedication struct {
	MedicationID     string `json:"medication_id"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	StockQuantity    int    `json:"stock_quantity"`
	ReorderThreshold int    `json:"reorder_threshold"`
}

type LowStockReport struct {
	Medications []LowStockMedication `json:"medications"`
}
