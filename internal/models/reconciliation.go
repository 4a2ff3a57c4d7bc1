package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Summary struct {
	MatchedCount       int `json:"matched_count"`
	AnomalyCount       int `json:"anomaly_count"`
	UnmatchedBankCount int `json:"unmatched_bank_count"`
}

func (s Summary) validate() error {
	counts := []struct {
		field string
		n     int
	}{
		{"summary.matched_count", s.MatchedCount},
		{"summary.anomaly_count", s.AnomalyCount},
		{"summary.unmatched_bank_count", s.UnmatchedBankCount},
	}
	for _, c := range counts {
		if c.n < 0 {
			return &ValidationError{Field: c.field, Reason: fmt.Sprintf("must not be negative, got %d", c.n)}
		}
	}
	return nil
}

// TransactionRecord is a single bank or ledger row exactly as the matching
// service emits it (Date, Description or Vendor, Amount, Flagged_Reason...).
type TransactionRecord map[string]any

// Lookup returns the value stored under key. JSON null counts as missing.
func (r TransactionRecord) Lookup(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

type MatchedTransaction struct {
	Bank       TransactionRecord `json:"bank"`
	Internal   TransactionRecord `json:"internal"`
	Confidence *json.Number      `json:"confidence,omitempty"`
}

type ReconciliationReport struct {
	Summary                   Summary                `json:"summary"`
	MatchedTransactions       []MatchedTransaction   `json:"matched_transactions"`
	AnomaliesDetected         []TransactionRecord    `json:"anomalies_detected"`
	UnmatchedBankTransactions []TransactionRecord    `json:"unmatched_bank_transactions"`
	UnmatchedInternalRecords  []TransactionRecord    `json:"unmatched_internal_records"`
	CategorySummary           map[string]json.Number `json:"category_summary,omitempty"`
}

// rawReport defers decoding of the record lists so each one can be checked
// for being a JSON array before its elements are looked at.
type rawReport struct {
	Summary                   json.RawMessage `json:"summary"`
	MatchedTransactions       json.RawMessage `json:"matched_transactions"`
	AnomaliesDetected         json.RawMessage `json:"anomalies_detected"`
	UnmatchedBankTransactions json.RawMessage `json:"unmatched_bank_transactions"`
	UnmatchedInternalRecords  json.RawMessage `json:"unmatched_internal_records"`
	CategorySummary           json.RawMessage `json:"category_summary"`
}

// ParseReport decodes and validates an untrusted report payload. Every
// failure is a *ValidationError.
func ParseReport(data []byte) (*ReconciliationReport, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &ValidationError{Reason: "report data is required"}
	}
	if trimmed[0] != '{' {
		return nil, &ValidationError{Reason: "report data must be a JSON object"}
	}

	var raw rawReport
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &ValidationError{Reason: "malformed report data", Err: err}
	}

	report := &ReconciliationReport{}

	if !isNull(raw.Summary) {
		if err := decode(raw.Summary, &report.Summary); err != nil {
			return nil, &ValidationError{Field: "summary", Reason: "must be an object of counts", Err: err}
		}
		if err := report.Summary.validate(); err != nil {
			return nil, err
		}
	}

	if err := decodeList("matched_transactions", raw.MatchedTransactions, &report.MatchedTransactions); err != nil {
		return nil, err
	}
	for i, m := range report.MatchedTransactions {
		if m.Bank == nil {
			return nil, &ValidationError{Field: fmt.Sprintf("matched_transactions[%d]", i), Reason: "missing bank record"}
		}
		if m.Internal == nil {
			return nil, &ValidationError{Field: fmt.Sprintf("matched_transactions[%d]", i), Reason: "missing internal record"}
		}
	}

	if err := decodeList("anomalies_detected", raw.AnomaliesDetected, &report.AnomaliesDetected); err != nil {
		return nil, err
	}
	if err := decodeList("unmatched_bank_transactions", raw.UnmatchedBankTransactions, &report.UnmatchedBankTransactions); err != nil {
		return nil, err
	}
	if err := decodeList("unmatched_internal_records", raw.UnmatchedInternalRecords, &report.UnmatchedInternalRecords); err != nil {
		return nil, err
	}

	if !isNull(raw.CategorySummary) {
		if err := decode(raw.CategorySummary, &report.CategorySummary); err != nil {
			return nil, &ValidationError{Field: "category_summary", Reason: "must map categories to amounts", Err: err}
		}
	}

	return report, nil
}

func decodeList[T any](field string, raw json.RawMessage, dst *[]T) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return &ValidationError{Field: field, Reason: "must be an array"}
	}
	if err := decode(trimmed, dst); err != nil {
		return &ValidationError{Field: field, Reason: "contains a malformed record", Err: err}
	}
	for i := range *dst {
		if rec, ok := any((*dst)[i]).(TransactionRecord); ok && rec == nil {
			return &ValidationError{Field: fmt.Sprintf("%s[%d]", field, i), Reason: "record must be an object"}
		}
	}
	// A non-nil empty slice keeps "present but empty" distinct from absent.
	if *dst == nil {
		*dst = make([]T, 0)
	}
	return nil
}

func decode(raw json.RawMessage, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
