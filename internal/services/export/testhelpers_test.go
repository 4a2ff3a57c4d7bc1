package export

import (
	"encoding/json"
	"testing"

	"bank-reconciliation-backend/internal/models"

	"github.com/stretchr/testify/require"
)

// singleMatchReport has one matched transaction and no other rows.
func singleMatchReport(t *testing.T) *models.ReconciliationReport {
	t.Helper()
	report, err := models.ParseReport([]byte(`{
		"summary": {"matched_count": 1, "anomaly_count": 0, "unmatched_bank_count": 0},
		"matched_transactions": [
			{"bank": {"Date": "2024-01-01", "Description": "ACME", "Amount": 100}, "internal": {"Vendor": "Acme Corp"}, "confidence": 95}
		],
		"anomalies_detected": [],
		"unmatched_bank_transactions": [],
		"unmatched_internal_records": []
	}`))
	require.NoError(t, err)
	return report
}

func fullReport() *models.ReconciliationReport {
	conf := json.Number("88")
	return &models.ReconciliationReport{
		MatchedTransactions: []models.MatchedTransaction{
			{
				Bank:       models.TransactionRecord{"Date": "2024-02-01", "Description": "UBER TRIP", "Amount": json.Number("23.5")},
				Internal:   models.TransactionRecord{"Vendor": "Uber"},
				Confidence: &conf,
			},
			{
				Bank:     models.TransactionRecord{"Date": "2024-02-02", "Description": "AWS", "Amount": json.Number("1200")},
				Internal: models.TransactionRecord{"Vendor": "Amazon Web Services"},
			},
		},
		AnomaliesDetected: []models.TransactionRecord{
			{"Date": "2024-02-03", "Description": "ATM", "Amount": json.Number("9000"), "Flagged_Reason": "High value"},
			{"Date": "2024-02-04", "Description": "Unknown", "Amount": json.Number("-15")},
		},
		UnmatchedBankTransactions: []models.TransactionRecord{
			{"Date": "2024-02-05", "Description": "Coffee", "Amount": json.Number("4.75")},
		},
		UnmatchedInternalRecords: []models.TransactionRecord{
			{"Date": "2024-02-06", "Vendor": "Office Depot", "Amount": "pending"},
			{"Date": "2024-02-07", "Vendor": "Staples", "Amount": json.Number("60")},
			{"Date": "2024-02-08", "Vendor": "Dell", "Amount": json.Number("999.99")},
		},
	}
}
