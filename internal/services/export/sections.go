// Package export turns a reconciliation report into downloadable documents.
//
// ComposeSections declares the exported tables once. The spreadsheet and PDF
// renderers consume the same []Section and differ only in how the resulting
// cells are lowered: onto a cell grid, or onto cursor positions on a page.
package export

import (
	"bank-reconciliation-backend/internal/models"
)

const (
	TitleMatched           = "Matched Transactions"
	TitleAnomalies         = "Anomalies Detected"
	TitleUnmatchedBank     = "Unmatched Bank Transactions"
	TitleUnmatchedInternal = "Unmatched Internal Records"
)

type Kind int

const (
	KindText Kind = iota
	KindCurrency
)

type Column struct {
	Header string
	Key    string
	Kind   Kind
}

// Row is one table row keyed by Column.Key. Rows are heterogeneous, so a
// column may reference a key some rows lack.
type Row map[string]any

// Lookup returns the value under key. A missing key and a JSON null are
// both reported as absent.
func (r Row) Lookup(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

type Section struct {
	Title   string
	Columns []Column
	Rows    []Row
}

// Headers returns the column headers in declared order.
func (s Section) Headers() []string {
	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Header
	}
	return headers
}

// Cells lowers the section rows to display strings, one slice per row, cells
// in column order. Missing values become placeholder.
func (s Section) Cells(placeholder string) ([][]string, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	out := make([][]string, len(s.Rows))
	for i, row := range s.Rows {
		cells := make([]string, len(s.Columns))
		for j, col := range s.Columns {
			cells[j] = col.display(row, placeholder)
		}
		out[i] = cells
	}
	return out, nil
}

func (s Section) check() error {
	if s.Rows == nil {
		return &RenderError{Section: s.Title, Reason: "section has no row sequence"}
	}
	if len(s.Columns) == 0 {
		return &RenderError{Section: s.Title, Reason: "section declares no columns"}
	}
	return nil
}

func (c Column) display(row Row, placeholder string) string {
	v, ok := row.Lookup(c.Key)
	if !ok {
		return placeholder
	}
	if c.Kind == KindCurrency {
		return FormatCurrency(v)
	}
	return Stringify(v)
}

var (
	matchedColumns = []Column{
		{Header: "Date", Key: "Date"},
		{Header: "Bank Description", Key: "Description"},
		{Header: "Amount", Key: "Amount", Kind: KindCurrency},
		{Header: "Matched Vendor", Key: "vendor"},
		{Header: "Confidence", Key: "confidence"},
	}
	anomalyColumns = []Column{
		{Header: "Date", Key: "Date"},
		{Header: "Description", Key: "Description"},
		{Header: "Amount", Key: "Amount", Kind: KindCurrency},
		{Header: "Reason", Key: "Flagged_Reason"},
	}
	unmatchedBankColumns = []Column{
		{Header: "Date", Key: "Date"},
		{Header: "Description", Key: "Description"},
		{Header: "Amount", Key: "Amount", Kind: KindCurrency},
	}
	unmatchedInternalColumns = []Column{
		{Header: "Date", Key: "Date"},
		{Header: "Vendor", Key: "Vendor"},
		{Header: "Amount", Key: "Amount", Kind: KindCurrency},
	}
)

// ComposeSections builds the four exported sections in their fixed order.
// It does not modify report.
func ComposeSections(report *models.ReconciliationReport) []Section {
	return []Section{
		{Title: TitleMatched, Columns: matchedColumns, Rows: matchedRows(report.MatchedTransactions)},
		{Title: TitleAnomalies, Columns: anomalyColumns, Rows: recordRows(report.AnomaliesDetected)},
		{Title: TitleUnmatchedBank, Columns: unmatchedBankColumns, Rows: recordRows(report.UnmatchedBankTransactions)},
		{Title: TitleUnmatchedInternal, Columns: unmatchedInternalColumns, Rows: recordRows(report.UnmatchedInternalRecords)},
	}
}

// matchedRows merges each bank record with the vendor and confidence of its
// internal match. This is the only cross-record denormalisation in export.
func matchedRows(matches []models.MatchedTransaction) []Row {
	rows := make([]Row, 0, len(matches))
	for _, m := range matches {
		row := copyRecord(m.Bank)
		delete(row, "vendor")
		delete(row, "confidence")
		if vendor, ok := m.Internal.Lookup("Vendor"); ok {
			row["vendor"] = vendor
		}
		if m.Confidence != nil {
			row["confidence"] = *m.Confidence
		}
		rows = append(rows, row)
	}
	return rows
}

func recordRows(records []models.TransactionRecord) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, copyRecord(rec))
	}
	return rows
}

func copyRecord(rec models.TransactionRecord) Row {
	row := make(Row, len(rec)+2)
	for k, v := range rec {
		row[k] = v
	}
	return row
}

// TotalRows counts data rows across sections.
func TotalRows(sections []Section) int {
	n := 0
	for _, s := range sections {
		n += len(s.Rows)
	}
	return n
}
