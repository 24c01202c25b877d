package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"liftledger/internal/core"

	"github.com/xuri/excelize/v2"
)

var payrollExportHeader = []string{
	"Worker", "Base Salary", "HUL Direct", "Advance Deduction",
	"Other Deduction", "Net Payable", "Period Tons", "Period Revenue", "Status",
}

func payrollExportRow(r core.PayrollRow) []string {
	return []string{
		r.WorkerName,
		r.BaseSalary.StringFixed(2),
		r.HULDirect.StringFixed(2),
		r.AdvanceDeduct.StringFixed(2),
		r.OtherDeduct.StringFixed(2),
		r.NetPayable.StringFixed(2),
		r.PeriodTons.String(),
		r.PeriodRevenue.StringFixed(2),
		string(r.PaymentStatus),
	}
}

func (s *appService) ExportPayrollCSV(ctx context.Context, caller core.Caller, month, year int) ([]byte, error) {
	p, err := s.payroll.Projection(ctx, month, year, s.payrollConfig())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(payrollExportHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range p.Rows {
		if err := w.Write(payrollExportRow(r)); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *appService) ExportPayrollXLSX(ctx context.Context, caller core.Caller, month, year int) ([]byte, error) {
	p, err := s.payroll.Projection(ctx, month, year, s.payrollConfig())
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("Payroll %02d-%d", month, year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(payrollExportHeader))
	for i, h := range payrollExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, r := range p.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell: %w", err)
		}
		base, _ := r.BaseSalary.Float64()
		hul, _ := r.HULDirect.Float64()
		adv, _ := r.AdvanceDeduct.Float64()
		other, _ := r.OtherDeduct.Float64()
		net, _ := r.NetPayable.Float64()
		tons, _ := r.PeriodTons.Float64()
		revenue, _ := r.PeriodRevenue.Float64()
		row := []any{r.WorkerName, base, hul, adv, other, net, tons, revenue, string(r.PaymentStatus)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
