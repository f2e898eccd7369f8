package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mauv0809/finance-dashboard/internal/models"
)

// SheetName is the worksheet holding the exported periods.
const SheetName = "Data"

type column struct {
	key    models.Column
	header string
	value  func(p models.Period) interface{}
}

var columns = []column{
	{models.ColumnRevenue, "Receita_Total", func(p models.Period) interface{} { return decimalCell(p.Revenue) }},
	{models.ColumnOperatingCosts, "Custos_Operacionais", func(p models.Period) interface{} { return decimalCell(p.OperatingCosts) }},
	{models.ColumnNewCustomers, "Novos_Clientes", func(p models.Period) interface{} {
		if p.NewCustomers == nil {
			return nil
		}
		return *p.NewCustomers
	}},
	{models.ColumnCreditPortfolio, "Carteira_Credito_Ativa", func(p models.Period) interface{} { return decimalCell(p.CreditPortfolio) }},
	{models.ColumnDelinquent, "Valor_Inadimplente", func(p models.Period) interface{} { return decimalCell(p.Delinquent) }},
	{models.ColumnGrossProfit, "Lucro_Operacional_Bruto", func(p models.Period) interface{} { return decimalCell(p.GrossProfit) }},
	{models.ColumnGrossMarginPct, "Margem_Operacional_Bruta_%", func(p models.Period) interface{} { return decimalCell(p.GrossMarginPct) }},
	{models.ColumnDelinquencyRate, "Taxa_Inadimplencia_%", func(p models.Period) interface{} { return decimalCell(p.DelinquencyRatePct) }},
}

func decimalCell(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.InexactFloat64()
}

// WriteXLSX writes ds as a single-sheet workbook. Only columns present in the
// dataset are exported; missing cells are left blank.
func WriteXLSX(w io.Writer, ds *models.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	cols := make([]column, 0, len(columns))
	for _, c := range columns {
		if ds.Columns[c.key] {
			cols = append(cols, c)
		}
	}

	header := make([]interface{}, 0, len(cols)+1)
	header = append(header, "Data")
	for _, c := range cols {
		header = append(header, c.header)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, p := range ds.Periods {
		rowNum := i + 2
		if err := setCell(f, 1, rowNum, p.Date.Format(models.DateLayout)); err != nil {
			return err
		}
		for j, c := range cols {
			v := c.value(p)
			if v == nil {
				continue
			}
			if err := setCell(f, j+2, rowNum, v); err != nil {
				return err
			}
		}
	}

	if err := applyFormatting(f, len(cols)+1, len(ds.Periods)+1); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, cell, v); err != nil {
		return fmt.Errorf("writing %s: %w", cell, err)
	}
	return nil
}

// applyFormatting bolds the header, adds a filter and a two-decimal number format.
func applyFormatting(f *excelize.File, cols, rows int) error {
	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(SheetName, "A1", lastCol+"1", style)
	}
	_ = f.AutoFilter(SheetName, fmt.Sprintf("A1:%s1", lastCol), nil)
	_ = f.SetColWidth(SheetName, "A", lastCol, 18)

	if cols > 1 && rows > 1 {
		numFmt := "#,##0.00"
		style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
		if err != nil {
			return fmt.Errorf("creating number style: %w", err)
		}
		if err := f.SetCellStyle(SheetName, "B2", fmt.Sprintf("%s%d", lastCol, rows), style); err != nil {
			return fmt.Errorf("styling numbers: %w", err)
		}
	}
	return nil
}
