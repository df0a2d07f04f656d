package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// WriteQuoteCSV serialises the quote document rows and totals.
func WriteQuoteCSV(w io.Writer, doc QuoteDocument) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{
		"Size", "Model", "Finish", "Qty", "Unit Cost", "Unit Price",
		"Line Cost", "Line Price", "Line Profit", "Margin %", "Doors", "m2",
	}); err != nil {
		return err
	}
	for _, r := range doc.Rows {
		if err := writer.Write([]string{
			fmt.Sprintf("%d ft", int(r.Size)),
			r.Model,
			string(r.Finish),
			strconv.Itoa(r.Quantity),
			formatFloat(r.FinalUnitCost),
			formatFloat(r.FinalUnitPrice),
			formatFloat(r.LineCost),
			formatFloat(r.LinePrice),
			formatFloat(r.LineProfit),
			formatFloat(r.MarginPct),
			formatFloat(r.LineDoors),
			formatFloat(r.LineM2),
		}); err != nil {
			return err
		}
	}

	records := [][]string{
		{"", "", "", "", "", "", "", "", "", "", "", ""},
		{"Subtotal", "", "", "", "", "", "", formatFloat(doc.SubtotalUSD), "", "", "", ""},
		{"IVA 16%", "", "", "", "", "", "", formatFloat(doc.TaxUSD), "", "", "", ""},
		{"Total", "", "", "", "", "", "", formatFloat(doc.TotalUSD), "", "", "", ""},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteScheduleCSV serialises the payment schedule.
func WriteScheduleCSV(w io.Writer, doc ScheduleDocument) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{
		"Installment", "Target %", "Effective %", "Date", "Concept",
		"Units", "Units By Line", "Subtotal", "IVA 16%", "Total",
	}); err != nil {
		return err
	}
	for _, inst := range doc.Installments {
		if err := writer.Write([]string{
			strconv.Itoa(inst.Index),
			formatFloat(inst.TargetPct),
			formatFloat(inst.EffectivePct),
			inst.Date,
			inst.Concept,
			strconv.Itoa(inst.UnitTotal),
			unitsByLine(inst.UnitsByLine),
			formatFloat(inst.SubtotalUSD),
			formatFloat(inst.TaxUSD),
			formatFloat(inst.TotalUSD),
		}); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{
		"Total", "", "", "", "", "", "",
		formatFloat(doc.SubtotalUSD),
		formatFloat(doc.TaxUSD),
		formatFloat(doc.TotalUSD),
	}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// unitsByLine renders the per-line unit counts as "key:n; key:n" in stable
// key order.
func unitsByLine(units map[string]int) string {
	keys := make([]string, 0, len(units))
	for k, n := range units {
		if n > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s:%d", k, units[k])
	}
	return out
}
