package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"krxbacktest/types"
)

// WriteTradesCSVFile writes the trade log to a CSV file at the given path.
func WriteTradesCSVFile(path string, trades []types.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer f.Close()

	return writeTradesCSV(f, trades)
}

// writeTradesCSV writes trades to any io.Writer as CSV. Pass os.Stdout for
// debugging, or a file.
func writeTradesCSV(w io.Writer, trades []types.Trade) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"trade_id",
		"symbol",
		"side",
		"date", // RFC3339
		"quantity",
		"price",
		"value",
		"commission",
		"tax",
		"slippage",
		"entry_price",
		"exit_price",
		"pnl",
		"holding_days",
		"reason",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, t := range trades {
		record := []string{
			t.ID,
			t.Symbol,
			string(t.Side),
			t.Date.Format(time.RFC3339),
			t.Quantity.String(),
			t.Price.String(),
			t.Value.String(),
			t.Commission.String(),
			t.Tax.String(),
			t.Slippage.String(),
			t.EntryPrice.String(),
			t.ExitPrice.String(),
			t.PnL.String(),
			strconv.Itoa(t.HoldingDays),
			t.Reason,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
