package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/dealerdesk-backend/internal/buyers"
	"github.com/angelmondragon/dealerdesk-backend/internal/installments"
	"github.com/angelmondragon/dealerdesk-backend/pkg/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write buyers or installment schedules to CSV or XLSX",
	Example: `  dealerctl export buyers --format xlsx --out ./reports
  dealerctl export installments 01HV6Q8Z6K3D9Y1T3M5P7R9S2B --format csv`,
}

var exportBuyersCmd = &cobra.Command{
	Use:   "buyers",
	Short: "Export the buyer directory",
	Args:  cobra.NoArgs,
	RunE:  runExportBuyers,
}

var exportInstallmentsCmd = &cobra.Command{
	Use:   "installments [contract-id]",
	Short: "Export the installment schedule of one contract",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportInstallments,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportBuyersCmd, exportInstallmentsCmd)

	exportCmd.PersistentFlags().String("format", string(export.FormatCSV), "Output format (csv or xlsx)")
	exportCmd.PersistentFlags().StringP("out", "o", "", "Output directory, or - for stdout (default: current directory)")
}

func runExportBuyers(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	list, err := rt.services.Buyers.List(ctx)
	if err != nil {
		return err
	}
	return writeTable(cmd, buyers.ExportBase, buyers.ExportTable(list))
}

func runExportInstallments(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := bootstrap(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	detail, err := rt.services.Contracts.Get(ctx, args[0])
	if err != nil {
		return err
	}
	base := "installments_" + detail.Contract.ManualID
	if detail.Contract.ManualID == "" {
		base = "installments_" + detail.Contract.ID
	}
	return writeTable(cmd, base, installments.ExportTable(detail.Installments))
}

func writeTable(cmd *cobra.Command, base string, table export.Table) error {
	rawFormat, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, table); err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "-" {
		_, err := io.Copy(cmd.OutOrStdout(), &buf)
		return err
	}
	path := filepath.Join(out, format.Filename(base, time.Now()))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(table.Rows), path)
	return nil
}
