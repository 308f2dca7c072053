package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/stocktrack/stockkeeper/internal/models"
)

var (
	listPage     int
	listLimit    int
	createFormat string
	downloadDest string
)

// listCmd lists the backup catalog.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups in the catalog",
	RunE:  runList,
}

// createCmd takes a manual backup.
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Take a manual backup",
	RunE:  runCreate,
}

// validateCmd checks a stored backup's integrity.
var validateCmd = &cobra.Command{
	Use:   "validate <backup-id>",
	Short: "Verify a backup's checksum and contents",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

// deleteCmd removes a backup.
var deleteCmd = &cobra.Command{
	Use:   "delete <backup-id>",
	Short: "Delete a backup and its archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// downloadCmd fetches a backup archive.
var downloadCmd = &cobra.Command{
	Use:   "download <backup-id>",
	Short: "Download a backup archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

func runList(cmd *cobra.Command, args []string) error {
	resp, err := newClient().ListBackups(cmd.Context(), listPage, listLimit)
	if err != nil {
		return err
	}

	if len(resp.Backups) == 0 {
		fmt.Println("No backups.")
		return nil
	}

	fmt.Printf("%-36s  %-11s  %-10s  %-9s  %-8s  %s\n",
		"ID", "TYPE", "STATUS", "SIZE", "RECORDS", "CREATED")
	for _, b := range resp.Backups {
		fmt.Printf("%-36s  %-11s  %-10s  %-9s  %-8d  %s\n",
			b.ID, b.Type, b.Status,
			humanize.Bytes(uint64(b.FileSize)), b.RecordCount,
			humanize.Time(b.CreatedAt))
	}
	fmt.Printf("\nPage %d of %d (%d total)\n",
		resp.Pagination.Page, resp.Pagination.TotalPages, resp.Pagination.Total)
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	format := models.BackupFormat(createFormat)
	switch format {
	case models.FormatZip, models.FormatJSONGz:
	default:
		return fmt.Errorf("unknown format %q (zip or json.gz)", createFormat)
	}

	b, err := newClient().CreateBackup(cmd.Context(), format)
	if err != nil {
		return err
	}
	fmt.Printf("Created backup %s (%s, %s, %d records)\n",
		b.ID, b.Filename, humanize.Bytes(uint64(b.FileSize)), b.RecordCount)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	result, err := newClient().ValidateBackup(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if result.Valid {
		fmt.Println("Backup is valid.")
		return nil
	}
	fmt.Println("Backup is INVALID:")
	for _, issue := range result.Issues {
		fmt.Printf("  - %s\n", issue)
	}
	return fmt.Errorf("validation failed with %d issue(s)", len(result.Issues))
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := newClient().DeleteBackup(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted backup %s\n", args[0])
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	dest := downloadDest
	if dest == "" {
		// Keep the server-side filename when no destination is given.
		dest = args[0]
		if i := strings.LastIndex(dest, "/"); i >= 0 {
			dest = dest[i+1:]
		}
	}
	if err := newClient().DownloadBackup(cmd.Context(), args[0], dest); err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", dest)
	return nil
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "page size")

	createCmd.Flags().StringVar(&createFormat, "format", "zip", "archive format (zip or json.gz)")

	downloadCmd.Flags().StringVarP(&downloadDest, "output", "o", "", "destination file")

	rootCmd.AddCommand(listCmd, createCmd, validateCmd, deleteCmd, downloadCmd)
}
