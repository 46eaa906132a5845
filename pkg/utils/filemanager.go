// =============================================================================
// Supplier Follow-up Mailer - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for a send run:
//   - Input archival (moving a fully sent spreadsheet out of the way)
//   - Run summary logs
//   - Directory helpers
//
// ARCHIVAL STRATEGY:
//   - The input file is moved to the archive directory only after a run in
//     which every group was sent successfully.
//   - Files from runs with failures stay in place so they can be re-sent.
//   - An existing archive entry is never overwritten; the new file gets a
//     timestamp suffix.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations around a send run.
type FileManager struct {
	// ArchiveDir is the directory for archived input files.
	ArchiveDir string

	// ReportDir is the directory for run summary logs.
	ReportDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: archive/2024/01/15/orders.xlsx
	UseTimestampSubdirs bool

	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(archiveDir, reportDir string) *FileManager {
	return &FileManager{
		ArchiveDir: archiveDir,
		ReportDir:  reportDir,
		now:        time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and its parents if they don't exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails. The original file is left in place.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if fm.ArchiveDir == "" {
		return "", fmt.Errorf("archive directory is not configured")
	}

	archivePath := fm.getArchivePath(filePath)

	if err := EnsureDir(filepath.Dir(archivePath)); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Move the file.
	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs a free archive path for a file.
func (fm *FileManager) getArchivePath(filePath string) string {
	now := fm.clock()
	dir := fm.ArchiveDir

	if fm.UseTimestampSubdirs {
		dir = filepath.Join(
			dir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
	}

	fileName := filepath.Base(filePath)
	archivePath := filepath.Join(dir, fileName)
	if !FileExists(archivePath) {
		return archivePath
	}

	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, now.Format("20060102_150405"), ext))
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about one send run.
type RunSummary struct {
	StartTime   time.Time
	EndTime     time.Time
	RunID       string
	SourceFile  string
	Transport   string
	ArchivePath string
	Failures    []FailedSend
	Rows        int
	Groups      int
	Attempted   int
	Succeeded   int
	Failed      int
	Skipped     int
	DryRun      bool
	Cancelled   bool
}

// FailedSend records one group that could not be sent.
type FailedSend struct {
	Recipient    string
	ErrorMessage string
}

// WriteSummaryLog writes a run summary to a text file in fm.ReportDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func (fm *FileManager) WriteSummaryLog(summary RunSummary) (string, error) {
	if err := EnsureDir(fm.ReportDir); err != nil {
		return "", err
	}

	timestamp := fm.clock().Format("20060102_150405")
	name := fmt.Sprintf("send_summary_%s.txt", timestamp)
	if summary.RunID != "" {
		name = fmt.Sprintf("send_summary_%s_%s.txt", timestamp, shortID(summary.RunID))
	}
	summaryPath := filepath.Join(fm.ReportDir, name)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	mode := "send"
	if summary.DryRun {
		mode = "dry run"
	}

	fmt.Fprintf(writer, "Supplier Follow-up Mailer - Send Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Source File:    %s\n"+
		"  Transport:      %s\n"+
		"  Mode:           %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Rows:           %d\n"+
		"  Suppliers:      %d\n"+
		"  Attempted:      %d\n"+
		"  Sent:           %d\n"+
		"  Failed:         %d\n"+
		"  Skipped:        %d\n",
		summary.RunID,
		summary.SourceFile,
		summary.Transport,
		mode,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.Rows,
		summary.Groups,
		summary.Attempted,
		summary.Succeeded,
		summary.Failed,
		summary.Skipped,
	)

	if summary.Cancelled {
		writer.WriteString("  Cancelled:      yes\n")
	}
	if summary.ArchivePath != "" {
		fmt.Fprintf(writer, "  Archived To:    %s\n", summary.ArchivePath)
	}
	writer.WriteString("\n")

	if len(summary.Failures) > 0 {
		writer.WriteString("Failed Sends:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, f := range summary.Failures {
			fmt.Fprintf(writer, "  Recipient: %s\n", f.Recipient)
			fmt.Fprintf(writer, "  Error:     %s\n\n", f.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
