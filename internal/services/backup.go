package services

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBackupPath returns ~/<date>-<storage>-notedeck.zip
func DefaultBackupPath(p *Project) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	timestamp := time.Now().Format("2006-01-02")
	return filepath.Join(homeDir, fmt.Sprintf("%s-%s-notedeck.zip", timestamp, p.Label)), nil
}

// Backup writes every file of the storage owning p into a ZIP archive and
// returns the number of files written.
func (r *Repository) Backup(ctx context.Context, p *Project, outputPath string) (int, error) {
	root := p.Root()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".zip") {
		outputPath += ".zip"
	}

	zipFile, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create ZIP file: %w", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)
	defer zipWriter.Close()

	count, err := addDirToZip(ctx, zipWriter, root.URL, root.Label)
	if err != nil {
		return count, fmt.Errorf("failed to add %s to archive: %w", root.URL, err)
	}

	if err := zipWriter.Close(); err != nil {
		return count, fmt.Errorf("failed to finalize ZIP file: %w", err)
	}

	r.log.WithField("project", root.URL).WithField("files", count).Info("backed up storage")
	return count, nil
}

// addDirToZip adds all files below sourceDir to the archive under basePath
func addDirToZip(ctx context.Context, zipWriter *zip.Writer, sourceDir, basePath string) (int, error) {
	filesAdded := 0

	err := filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Skip files we can't access
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		// ZIP paths always use forward slashes
		zipPath := filepath.ToSlash(filepath.Join(basePath, relPath))

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = zipPath
		header.Method = zip.Deflate

		writer, err := zipWriter.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to create file in ZIP: %w", err)
		}

		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open source file: %w", err)
		}
		defer file.Close()

		if _, err := io.Copy(writer, file); err != nil {
			return fmt.Errorf("failed to write file to ZIP: %w", err)
		}

		filesAdded++
		return nil
	})

	return filesAdded, err
}

// RestoreReport counts what Restore did with each archive entry.
type RestoreReport struct {
	Imported int
	Updated  int
	Skipped  int
}

// Restore extracts a backup archive into p. The leading storage directory of
// each entry is dropped. Existing files are replaced only by newer entries.
func (r *Repository) Restore(ctx context.Context, zipPath string, p *Project) (RestoreReport, error) {
	var report RestoreReport

	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return report, fmt.Errorf("failed to open ZIP file: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if file.FileInfo().IsDir() {
			continue
		}

		name := filepath.ToSlash(file.Name)
		if _, rest, ok := strings.Cut(name, "/"); ok {
			name = rest
		}
		destPath := filepath.Join(p.URL, filepath.FromSlash(name))
		if rel, err := filepath.Rel(p.URL, destPath); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			r.log.WithField("entry", file.Name).Warn("skipping archive entry outside the storage")
			report.Skipped++
			continue
		}

		if stat, err := os.Stat(destPath); err == nil {
			if !file.Modified.After(stat.ModTime()) {
				report.Skipped++
				continue
			}
			report.Updated++
		} else {
			report.Imported++
		}

		if err := r.extractFile(file, destPath); err != nil {
			return report, fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
	}

	r.log.WithField("project", p.URL).WithField("archive", zipPath).Info("restored backup")
	return report, nil
}

// extractFile writes a single archive entry to destPath
func (r *Repository) extractFile(zipFile *zip.File, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	srcFile, err := zipFile.Open()
	if err != nil {
		return fmt.Errorf("failed to open file in ZIP: %w", err)
	}
	defer srcFile.Close()

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	if err := os.Chtimes(destPath, zipFile.Modified, zipFile.Modified); err != nil {
		r.log.WithError(err).WithField("path", destPath).Warn("failed to set modification time")
	}
	return nil
}
