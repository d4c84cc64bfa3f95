package gdc

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// DownloadFile fetches a file from the GDC data endpoint into destPath.
// An existing destination is left untouched. The download streams into
// a temp file that is renamed only on success.
func (c *Client) DownloadFile(fileID, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		c.logger.Info("file already exists, skipping",
			zap.String("path", destPath),
			zap.String("size", formatSize(info.Size())))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	// Downloads are large; use a dedicated long-timeout client.
	dlClient := &http.Client{Timeout: 30 * time.Minute}

	resp, err := dlClient.Get(c.baseURL + "/data/" + fileID)
	if err != nil {
		return fmt.Errorf("GDC download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GDC download error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	var downloaded int64
	pw := &progressWriter{
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
		logger:     c.logger,
		name:       filepath.Base(destPath),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	c.logger.Info("downloaded file",
		zap.String("path", destPath),
		zap.String("size", formatSize(downloaded)))
	return nil
}

// progressWriter logs download progress at one-second intervals.
type progressWriter struct {
	total      int64
	downloaded *int64
	lastPrint  time.Time
	logger     *zap.Logger
	name       string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(*pw.downloaded) / float64(pw.total) * 100
			pw.logger.Info("download progress",
				zap.String("file", pw.name),
				zap.String("done", formatSize(*pw.downloaded)),
				zap.String("total", formatSize(pw.total)),
				zap.Float64("percent", pct))
		} else {
			pw.logger.Info("download progress",
				zap.String("file", pw.name),
				zap.String("done", formatSize(*pw.downloaded)))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
