package sand

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// AssetBaseURL hosts the latest CLI builds.
const AssetBaseURL = "https://api.sandgarden.com/api/v1/assets/sand/latest"

// AssetURL returns the download URL for the given platform build.
func AssetURL(baseURL, goos, goarch string) string {
	if baseURL == "" {
		baseURL = AssetBaseURL
	}
	return fmt.Sprintf("%s/sand_%s_%s", strings.TrimRight(baseURL, "/"), goos, goarch)
}

// Download fetches the CLI build for the running platform into dir and
// returns the path of the executable.
func Download(ctx context.Context, client *http.Client, baseURL, dir string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	url := AssetURL(baseURL, runtime.GOOS, runtime.GOARCH)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download cli: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download cli: HTTP %d from %s", resp.StatusCode, url)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create cli dir: %w", err)
	}

	path := filepath.Join(dir, DefaultCLI)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return "", fmt.Errorf("create cli file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("write cli: %w", err)
	}

	if err := os.Chmod(path, 0o755); err != nil {
		return "", fmt.Errorf("chmod cli: %w", err)
	}

	return path, nil
}
