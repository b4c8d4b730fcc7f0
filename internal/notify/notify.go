// Package notify asks a crates.io style registry for the newest published
// version of a tool and renders a short notice when the running one is older.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

// DefaultRegistry is queried when no registry is configured.
const DefaultRegistry = "https://crates.io"

const (
	userAgent   = "orn-update-notifier"
	maxResponse = 1 << 20
)

// RegistryError is an error the registry itself reported.
type RegistryError struct {
	Detail string
}

func (e *RegistryError) Error() string {
	return "Error received from registry: " + e.Detail
}

// ParseError means the registry answered with something unexpected.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Error while parsing json: %s: %v", e.Reason, e.Err)
	}
	return "Error while parsing json: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

type versionResponse struct {
	Versions []struct {
		Num string `json:"num"`
	} `json:"versions"`
	Errors []struct {
		Detail string `json:"detail"`
	} `json:"errors"`
}

// Result is the outcome of a successful check.
type Result struct {
	Current string
	Latest  string
}

// UpdateAvailable reports whether the registry has a different version.
func (r Result) UpdateAvailable() bool {
	return r.Latest != "" && r.Latest != r.Current
}

// CheckLatest fetches <registry>/api/v1/crates/<name>/versions and returns
// the first listed version. A nil client means http.DefaultClient.
func CheckLatest(ctx context.Context, client *http.Client, name, current, registry string) (Result, error) {
	latest, err := latestVersion(ctx, client, name, registry)
	if err != nil {
		return Result{Current: current}, err
	}
	return Result{Current: current, Latest: latest}, nil
}

func latestVersion(ctx context.Context, client *http.Client, name, registry string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if registry == "" {
		registry = DefaultRegistry
	}
	url := fmt.Sprintf("%s/api/v1/crates/%s/versions", strings.TrimRight(registry, "/"), name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return latestFromJSON(body)
}

func latestFromJSON(body []byte) (string, error) {
	var resp versionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &ParseError{Reason: "invalid json", Err: err}
	}
	switch {
	case resp.Versions != nil:
		if len(resp.Versions) == 0 {
			return "", &ParseError{Reason: "Versions array is empty"}
		}
		return resp.Versions[0].Num, nil
	case resp.Errors != nil:
		if len(resp.Errors) == 0 {
			return "", &ParseError{Reason: "No errors in the errors array"}
		}
		return "", &RegistryError{Detail: resp.Errors[0].Detail}
	}
	return "", &ParseError{Reason: "Invalid json response, does not have versions or errors"}
}

// IsRegistryError reports whether err came from the registry.
func IsRegistryError(err error) bool {
	var re *RegistryError
	return errors.As(err, &re)
}

// GenerateNotice renders the boxed update notice.
func GenerateNotice(name, current, latest string) string {
	border := "\n" + strings.Repeat("─", 55+utf8.RuneCountInString(name)) + "\n"
	lines := []string{
		fmt.Sprintf("A new version of %s is available! %s → %s", name, current, latest),
		fmt.Sprintf("Use `cargo install %s` to install version %s", name, latest),
		fmt.Sprintf("Check %s/crates/%s for more details", DefaultRegistry, name),
		"",
	}
	return border + "\n    " + strings.Join(lines, "\n    ") + border
}
