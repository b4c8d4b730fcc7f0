package main

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"orn/internal/diag"
	"orn/internal/notify"
	"orn/internal/version"
)

const updateCheckTimeout = 3 * time.Second

// checkForUpdate asks the registry for the latest release and prints a
// notice to out when it differs from the running version. Failures are only
// logged.
func checkForUpdate(ctx context.Context, out io.Writer, registry string, logger hclog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, updateCheckTimeout)
	defer cancel()

	client := &http.Client{Timeout: updateCheckTimeout}
	res, err := notify.CheckLatest(ctx, client, toolName, version.Version, registry)
	if err != nil {
		logger.Debug("update check failed", "code", diag.NotifyCheckFailed.ID(),
			"error", err, "registry_error", notify.IsRegistryError(err))
		return
	}
	if !res.UpdateAvailable() {
		logger.Trace("up to date", "version", res.Current)
		return
	}
	logger.Info("update available", "code", diag.NotifyUpdateAvailable.ID(),
		"current", res.Current, "latest", res.Latest)
	_, _ = io.WriteString(out, notify.GenerateNotice(toolName, res.Current, res.Latest))
}
