package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the value of --ui.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.ToLower(strings.TrimSpace(value)))
	if mode == "" {
		return uiModeAuto, nil
	}
	if mode != uiModeAuto && mode != uiModeOn && mode != uiModeOff {
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return mode, nil
}

// shouldUseTUI decides whether the progress view runs. It never runs when
// stdout carries file contents or machine-readable output.
func shouldUseTUI(mode uiMode, plainOutput bool) bool {
	if !plainOutput || mode == uiModeOff {
		return false
	}
	return mode == uiModeOn || isTerminal(os.Stdout)
}
