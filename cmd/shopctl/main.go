// Command shopctl is a terminal storefront client. It keeps the shopper's
// session and cart in a local JSON file between runs.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	if err := newRootCmd(defaultStoragePath()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultStoragePath() string {
	if dir := os.Getenv("SHOPCTL_HOME"); dir != "" {
		return filepath.Join(dir, "storage.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "storefront-storage.json"
	}
	return filepath.Join(home, ".storefront", "storage.json")
}
