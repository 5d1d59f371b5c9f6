// =============================================================================
// Pallet Manifest Importer - Main Entry Point
// =============================================================================
//
// USAGE:
//   manifest import <file>       - Import a manifest and print its summary
//   manifest summary             - Show the summary of the last import
//   manifest export csv|xlsx|xml - Export the last import
//   manifest check <path>...     - Validate manifests without importing them
//   manifest serve               - Serve the importer over HTTP (JSON API,
//                                  CSV/XLSX/XML exports)
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Import pipeline, storage, server
//   - pkg/           : Shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/pallet-manifest/cmd"
)

func main() {
	cmd.Execute()
}
