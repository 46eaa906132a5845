// =============================================================================
// Supplier Follow-up Mailer - Main Entry Point
// =============================================================================
//
// This is the main entry point for the pomailer CLI. It hands control to the
// Cobra commands in the cmd package.
//
// USAGE:
//   pomailer send      - Email every supplier their pending orders
//   pomailer validate  - Check a spreadsheet and the transport settings
//   pomailer preview   - Show what would be sent
//   pomailer version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parsing, validation, grouping, rendering and sending
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/po-followup-mailer/cmd"
)

func main() {
	cmd.Execute()
}
