package vars

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// DiagnosticsError carries the HCL diagnostics of a var file that failed to
// load.
type DiagnosticsError struct {
	FilePath string
	Diags    hcl.Diagnostics
}

func (e *DiagnosticsError) Error() string {
	return fmt.Sprintf("failed to load variables from %q: %s", e.FilePath, e.Diags.Error())
}
