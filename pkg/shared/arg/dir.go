package arg

import (
	"github.com/Paintersrp/linkrank/internal/state"
)

// HandleDir points the loader at the optional [dir] argument.
func HandleDir(l *state.Loader, args []string) {
	if len(args) > 0 && args[0] != "" {
		l.UseDir(args[0])
	}
}
