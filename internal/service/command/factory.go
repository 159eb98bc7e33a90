package command

import (
	"github.com/sandevgo/tuskchat/internal/core"
)

// NewRouter wires the commands shared by every surface. lister may be nil
// when the provider cannot enumerate models.
func NewRouter(sessions core.SessionManager, lister ModelLister) *Router {
	r := New([]core.Command{
		NewModelCommand(sessions, lister),
		NewNewCommand(sessions),
	})
	r.Register(NewHelpCommand(r))
	return r
}
