package server

import (
	"github.com/woozymasta/sharebite/internal/claim"
	"github.com/woozymasta/sharebite/internal/render"
	"github.com/woozymasta/sharebite/internal/view"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
// It shares the session and claim dialog with the terminal client.
type ServerContext struct {
	Session  *view.Session
	Workflow *claim.Workflow
	List     *render.HTMLList
	Map      *render.GeoJSONMap
}

// NewServerContext initializes the context over an already started session.
func NewServerContext(session *view.Session, workflow *claim.Workflow, list *render.HTMLList, m *render.GeoJSONMap) *ServerContext {
	snap := session.Snapshot()
	log.Info().
		Int("donations", len(snap.Records)).
		Bool("located", snap.Receiver != nil).
		Msg("Preview server context initialized")

	return &ServerContext{
		Session:  session,
		Workflow: workflow,
		List:     list,
		Map:      m,
	}
}
