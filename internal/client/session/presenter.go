// Package session ties a mounted view's lifecycle to its store, feed
// subscription and presentation effects. Mount acquires the
// subscription, Unmount releases it synchronously; after Unmount
// returns, no store mutation or effect can fire.
package session

import "github.com/shopmena/helpdesk/internal/client/surfacer"

// Presenter receives presentation effects from a session. The view
// layer implements it; sessions never render anything themselves.
type Presenter interface {
	Present(effect surfacer.Effect)
}

func present(p Presenter, effects []surfacer.Effect) {
	if p == nil {
		return
	}
	for _, effect := range effects {
		p.Present(effect)
	}
}
