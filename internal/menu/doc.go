// Package menu implements the numbered, line-based prompts used to pick a
// chant, an album and a track.
//
//	selector := menu.NewSelector(os.Stdin, os.Stdout)
//	link, label, err := selector.Select(options)
//	if errors.Is(err, menu.ErrQuit) {
//	    // the user typed q
//	}
//
// Every prompt accepts q (any case) to quit. Quitting is reported as
// ErrQuit so callers decide how to terminate.
package menu
