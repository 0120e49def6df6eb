// Package errtype provides an explicit, single-rooted error type hierarchy.
//
// Types are defined once at package scope and compared by identity. Each type
// records its full ancestor linearization at definition time, so subtype and
// distance queries are lock-free and allocation-free on the request path.
//
// # Usage
//
//	var (
//	    ErrGame = errtype.New("GameException")
//	    ErrWin  = errtype.New("Win", ErrGame)
//	)
//
//	err := ErrWin.New("you won")
//	errtype.Of(err).IsSubtypeOf(ErrGame) // true
//
// Errors declare their type by implementing Typed. Errors that declare no
// type belong to Root.
package errtype
