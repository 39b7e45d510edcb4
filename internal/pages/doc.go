// Package pages holds the per-view state controllers: list, detail,
// create, edit, login and register. Each controller owns its own state,
// derived only from service results, and converts every failure into a
// message on that state.
//
// Controllers are safe for concurrent use. A controller's mutex is held
// only to snapshot request parameters and to apply results; the network
// round trip itself runs unlocked. Wherever a parameter can change while a
// request is outstanding (list page and search term, detail post id) a
// requestGuard discards responses that are no longer current.
//
// Local state is reconciled with the server after mutations as follows:
//
//   - Likes: the toggle is a round trip. When it succeeds the like set
//     from the response is applied; if the response carries none, the
//     viewer's membership is flipped locally. The next full fetch is the
//     source of truth.
//   - Comments: add and delete are followed by a full re-fetch of the post,
//     because comments are server ordered and other users write them too.
//   - List delete: the post is removed from the loaded page without a
//     re-fetch.
//
// Mutating controls go through a submitGate (idle -> submitting -> idle);
// a second submit while one is in flight fails with ErrSubmitInProgress
// and has no side effects.
package pages
