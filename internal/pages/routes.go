package pages

import "net/url"

// Route is a view destination.
type Route string

const (
	RouteHome       Route = "/"
	RouteLogin      Route = "/login"
	RouteRegister   Route = "/register"
	RouteCreatePost Route = "/create"
)

// RoutePost is the detail view of a post.
func RoutePost(id string) Route {
	return Route("/post/" + url.PathEscape(id))
}

// RouteEditPost is the edit view of a post.
func RouteEditPost(id string) Route {
	return Route("/post/" + url.PathEscape(id) + "/edit")
}

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(to Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(to Route)

// Navigate calls f(to).
func (f NavigatorFunc) Navigate(to Route) { f(to) }

// Confirmer asks the user to confirm an irreversible action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f(prompt).
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })

type noopNavigator struct{}

func (noopNavigator) Navigate(Route) {}
