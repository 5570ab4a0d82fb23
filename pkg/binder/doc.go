// Package binder fills request structs from query strings and router path
// parameters using struct tags. It plugs into handler.Wrap as a binder.
package binder
