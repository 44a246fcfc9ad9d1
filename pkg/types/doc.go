// Package types holds the collaborator interfaces shared by the reduction
// engine, its CLI and its observability backends.
package types
