// Package clustererr provides common error types for cluster provisioners.
//
// This package defines sentinel errors shared by provisioner implementations and
// command handlers, plus a helper for calling an optional infrastructure provider.
package clustererr
