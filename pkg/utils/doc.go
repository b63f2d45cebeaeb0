// Package utils provides utility packages for common operations.
//
//   - notify: formatted message display and the structured logger
//   - timer: execution time tracking for single and multi-stage operations
package utils
