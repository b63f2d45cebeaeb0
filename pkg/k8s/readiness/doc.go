// Package readiness provides Kubernetes readiness polling for freshly created clusters.
//
// Key features:
//   - Generic polling mechanism (PollForReadiness)
//   - API responsiveness through service listings (WaitForServices)
//   - Node registration and readiness (WaitForNodes)
package readiness
