// Package stack wraps CloudFormation stacks owned by the CLI.
//
// A [Handle] owns exactly one stack. [Create] is idempotent: when the stack already
// exists the handle adopts it instead of failing. Stacks are tagged with the cluster
// (and nodegroup) they belong to so that later commands can rediscover worker stacks
// from CloudFormation alone. [Waiter.AwaitAll] blocks until a batch of stacks has
// left the in-progress creation states.
package stack
