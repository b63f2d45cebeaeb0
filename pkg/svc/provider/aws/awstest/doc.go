// Package awstest provides in-memory fakes of the AWS service clients used by the
// provider/aws package, for tests of code built on top of it.
package awstest
