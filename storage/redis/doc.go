// Package redis implements the counter and session stores on a Redis
// server, for deployments that run more than one process against the
// same quota and session state. The embedded badger stores cover the
// single-process case.
package redis
