/*
Package observability turns engine lifecycle events into Prometheus metrics and log lines.

Both are plain domain.LifecycleHooks, so they compose with each other and with caller
hooks through LifecycleHooks.Merge.
*/
package observability
