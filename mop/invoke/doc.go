// Package invoke calls zero-argument protocol hooks on arbitrary receivers.
package invoke
