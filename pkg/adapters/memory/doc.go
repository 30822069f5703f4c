// Package memory provides a process-local session store, suitable for a single replica.
package memory
