package kv

import "log"

// logf is a seam for tests; production output goes through the standard logger.
var logf = log.Printf
