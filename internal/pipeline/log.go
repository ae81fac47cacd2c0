package pipeline

import "log"

var logf = log.Printf
