package output

import "log"

var logf = log.Printf
