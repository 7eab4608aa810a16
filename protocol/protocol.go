// Package protocol implements the line-based ASCII serial protocol: line
// assembly, response encoding and the byte buffers shared with the targets.
package protocol

// Version represents the uniled firmware version
const Version = "0.1.0"

// Protocol constants
const (
	MaxLineLength  = 60 // longest accepted command line, terminator excluded
	LineBufferSize = 64 // line buffer capacity
	ResponseMax    = 128

	LineTerminator = '\n'
)
