package parser

import "regexp"

// Declaration openers for the line-pattern parse of the VB dialects.
var (
	vbClassPattern    = regexp.MustCompile(`(?i)^(?:Public\s+|Private\s+|Friend\s+)?(?:Class|Module)\s+\w+`)
	vbMethodPattern   = regexp.MustCompile(`(?i)^(?:Public\s+|Private\s+|Protected\s+|Friend\s+)?(?:Shared\s+)?(?:Sub|Function)\s+\w+\s*\(`)
	vbPropertyPattern = regexp.MustCompile(`(?i)^(?:Public\s+|Private\s+)?Property\s+\w+`)
	vbFieldPattern    = regexp.MustCompile(`(?i)^(?:Dim|Public|Private)\s+\w+\s+As\s+\w+\s*$`)
)
