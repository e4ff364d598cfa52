package prompts

import _ "embed"

// Generate is the instruction template sent to the model when turning a goal
// into tasks. It is rendered with text/template; see generate.Generator.
//
//go:embed generate.md
var Generate string
