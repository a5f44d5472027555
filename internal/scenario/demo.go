package scenario

import (
	_ "embed"
)

//go:embed demo.yaml
var demoScript []byte

// Demo returns the built-in script run when no script file is configured.
func Demo() Script {
	s, err := ParseScript(demoScript)
	if err != nil {
		panic("scenario: invalid demo script: " + err.Error())
	}
	return s
}
