package contentsafety

import "testing"

func TestCheckIgnoresEmptyText(t *testing.T) {
	Check("label", "")
}

func TestCheckPassesOrdinaryText(t *testing.T) {
	Check("label", "[Flywheel] update notes/project-x.md")
}
