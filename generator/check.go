package generator

import (
	"fmt"
	"regexp"
	"strconv"
)

var declPattern = regexp.MustCompile(
	`(?m)^\s*(?:localparam|parameter)\s+(DATA_WIDTH|ADDR_WIDTH|DEPTH)\s*=\s*(\d+)`)

// ConsistencyError reports an artifact whose geometry differs from the
// derived parameters.
type ConsistencyError struct {
	Artifact string
	Name     string
	Got      string
	Want     uint64
}

func (e *ConsistencyError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("%s does not declare %s", e.Artifact, e.Name)
	}

	return fmt.Sprintf("%s declares %s = %s, want %d", e.Artifact, e.Name, e.Got, e.Want)
}

// Check verifies that every artifact of b declares DATA_WIDTH, ADDR_WIDTH
// and DEPTH, and that every declaration equals the bundle's parameters.
func Check(b *Bundle) error {
	want := map[string]uint64{
		"DATA_WIDTH": uint64(b.Params.DataWidth),
		"ADDR_WIDTH": uint64(b.Params.AddressWidth),
		"DEPTH":      b.Params.Depth,
	}

	artifacts := []struct{ name, text string }{
		{"module", b.ModuleText},
		{"testbench", b.TestbenchText},
	}

	if b.HasVerification {
		artifacts = append(artifacts, struct{ name, text string }{
			"verification environment", b.VerificationText,
		})
	}

	for _, a := range artifacts {
		if err := checkText(a.name, a.text, want); err != nil {
			return err
		}
	}

	return nil
}

func checkText(artifact, text string, want map[string]uint64) error {
	seen := make(map[string]bool)

	for _, m := range declPattern.FindAllStringSubmatch(text, -1) {
		name, value := m[1], m[2]

		got, err := strconv.ParseUint(value, 10, 64)
		if err != nil || got != want[name] {
			return &ConsistencyError{
				Artifact: artifact, Name: name, Got: value, Want: want[name],
			}
		}

		seen[name] = true
	}

	for _, name := range []string{"DATA_WIDTH", "ADDR_WIDTH", "DEPTH"} {
		if !seen[name] {
			return &ConsistencyError{Artifact: artifact, Name: name, Want: want[name]}
		}
	}

	return nil
}
