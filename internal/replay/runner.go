package replay

import (
	"encoding/binary"
	"fmt"

	"github.com/sdhcore/ah3sdhc/internal/machine"
)

// Target is something a scenario step can write to or read from: a
// device's MMIO base address.
type Target struct {
	Base uint64
}

// Result records the outcome of a single step.
type Result struct {
	Step  Step
	Value uint32
	Pass  bool
	Err   error
}

// Run drives every step in scn against mach, resolving each step's
// device name through targets. A step with no Expect always passes if
// the access itself didn't error; a step with Expect fails if the
// read-back value doesn't match.
func Run(mach *machine.Machine, targets map[string]Target, scn Scenario, onStep func(Result)) ([]Result, error) {
	results := make([]Result, 0, len(scn.Steps))
	for _, step := range scn.Steps {
		target, ok := targets[step.deviceOf()]
		if !ok {
			return results, fmt.Errorf("replay: unknown device %q in step %q", step.deviceOf(), step.Name)
		}

		addr := target.Base + step.Offset
		res := Result{Step: step, Pass: true}

		if step.Write != nil {
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], *step.Write)
			if err := mach.DispatchMMIO(addr, buf[:], true); err != nil {
				res.Err = err
				res.Pass = false
			}
		} else {
			var buf [4]byte
			if err := mach.DispatchMMIO(addr, buf[:], false); err != nil {
				res.Err = err
				res.Pass = false
			} else {
				res.Value = binary.LittleEndian.Uint32(buf[:])
				if step.Expect != nil && res.Value != *step.Expect {
					res.Pass = false
				}
			}
		}

		results = append(results, res)
		if onStep != nil {
			onStep(res)
		}
	}
	return results, nil
}
