package kernel

import "fmt"

// Phase is one step of the application lifecycle.
type Phase int

const (
	PreRegister Phase = iota
	RegisterServices
	Configure
	Reconfigure
	Run
	Shutdown
)

// Phases lists every phase in firing order.
var Phases = []Phase{PreRegister, RegisterServices, Configure, Reconfigure, Run, Shutdown}

var phaseNames = [...]string{"pre-register", "register-services", "configure", "reconfigure", "run", "shutdown"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// receivesContainer reports whether handlers of p get the mutable
// container rather than a Resolver.
func (p Phase) receivesContainer() bool {
	return p == PreRegister || p == RegisterServices
}
