package engine

// Phase is a step of the orchestration.
type Phase int

const (
	NotConfigured Phase = iota
	Configuring
	Configured
	Building
	Built
	Running
	Done
	Failed
)

var phaseNames = [...]string{
	NotConfigured: "not configured",
	Configuring:   "configuring",
	Configured:    "configured",
	Building:      "building",
	Built:         "built",
	Running:       "running",
	Done:          "done",
	Failed:        "failed",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}
