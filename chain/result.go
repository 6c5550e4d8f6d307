package chain

// Result carries the driver's scalar outputs, returned by
// ComputeObjfAndDeriv.
type Result struct {
	Objf    float64
	L2Term  float64
	Weight  float64
	MMIObjf float64 // only meaningful when Options.UseSMBRObjective
}
