package ecs

// System is a unit of per-frame behaviour. Exported Query and Singleton fields
// of a struct system are bound to the scheduler's storage on Register, and the
// queries are executed right before each call.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}

// UpdateFrame is passed to every system during one scheduler pass.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}
