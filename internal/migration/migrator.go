package migration

// Migrator prepares the per-slot test databases
type Migrator interface {
	Run(slots int, noFresh bool) error
}
